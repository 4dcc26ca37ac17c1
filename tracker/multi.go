package tracker

import (
	"fmt"
	"log/slog"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"gonum.org/v1/gonum/stat"
)

// DefaultHistorySize is the number of frames averaged for per category object
// counts
const DefaultHistorySize = 30

// Stats are the aggregate counts of a MultiTracker update
type Stats struct {
	// Counts is the number of live objects per category this frame
	Counts map[category.Category]int
	// Averages is the rolling mean of Counts over the history window
	Averages map[category.Category]float64
	// Total is the number of live objects across all categories
	Total int
	// Registered is the number of objects registered since the last reset
	// across all categories
	Registered int
}

// Result is the snapshot returned by MultiTracker.Update
type Result struct {
	// Objects holds the live objects of every category keyed by ID
	Objects map[category.Category]map[int]TrackedObject
	// FrameCount is the number of updates since the last reset
	FrameCount int
	Stats      Stats
}

// Find returns the objects of all categories matching the predicate
func (r Result) Find(match func(TrackedObject) bool) []TrackedObject {

	var out []TrackedObject

	for _, cat := range category.All {
		objs := r.Objects[cat]

		for _, id := range SortedIDs(objs) {
			if match(objs[id]) {
				out = append(out, objs[id])
			}
		}
	}

	return out
}

// MultiTracker owns one CentroidTracker per category
type MultiTracker struct {
	params      map[category.Category]Params
	trackers    map[category.Category]*CentroidTracker
	frameCount  int
	history     map[category.Category][]float64
	historySize int
	log         *slog.Logger
}

// NewMultiTracker creates a tracker for every known category using the given
// per category thresholds.  Categories missing from params use
// DefaultParams
func NewMultiTracker(params map[category.Category]Params,
	logger *slog.Logger) (*MultiTracker, error) {

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mt := &MultiTracker{
		params:      make(map[category.Category]Params, len(category.All)),
		historySize: DefaultHistorySize,
		log:         logger,
	}

	for cat, p := range params {
		if !cat.Valid() {
			return nil, fmt.Errorf("%w: %q", category.ErrUnknownCategory, cat)
		}
		mt.params[cat] = p
	}

	for _, cat := range category.All {
		if _, ok := mt.params[cat]; !ok {
			mt.params[cat] = DefaultParams()
		}
	}

	if err := mt.build(); err != nil {
		return nil, err
	}

	return mt, nil
}

// build constructs fresh per category trackers and clears counters
func (mt *MultiTracker) build() error {

	trackers := make(map[category.Category]*CentroidTracker, len(category.All))

	for _, cat := range category.All {
		ct, err := NewCentroidTracker(cat, mt.params[cat],
			mt.log.With(slog.String("category", string(cat))))

		if err != nil {
			return err
		}

		trackers[cat] = ct
	}

	mt.trackers = trackers
	mt.frameCount = 0
	mt.history = make(map[category.Category][]float64, len(category.All))

	return nil
}

// Reset rebuilds all category trackers from scratch and clears the frame
// count and history
func (mt *MultiTracker) Reset() {
	// params were validated at construction so build cannot fail here
	if err := mt.build(); err != nil {
		panic(err)
	}
}

// Tracker returns the tracker of a category
func (mt *MultiTracker) Tracker(cat category.Category) *CentroidTracker {
	return mt.trackers[cat]
}

// FrameCount returns the number of updates since the last reset
func (mt *MultiTracker) FrameCount() int {
	return mt.frameCount
}

// Update runs every category tracker with its detections for the frame.
// Categories absent from the input are updated with an empty list so their
// objects age
func (mt *MultiTracker) Update(categorized map[category.Category][]detection.Detection) Result {

	mt.frameCount++

	res := Result{
		Objects:    make(map[category.Category]map[int]TrackedObject, len(category.All)),
		FrameCount: mt.frameCount,
		Stats: Stats{
			Counts:   make(map[category.Category]int, len(category.All)),
			Averages: make(map[category.Category]float64, len(category.All)),
		},
	}

	for _, cat := range category.All {
		ct := mt.trackers[cat]
		objs := ct.Update(categorized[cat])

		res.Objects[cat] = objs
		res.Stats.Counts[cat] = len(objs)
		res.Stats.Total += len(objs)
		res.Stats.Registered += ct.Registered()

		// rolling history of counts
		hist := append(mt.history[cat], float64(len(objs)))
		if len(hist) > mt.historySize {
			hist = hist[len(hist)-mt.historySize:]
		}
		mt.history[cat] = hist

		res.Stats.Averages[cat] = stat.Mean(hist, nil)
	}

	return res
}
