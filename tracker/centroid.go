package tracker

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// track is the live state of a tracked object
type track struct {
	obj   TrackedObject
	trail *Trail
}

// CentroidTracker assigns frame to frame identities to the objects of a single
// category by greedy nearest centroid matching.  It is not safe for
// concurrent use, callers must serialize calls to Update
type CentroidTracker struct {
	// category of objects this tracker handles
	category category.Category
	// tuning thresholds
	params Params
	// Counter for assigning unique object IDs
	nextID int
	// live objects keyed by ID
	objects map[int]*track
	// order is the registration order of live objects, it defines the row
	// order of the distance matrix
	order []int
	log   *slog.Logger
}

// NewCentroidTracker initializes and returns a new CentroidTracker for the
// given category
func NewCentroidTracker(cat category.Category, params Params,
	logger *slog.Logger) (*CentroidTracker, error) {

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("category %s: %w", cat, err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ct := &CentroidTracker{
		category: cat,
		params:   params,
		log:      logger,
	}
	ct.Reset()

	return ct, nil
}

// Reset clears the tracked data and restarts ID assignment from zero
func (ct *CentroidTracker) Reset() {
	ct.nextID = 0
	ct.objects = make(map[int]*track)
	ct.order = make([]int, 0)
}

// Category returns the category tracked
func (ct *CentroidTracker) Category() category.Category {
	return ct.category
}

// Params returns the tuning thresholds in use
func (ct *CentroidTracker) Params() Params {
	return ct.params
}

// Len returns the number of live objects
func (ct *CentroidTracker) Len() int {
	return len(ct.order)
}

// Registered returns the number of objects registered since the last reset
func (ct *CentroidTracker) Registered() int {
	return ct.nextID
}

// Objects returns a snapshot copy of the live objects keyed by ID
func (ct *CentroidTracker) Objects() map[int]TrackedObject {

	out := make(map[int]TrackedObject, len(ct.order))

	for _, id := range ct.order {
		tr := ct.objects[id]
		obj := tr.obj
		obj.Trail = tr.trail.Points()
		out[id] = obj
	}

	return out
}

// Update updates the tracker with the detections of a new frame and returns
// the resulting live objects
func (ct *CentroidTracker) Update(dets []detection.Detection) map[int]TrackedObject {

	// Step 1: drop malformed detections, they never abort the frame
	inputs := make([]detection.Detection, 0, len(dets))

	for _, det := range dets {
		if !det.Valid() {
			ct.log.Debug("skipping malformed detection",
				slog.String("category", string(ct.category)),
				slog.Int("class_id", det.ClassID),
				slog.Int64("detection_id", det.ID))
			continue
		}
		inputs = append(inputs, det)
	}

	// Step 2: nothing detected, every object ages
	if len(inputs) == 0 {
		for _, id := range ct.liveIDs() {
			ct.markDisappeared(id)
		}
		return ct.Objects()
	}

	centroids := make([]detection.Point, len(inputs))

	for i, det := range inputs {
		centroids[i] = det.Centroid()
	}

	// Step 3: nothing tracked yet, register everything
	if len(ct.order) == 0 {
		for i, det := range inputs {
			ct.register(det, centroids[i])
		}
		return ct.Objects()
	}

	// Step 4: greedy association by ascending row minimum distance
	ids := ct.liveIDs()
	dist := ct.distanceMatrix(ids, centroids)
	rows, cols := greedyOrder(dist)

	usedRows := make([]bool, len(ids))
	usedCols := make([]bool, len(inputs))

	for k, row := range rows {
		col := cols[k]

		if usedRows[row] || usedCols[col] {
			continue
		}

		if dist.At(row, col) > ct.params.MaxDistance {
			continue
		}

		tr := ct.objects[ids[row]]
		tr.obj.apply(inputs[col], centroids[col])
		tr.trail.Add(centroids[col])

		usedRows[row] = true
		usedCols[col] = true
	}

	// Step 5: unmatched objects age
	for row, id := range ids {
		if !usedRows[row] {
			ct.markDisappeared(id)
		}
	}

	// Step 6: unmatched detections only become new objects when there are
	// more detections than objects
	if len(ids) < len(inputs) {
		for col, det := range inputs {
			if !usedCols[col] {
				ct.register(det, centroids[col])
			}
		}
	}

	return ct.Objects()
}

// liveIDs returns a copy of the registration ordered IDs so callers may
// deregister while iterating
func (ct *CentroidTracker) liveIDs() []int {
	ids := make([]int, len(ct.order))
	copy(ids, ct.order)
	return ids
}

// register a new object for an unmatched detection
func (ct *CentroidTracker) register(det detection.Detection, centroid detection.Point) {

	id := ct.nextID
	ct.nextID++

	tr := &track{
		obj:   newTrackedObject(id, ct.category, det, centroid),
		trail: NewTrail(ct.params.TrailLength),
	}
	tr.trail.Add(centroid)

	ct.objects[id] = tr
	ct.order = append(ct.order, id)
}

// deregister removes an object and discards its trail
func (ct *CentroidTracker) deregister(id int) {

	delete(ct.objects, id)

	for i, oid := range ct.order {
		if oid == id {
			ct.order = append(ct.order[:i], ct.order[i+1:]...)
			break
		}
	}
}

// markDisappeared increments the disappeared count of an object and removes
// it once the threshold is exceeded
func (ct *CentroidTracker) markDisappeared(id int) {

	tr := ct.objects[id]
	tr.obj.Disappeared++

	if tr.obj.Disappeared > ct.params.MaxDisappeared {
		ct.deregister(id)
	}
}

// distanceMatrix calculates the Euclidean distance between every live object
// (rows) and every input centroid (columns)
func (ct *CentroidTracker) distanceMatrix(ids []int, centroids []detection.Point) *mat.Dense {

	dist := mat.NewDense(len(ids), len(centroids), nil)

	for r, id := range ids {
		existing := ct.objects[id].obj.Centroid

		for c, p := range centroids {
			dist.Set(r, c, existing.Distance(p))
		}
	}

	return dist
}

// greedyOrder returns the rows of the distance matrix sorted by their
// minimum value along with the column holding each row's minimum.  Ties keep
// row order and the first minimal column wins
func greedyOrder(dist *mat.Dense) (rows, cols []int) {

	nRows, _ := dist.Dims()

	minVals := make([]float64, nRows)
	argMins := make([]int, nRows)

	for r := 0; r < nRows; r++ {
		row := dist.RawRowView(r)
		minVals[r] = floats.Min(row)
		argMins[r] = floats.MinIdx(row)
	}

	rows = make([]int, nRows)
	for r := range rows {
		rows[r] = r
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return minVals[rows[i]] < minVals[rows[j]]
	})

	cols = make([]int, nRows)
	for k, r := range rows {
		cols[k] = argMins[r]
	}

	return rows, cols
}
