package sportscam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/config"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
	"github.com/swdee/go-sportscam/tracker"
)

// Frame is the result of processing the detections of a single frame
type Frame struct {
	// Number is the count of frames processed since the last reset
	Number    int
	Timestamp time.Duration
	// Objects are the tracked objects of every category keyed by ID
	Objects events.Snapshot
	// Tracking are the per category counts and rolling averages
	Tracking tracker.Stats
	// Events detected on this frame followed by any reported by the source
	Events        []events.Event
	ActivityScore float64
	BallDetected  bool
	ObjectCount   int
}

// Pipeline routes detections through the category trackers and event
// detector, keeps session statistics and records the time series used for
// highlight generation.  It is not safe for concurrent use, callers must
// serialize calls to Process
type Pipeline struct {
	router    *category.Router
	tracker   *tracker.MultiTracker
	detector  *events.Detector
	generator *highlight.Generator
	labels    []string
	stats     *sessionStats
	series    []highlight.Frame
	log       *slog.Logger
}

// NewPipeline builds a Pipeline from the configuration
func NewPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {

	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	table, err := cfg.ClassTable()
	if err != nil {
		return nil, err
	}

	router, err := category.NewRouter(table)
	if err != nil {
		return nil, fmt.Errorf("error creating category router: %w", err)
	}

	params, err := cfg.TrackerParams()
	if err != nil {
		return nil, err
	}

	mt, err := tracker.NewMultiTracker(params, logger.With(slog.String("component", "tracker")))
	if err != nil {
		return nil, fmt.Errorf("error creating tracker: %w", err)
	}

	detector, err := events.NewDetector(cfg.EventsConfig(),
		logger.With(slog.String("component", "events")))
	if err != nil {
		return nil, fmt.Errorf("error creating event detector: %w", err)
	}

	hlCfg, err := cfg.HighlightConfig()
	if err != nil {
		return nil, err
	}

	generator, err := highlight.NewGenerator(hlCfg,
		logger.With(slog.String("component", "highlight")))
	if err != nil {
		return nil, fmt.Errorf("error creating highlight generator: %w", err)
	}

	p := &Pipeline{
		router:    router,
		tracker:   mt,
		detector:  detector,
		generator: generator,
		stats:     newSessionStats(cfg.Pipeline.EventLogSize),
		log:       logger,
	}

	if cfg.Pipeline.Labels != "" {
		if err := p.LoadLabels(cfg.Pipeline.Labels); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// LoadLabels reads class names used to fill in detections reported without
// one
func (p *Pipeline) LoadLabels(path string) error {

	labels, err := LoadLabels(path)

	if err != nil {
		return fmt.Errorf("error loading labels %s: %w", path, err)
	}

	p.labels = labels
	p.log.Debug("labels loaded", slog.String("path", path), slog.Int("count", len(labels)))

	return nil
}

// Detector returns the event detector
func (p *Pipeline) Detector() *events.Detector {
	return p.detector
}

// Process tracks the detections of a frame at stream time ts and returns the
// frame result
func (p *Pipeline) Process(dets []detection.Detection, ts time.Duration) Frame {
	return p.process(dets, ts, nil)
}

// ProcessFrame processes the output of a detection.Source including any
// events reported with the frame
func (p *Pipeline) ProcessFrame(fd detection.FrameDetections) Frame {
	return p.process(fd.Detections, fd.Timestamp, fd.Events)
}

func (p *Pipeline) process(dets []detection.Detection, ts time.Duration,
	external []detection.ExternalEvent) Frame {

	dets = applyLabels(dets, p.labels)

	res := p.tracker.Update(p.router.Partition(dets))
	evts := p.detector.Detect(res.Objects, ts)

	for _, ext := range external {
		evts = append(evts, fromExternal(ext, ts))
	}

	cfg := p.detector.Config()
	players := activeCount(res.Objects[cfg.PlayerCategory])
	ball := len(res.Find(func(o tracker.TrackedObject) bool {
		return o.Active() && o.ClassID == cfg.BallClassID
	})) > 0

	frame := Frame{
		Number:        res.FrameCount,
		Timestamp:     ts,
		Objects:       res.Objects,
		Tracking:      res.Stats,
		Events:        evts,
		ActivityScore: activityScore(players, ball, p.detector.Speeds(), cfg.FastMovementSpeed),
		BallDetected:  ball,
		ObjectCount:   res.Stats.Total,
	}

	p.stats.record(len(dets), players, ball, evts)

	p.series = append(p.series, highlight.Frame{
		Timestamp:     ts,
		ObjectCount:   frame.ObjectCount,
		BallDetected:  ball,
		ActivityScore: frame.ActivityScore,
		Events:        evts,
	})

	for _, e := range evts {
		p.log.Info("event",
			slog.String("type", string(e.Type)),
			slog.Duration("timestamp", e.Timestamp),
			slog.Float64("confidence", e.Confidence),
			slog.String("description", e.Description),
		)
	}

	return frame
}

// Run drains the source through the pipeline calling fn with each frame
// result.  It returns nil once the source is exhausted
func (p *Pipeline) Run(ctx context.Context, src detection.Source, fn func(Frame) error) error {

	for {
		fd, err := src.Next(ctx)

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("error reading detections: %w", err)
		}

		frame := p.ProcessFrame(fd)

		if fn == nil {
			continue
		}

		if err := fn(frame); err != nil {
			return err
		}
	}
}

// Highlights ranks the moments of the recorded series
func (p *Pipeline) Highlights() []highlight.Candidate {
	return p.generator.Generate(p.series)
}

// Series returns a copy of the recorded time series
func (p *Pipeline) Series() []highlight.Frame {
	out := make([]highlight.Frame, len(p.series))
	copy(out, p.series)
	return out
}

// Stats returns the session statistics
func (p *Pipeline) Stats() SessionStats {
	return p.stats.snapshot()
}

// Reset clears all tracking, event and session state
func (p *Pipeline) Reset() {
	p.tracker.Reset()
	p.detector.Reset()
	p.stats.reset()
	p.series = nil
}

// fromExternal converts an event reported by a detection source
func fromExternal(ext detection.ExternalEvent, ts time.Duration) events.Event {
	return events.Event{
		Type:        events.Type(ext.Type),
		Timestamp:   ts,
		Confidence:  ext.Confidence,
		Location:    ext.Location,
		PlayerCount: ext.PlayerCount,
		Description: fmt.Sprintf("%s reported by source", ext.Type),
	}
}

// activeCount returns the number of objects observed on the current frame
func activeCount(objs map[int]tracker.TrackedObject) int {
	n := 0
	for _, o := range objs {
		if o.Active() {
			n++
		}
	}
	return n
}
