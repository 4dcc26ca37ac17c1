package highlight

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrInvalidConfig is returned when the highlight configuration is unusable
var ErrInvalidConfig = errors.New("invalid highlight config")

// Strategy selects the algorithm used to find highlights
type Strategy string

const (
	// StrategySegments scores fixed windows and picks local maxima
	StrategySegments Strategy = "segments"
	// StrategyPeaks detects peaks of the per frame activity score
	StrategyPeaks Strategy = "peaks"
	// StrategyCombined merges both, the higher score wins where candidates
	// overlap.  Each set is first scaled so its best candidate scores 1, as
	// segment scores are unbounded while activity peaks lie in [0,1]
	StrategyCombined Strategy = "combined"
)

// ParseStrategy converts a strategy name to a Strategy
func ParseStrategy(s string) (Strategy, error) {

	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategySegments, StrategyPeaks, StrategyCombined:
		return st, nil
	case "":
		return StrategySegments, nil
	}

	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
}

// Config are the highlight generation settings
type Config struct {
	Strategy Strategy
	// SegmentWindow is the duration of each scoring window
	SegmentWindow time.Duration
	// MinDuration is the shortest highlight kept, MaxDuration the longest
	// clip length produced from an activity peak
	MinDuration   time.Duration
	MaxDuration   time.Duration
	MaxHighlights int
	// ActivityThreshold is the minimum activity score of a peak
	ActivityThreshold float64
	// PeakDistance is the minimum time between activity peaks
	PeakDistance time.Duration
	// EventWindow is the time either side of a peak searched for events
	EventWindow time.Duration
	// ActivityWindow is the number of samples either side of a peak checked
	// for sustained activity
	ActivityWindow int
	Weights        Weights
}

// DefaultConfig returns the default highlight settings
func DefaultConfig() Config {
	return Config{
		Strategy:          StrategySegments,
		SegmentWindow:     5 * time.Second,
		MinDuration:       10 * time.Second,
		MaxDuration:       30 * time.Second,
		MaxHighlights:     10,
		ActivityThreshold: 0.7,
		PeakDistance:      5 * time.Second,
		EventWindow:       2 * time.Second,
		ActivityWindow:    30,
		Weights:           DefaultWeights(),
	}
}

// Validate checks the configuration is usable
func (c Config) Validate() error {

	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}

	if c.SegmentWindow <= 0 || c.PeakDistance <= 0 || c.EventWindow < 0 {
		return fmt.Errorf("%w: windows must be positive", ErrInvalidConfig)
	}

	if c.MinDuration < 0 || c.MaxDuration < c.MinDuration {
		return fmt.Errorf("%w: duration range %s to %s", ErrInvalidConfig,
			c.MinDuration, c.MaxDuration)
	}

	if c.MaxHighlights < 1 || c.ActivityWindow < 1 {
		return fmt.Errorf("%w: max highlights and activity window must be at least 1",
			ErrInvalidConfig)
	}

	return nil
}

// Generator produces ranked highlight candidates from a recorded series
type Generator struct {
	cfg Config
	log *slog.Logger
}

// NewGenerator returns a Generator for the given settings
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {

	if cfg.Strategy == "" {
		cfg.Strategy = StrategySegments
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Generator{cfg: cfg, log: logger}, nil
}

// Config returns the settings in use
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate returns the best highlights of the series sorted by descending
// score.  An empty series produces no highlights
func (g *Generator) Generate(frames []Frame) []Candidate {

	if len(frames) == 0 {
		return nil
	}

	var cands []Candidate

	switch g.cfg.Strategy {
	case StrategyPeaks:
		cands = FindActivityPeaks(frames, g.cfg)

	case StrategyCombined:
		cands = merge(normalize(g.segmentCandidates(frames)),
			normalize(FindActivityPeaks(frames, g.cfg)))

	default:
		cands = g.segmentCandidates(frames)
	}

	sortByScore(cands)

	if len(cands) > g.cfg.MaxHighlights {
		cands = cands[:g.cfg.MaxHighlights]
	}

	for i := range cands {
		cands[i].enrich()
	}

	g.log.Info("highlights generated",
		slog.String("strategy", string(g.cfg.Strategy)),
		slog.Int("frames", len(frames)),
		slog.Int("highlights", len(cands)),
	)

	return cands
}

// segmentCandidates runs windowed segment scoring
func (g *Generator) segmentCandidates(frames []Frame) []Candidate {
	segments := ScoreSegments(frames, g.cfg.SegmentWindow, g.cfg.Weights)
	return FindPeakMoments(segments, g.cfg.MinDuration)
}

// normalize scales the scores of a candidate set in place so the best
// scores 1
func normalize(cands []Candidate) []Candidate {

	best := 0.0
	for _, c := range cands {
		best = math.Max(best, c.Score)
	}

	if best <= 0 {
		return cands
	}

	for i := range cands {
		cands[i].Score /= best
	}

	return cands
}

// merge combines candidate sets, where candidates overlap only the higher
// scoring one is kept
func merge(sets ...[]Candidate) []Candidate {

	var all []Candidate
	for _, s := range sets {
		all = append(all, s...)
	}

	sortByScore(all)

	var out []Candidate

next:
	for _, c := range all {
		for _, kept := range out {
			if c.overlaps(kept) {
				continue next
			}
		}
		out = append(out, c)
	}

	return out
}

// sortByScore orders candidates by descending score, ties by start time
func sortByScore(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].StartTime < cands[j].StartTime
	})
}
