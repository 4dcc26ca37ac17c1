package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
	"github.com/swdee/go-sportscam/tracker"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Video describes the frames detections were produced from.
type Video struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	FPS    float64 `toml:"fps"`
}

// Tracking contains the centroid tracker thresholds.
type Tracking struct {
	// Default applies to every category without an override
	Default tracker.Params `toml:"default"`
	// Categories overrides thresholds per category name, zero fields fall
	// back to Default
	Categories map[string]tracker.Params `toml:"categories"`
	// ClassTable maps category names to detector class ids, empty uses the
	// COCO table
	ClassTable map[string][]int `toml:"class_table"`
}

// GoalArea is a goal rectangle in frame pixel coordinates.
type GoalArea struct {
	Name string `toml:"name"`
	X1   int    `toml:"x1"`
	Y1   int    `toml:"y1"`
	X2   int    `toml:"x2"`
	Y2   int    `toml:"y2"`
}

// Events contains the event detector rules.
type Events struct {
	BallClassID                 int        `toml:"ball_class_id"`
	PlayerCategory              string     `toml:"player_category"`
	GoalCooldownSeconds         float64    `toml:"goal_cooldown_seconds"`
	NearGoalMargin              float64    `toml:"near_goal_margin"`
	NearGoalCooldownSeconds     float64    `toml:"near_goal_cooldown_seconds"`
	FastMovementSpeed           float64    `toml:"fast_movement_speed"`
	FastMovementCooldownSeconds float64    `toml:"fast_movement_cooldown_seconds"`
	PossessionRadius            float64    `toml:"possession_radius"`
	PossessionCooldownSeconds   float64    `toml:"possession_cooldown_seconds"`
	GoalAreas                   []GoalArea `toml:"goal_areas"`
}

// Highlights contains highlight generation settings.
type Highlights struct {
	Strategy             string             `toml:"strategy"`
	SegmentWindowSeconds float64            `toml:"segment_window_seconds"`
	MinDurationSeconds   float64            `toml:"min_duration_seconds"`
	MaxDurationSeconds   float64            `toml:"max_duration_seconds"`
	MaxHighlights        int                `toml:"max_highlights"`
	ActivityThreshold    float64            `toml:"activity_threshold"`
	PeakDistanceSeconds  float64            `toml:"peak_distance_seconds"`
	EventWindowSeconds   float64            `toml:"event_window_seconds"`
	ActivityWindow       int                `toml:"activity_window"`
	Weights              map[string]float64 `toml:"weights"`
}

// Pipeline contains session level settings.
type Pipeline struct {
	// Labels is an optional file of class names, one per line
	Labels string `toml:"labels"`
	// EventLogSize is the number of recent events kept in session stats
	EventLogSize int `toml:"event_log_size"`
}

// Store contains persistence settings.
type Store struct {
	// Path of the SQLite database, empty disables persistence
	Path string `toml:"path"`
}

// Config encapsulates all configuration values.
type Config struct {
	Logging    Logging    `toml:"logging"`
	Video      Video      `toml:"video"`
	Tracking   Tracking   `toml:"tracking"`
	Events     Events     `toml:"events"`
	Highlights Highlights `toml:"highlights"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Store      Store      `toml:"store"`
}

// Load parses and validates a configuration file over the defaults.  An
// empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Sample returns the commented sample configuration.
func Sample() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// seconds converts a fractional number of seconds to a Duration.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ClassTable returns the category to class id table.
func (c *Config) ClassTable() (map[category.Category][]int, error) {
	if len(c.Tracking.ClassTable) == 0 {
		return category.COCOTable(), nil
	}

	table := make(map[category.Category][]int, len(c.Tracking.ClassTable))
	for name, ids := range c.Tracking.ClassTable {
		cat := category.Category(name)
		if !cat.Valid() {
			return nil, fmt.Errorf("tracking.class_table: %w: %q", category.ErrUnknownCategory, name)
		}
		table[cat] = ids
	}
	return table, nil
}

// TrackerParams returns the thresholds of every category.
func (c *Config) TrackerParams() (map[category.Category]tracker.Params, error) {
	params := make(map[category.Category]tracker.Params, len(category.All))
	for _, cat := range category.All {
		params[cat] = c.Tracking.Default
	}

	for name, override := range c.Tracking.Categories {
		cat := category.Category(name)
		if !cat.Valid() {
			return nil, fmt.Errorf("tracking.categories: %w: %q", category.ErrUnknownCategory, name)
		}

		p := c.Tracking.Default
		if override.MaxDistance != 0 {
			p.MaxDistance = override.MaxDistance
		}
		if override.MaxDisappeared != 0 {
			p.MaxDisappeared = override.MaxDisappeared
		}
		if override.TrailLength != 0 {
			p.TrailLength = override.TrailLength
		}
		params[cat] = p
	}

	return params, nil
}

// EventsConfig returns the event detector rules.
func (c *Config) EventsConfig() events.Config {
	e := c.Events

	areas := make([]events.GoalArea, len(e.GoalAreas))
	for i, g := range e.GoalAreas {
		areas[i] = events.GoalArea{Name: g.Name, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2}
	}

	return events.Config{
		BallClassID:          e.BallClassID,
		PlayerCategory:       category.Category(e.PlayerCategory),
		GoalAreas:            areas,
		GoalCooldown:         seconds(e.GoalCooldownSeconds),
		NearGoalMargin:       e.NearGoalMargin,
		NearGoalCooldown:     seconds(e.NearGoalCooldownSeconds),
		FastMovementSpeed:    e.FastMovementSpeed,
		FastMovementCooldown: seconds(e.FastMovementCooldownSeconds),
		PossessionRadius:     e.PossessionRadius,
		PossessionCooldown:   seconds(e.PossessionCooldownSeconds),
	}
}

// HighlightConfig returns the highlight generator settings.
func (c *Config) HighlightConfig() (highlight.Config, error) {
	h := c.Highlights

	strategy, err := highlight.ParseStrategy(h.Strategy)
	if err != nil {
		return highlight.Config{}, fmt.Errorf("highlights.strategy: %w", err)
	}

	weights := highlight.DefaultWeights()
	for name, w := range h.Weights {
		weights[events.Type(name)] = w
	}

	return highlight.Config{
		Strategy:          strategy,
		SegmentWindow:     seconds(h.SegmentWindowSeconds),
		MinDuration:       seconds(h.MinDurationSeconds),
		MaxDuration:       seconds(h.MaxDurationSeconds),
		MaxHighlights:     h.MaxHighlights,
		ActivityThreshold: h.ActivityThreshold,
		PeakDistance:      seconds(h.PeakDistanceSeconds),
		EventWindow:       seconds(h.EventWindowSeconds),
		ActivityWindow:    h.ActivityWindow,
		Weights:           weights,
	}, nil
}
