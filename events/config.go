package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
)

// ErrInvalidConfig is returned when the detector configuration is unusable
var ErrInvalidConfig = errors.New("invalid event detector config")

// GoalArea is a named rectangle in pixel coordinates of the frame, bounds
// are inclusive
type GoalArea struct {
	Name string
	X1   int
	Y1   int
	X2   int
	Y2   int
}

// Contains reports if the point lies within the area including its edges
func (g GoalArea) Contains(p detection.Point) bool {
	return float64(g.X1) <= p.X && p.X <= float64(g.X2) &&
		float64(g.Y1) <= p.Y && p.Y <= float64(g.Y2)
}

// Config are the rule thresholds of a Detector
type Config struct {
	// BallClassID is the detector class id of the ball
	BallClassID int
	// PlayerCategory is the category whose objects are treated as players
	PlayerCategory category.Category
	GoalAreas      []GoalArea
	// GoalCooldown is the minimum time between goal events of the same area
	GoalCooldown time.Duration
	// NearGoalMargin is the distance in pixels around a goal area in which
	// the ball counts as near the goal, zero disables the rule
	NearGoalMargin   float64
	NearGoalCooldown time.Duration
	// FastMovementSpeed is the player speed in pixels per second above which
	// a fast movement event fires
	FastMovementSpeed    float64
	FastMovementCooldown time.Duration
	// PossessionRadius is the maximum ball to player distance in pixels for
	// the player to be in possession
	PossessionRadius float64
	// PossessionCooldown must be strictly exceeded since the last change
	// before another change is reported
	PossessionCooldown time.Duration
}

// DefaultGoalAreas returns the goal areas for a 640x480 frame
func DefaultGoalAreas() []GoalArea {
	return []GoalArea{
		{Name: "left_goal", X1: 0, Y1: 200, X2: 100, Y2: 400},
		{Name: "right_goal", X1: 540, Y1: 200, X2: 640, Y2: 400},
	}
}

// DefaultConfig returns the default rule thresholds
func DefaultConfig() Config {
	return Config{
		BallClassID:          32,
		PlayerCategory:       category.People,
		GoalAreas:            DefaultGoalAreas(),
		GoalCooldown:         5 * time.Second,
		NearGoalMargin:       100,
		NearGoalCooldown:     2 * time.Second,
		FastMovementSpeed:    50,
		FastMovementCooldown: 3 * time.Second,
		PossessionRadius:     50,
		PossessionCooldown:   2 * time.Second,
	}
}

// Validate checks the configuration is usable
func (c Config) Validate() error {

	if !c.PlayerCategory.Valid() {
		return fmt.Errorf("%w: player category: %w", ErrInvalidConfig,
			category.ErrUnknownCategory)
	}

	names := make(map[string]bool, len(c.GoalAreas))

	for _, g := range c.GoalAreas {
		if g.Name == "" {
			return fmt.Errorf("%w: goal area without a name", ErrInvalidConfig)
		}

		if names[g.Name] {
			return fmt.Errorf("%w: duplicate goal area %q", ErrInvalidConfig, g.Name)
		}
		names[g.Name] = true

		if g.X2 <= g.X1 || g.Y2 <= g.Y1 {
			return fmt.Errorf("%w: goal area %q has empty bounds", ErrInvalidConfig, g.Name)
		}
	}

	if c.NearGoalMargin < 0 || c.FastMovementSpeed <= 0 || c.PossessionRadius <= 0 {
		return fmt.Errorf("%w: distances and speeds must be positive", ErrInvalidConfig)
	}

	if c.GoalCooldown < 0 || c.NearGoalCooldown < 0 || c.FastMovementCooldown < 0 ||
		c.PossessionCooldown < 0 {
		return fmt.Errorf("%w: cooldowns must not be negative", ErrInvalidConfig)
	}

	return nil
}
