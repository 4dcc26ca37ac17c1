package config

import (
	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
	"github.com/swdee/go-sportscam/tracker"
)

const (
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
	defaultVideoWidth   = 640
	defaultVideoHeight  = 480
	defaultVideoFPS     = 30
	defaultEventLogSize = 100
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	trackDefaults := tracker.DefaultParams()
	catParams := tracker.DefaultCategoryParams()

	ev := events.DefaultConfig()
	areas := make([]GoalArea, len(ev.GoalAreas))
	for i, g := range ev.GoalAreas {
		areas[i] = GoalArea{Name: g.Name, X1: g.X1, Y1: g.Y1, X2: g.X2, Y2: g.Y2}
	}

	hl := highlight.DefaultConfig()
	weights := make(map[string]float64, len(hl.Weights))
	for t, w := range hl.Weights {
		weights[string(t)] = w
	}

	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Video: Video{
			Width:  defaultVideoWidth,
			Height: defaultVideoHeight,
			FPS:    defaultVideoFPS,
		},
		Tracking: Tracking{
			Default: trackDefaults,
			Categories: map[string]tracker.Params{
				string(category.Sports):   catParams[category.Sports],
				string(category.Vehicles): catParams[category.Vehicles],
			},
		},
		Events: Events{
			BallClassID:                 ev.BallClassID,
			PlayerCategory:              string(ev.PlayerCategory),
			GoalCooldownSeconds:         ev.GoalCooldown.Seconds(),
			NearGoalMargin:              ev.NearGoalMargin,
			NearGoalCooldownSeconds:     ev.NearGoalCooldown.Seconds(),
			FastMovementSpeed:           ev.FastMovementSpeed,
			FastMovementCooldownSeconds: ev.FastMovementCooldown.Seconds(),
			PossessionRadius:            ev.PossessionRadius,
			PossessionCooldownSeconds:   ev.PossessionCooldown.Seconds(),
			GoalAreas:                   areas,
		},
		Highlights: Highlights{
			Strategy:             string(hl.Strategy),
			SegmentWindowSeconds: hl.SegmentWindow.Seconds(),
			MinDurationSeconds:   hl.MinDuration.Seconds(),
			MaxDurationSeconds:   hl.MaxDuration.Seconds(),
			MaxHighlights:        hl.MaxHighlights,
			ActivityThreshold:    hl.ActivityThreshold,
			PeakDistanceSeconds:  hl.PeakDistance.Seconds(),
			EventWindowSeconds:   hl.EventWindow.Seconds(),
			ActivityWindow:       hl.ActivityWindow,
			Weights:              weights,
		},
		Pipeline: Pipeline{
			EventLogSize: defaultEventLogSize,
		},
	}
}
