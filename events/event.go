package events

import (
	"fmt"
	"time"
)

// Type is the kind of a detected game event
type Type string

const (
	Goal             Type = "goal"
	BallNearGoal     Type = "ball_near_goal"
	FastMovement     Type = "fast_movement"
	PossessionChange Type = "possession_change"
	// Celebration is never produced by the Detector, it is accepted from
	// external producers such as a pose analyser
	Celebration Type = "celebration"
)

// Event is a discrete game occurrence detected on a single frame.  Only the
// fields relevant to the event Type are set
type Event struct {
	Type Type
	// Timestamp is the stream time of the frame the event fired on
	Timestamp  time.Duration
	Confidence float64
	// Location is the goal area name for goal events
	Location string
	// PlayerID is the tracked person id for fast movement events
	PlayerID int
	// FromPlayer and ToPlayer are the tracked person ids of a possession
	// change
	FromPlayer int
	ToPlayer   int
	// Speed in pixels per second for fast movement events
	Speed float64
	// PlayerCount is the number of players visible when the event fired
	PlayerCount int
	Description string
}

// String returns a short human readable form of the event
func (e Event) String() string {
	return fmt.Sprintf("%s @ %s (%.2f)", e.Type, e.Timestamp, e.Confidence)
}

// Types returns the distinct event types present in order of first
// appearance
func Types(evts []Event) []Type {

	seen := make(map[Type]bool)
	var out []Type

	for _, e := range evts {
		if seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		out = append(out, e.Type)
	}

	return out
}

// Has reports if any event is of the given type
func Has(evts []Event, t Type) bool {
	for _, e := range evts {
		if e.Type == t {
			return true
		}
	}
	return false
}
