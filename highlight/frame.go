package highlight

import (
	"time"

	"github.com/swdee/go-sportscam/events"
)

// Frame is one element of the time series the scorer consumes.  Frames must
// be ordered by ascending Timestamp
type Frame struct {
	Timestamp time.Duration
	// ObjectCount is the number of tracked objects on the frame
	ObjectCount int
	// BallDetected is true when a ball was tracked on the frame
	BallDetected bool
	// ActivityScore is a scalar in [0,1] measuring how much is happening
	ActivityScore float64
	Events        []events.Event
}

// sampleRate estimates the number of frames per second of the series
func sampleRate(frames []Frame) float64 {

	if len(frames) < 2 {
		return 1
	}

	span := frames[len(frames)-1].Timestamp - frames[0].Timestamp

	if span <= 0 {
		return 1
	}

	return float64(len(frames)-1) / span.Seconds()
}

// eventsBetween returns the events of all frames with a timestamp within
// [from, to]
func eventsBetween(frames []Frame, from, to time.Duration) []events.Event {

	var out []events.Event

	for _, f := range frames {
		if f.Timestamp < from || f.Timestamp > to {
			continue
		}
		out = append(out, f.Events...)
	}

	return out
}
