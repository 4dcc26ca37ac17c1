package sportscam

import "github.com/swdee/go-sportscam/events"

// SessionStats are the counters of a tracking session
type SessionStats struct {
	TotalFrames     int
	TotalDetections int
	// PlayerCount is the number of players on the latest frame
	PlayerCount int
	// BallDetections is the number of frames the ball was seen on
	BallDetections int
	EventCounts    map[events.Type]int
	// RecentEvents holds the latest events, oldest first
	RecentEvents []events.Event
}

// sessionStats accumulates SessionStats keeping a bounded event log
type sessionStats struct {
	stats   SessionStats
	logSize int
}

func newSessionStats(logSize int) *sessionStats {
	if logSize < 1 {
		logSize = 1
	}
	s := &sessionStats{logSize: logSize}
	s.reset()
	return s
}

func (s *sessionStats) reset() {
	s.stats = SessionStats{
		EventCounts: make(map[events.Type]int),
	}
}

func (s *sessionStats) record(detections, players int, ball bool, evts []events.Event) {

	s.stats.TotalFrames++
	s.stats.TotalDetections += detections
	s.stats.PlayerCount = players

	if ball {
		s.stats.BallDetections++
	}

	for _, e := range evts {
		s.stats.EventCounts[e.Type]++
	}

	s.stats.RecentEvents = append(s.stats.RecentEvents, evts...)

	if over := len(s.stats.RecentEvents) - s.logSize; over > 0 {
		s.stats.RecentEvents = append([]events.Event(nil), s.stats.RecentEvents[over:]...)
	}
}

// snapshot returns a copy safe to hand to callers
func (s *sessionStats) snapshot() SessionStats {

	out := s.stats
	out.EventCounts = make(map[events.Type]int, len(s.stats.EventCounts))

	for k, v := range s.stats.EventCounts {
		out.EventCounts[k] = v
	}

	out.RecentEvents = append([]events.Event(nil), s.stats.RecentEvents...)

	return out
}
