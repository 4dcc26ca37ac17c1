package highlight

import (
	"time"

	"github.com/swdee/go-sportscam/events"
	"gonum.org/v1/gonum/stat"
)

const (
	// UnknownEventWeight is applied to event types missing from Weights
	UnknownEventWeight = 0.1
	// objectWeight is the score per tracked object averaged over a segment
	objectWeight = 0.1
	// ballWeight is the score per frame with a ball in a segment
	ballWeight = 0.2
	// PeakFloor is the minimum score of a segment to be a highlight peak
	PeakFloor = 0.5
	// peakNeighbours is the number of segments each side a peak must exceed
	peakNeighbours = 2
)

// Weights map an event type to its contribution to segment score
type Weights map[events.Type]float64

// DefaultWeights returns the default event weighting
func DefaultWeights() Weights {
	return Weights{
		events.Goal:             1.0,
		events.FastMovement:     0.6,
		events.PossessionChange: 0.3,
	}
}

// weight returns the weight of an event type
func (w Weights) weight(t events.Type) float64 {
	if v, ok := w[t]; ok {
		return v
	}
	return UnknownEventWeight
}

// Segment is a fixed duration window of the time series
type Segment struct {
	Start  time.Duration
	End    time.Duration
	Score  float64
	Frames []Frame
}

// ScoreSegments partitions the series into consecutive windows starting at
// the first frame and scores each.  Windows are half open [start, end)
// except the last which includes the final frame.  A series whose frames all
// share one timestamp yields a single zero length segment
func ScoreSegments(frames []Frame, window time.Duration, weights Weights) []Segment {

	if len(frames) == 0 {
		return nil
	}

	if window <= 0 {
		window = DefaultConfig().SegmentWindow
	}

	if weights == nil {
		weights = DefaultWeights()
	}

	start := frames[0].Timestamp
	end := frames[len(frames)-1].Timestamp

	if end <= start {
		return []Segment{{
			Start:  start,
			End:    end,
			Score:  scoreFrames(frames, weights),
			Frames: frames,
		}}
	}

	var segments []Segment

	// frames are ordered so each window continues where the last stopped
	pos := 0

	for cur := start; cur < end; {
		segEnd := cur + window
		if segEnd > end {
			segEnd = end
		}
		last := segEnd == end

		from := pos
		for pos < len(frames) &&
			(frames[pos].Timestamp < segEnd || (last && frames[pos].Timestamp == end)) {
			pos++
		}

		data := frames[from:pos:pos]

		segments = append(segments, Segment{
			Start:  cur,
			End:    segEnd,
			Score:  scoreFrames(data, weights),
			Frames: data,
		})

		cur = segEnd
	}

	return segments
}

// scoreFrames sums weighted event confidence with object and ball activity
func scoreFrames(frames []Frame, weights Weights) float64 {

	if len(frames) == 0 {
		return 0
	}

	score := 0.0
	counts := make([]float64, len(frames))
	balls := 0

	for i, f := range frames {
		for _, e := range f.Events {
			score += weights.weight(e.Type) * e.Confidence
		}

		counts[i] = float64(f.ObjectCount)

		if f.BallDetected {
			balls++
		}
	}

	score += stat.Mean(counts, nil) * objectWeight
	score += float64(balls) * ballWeight

	return score
}

// FindPeakMoments returns a candidate for every segment whose score exceeds
// PeakFloor and strictly exceeds the scores of up to two segments either side
// of it.  The candidate spans the peak and its immediate neighbours and is
// dropped when that span is shorter than minDuration
func FindPeakMoments(segments []Segment, minDuration time.Duration) []Candidate {

	var out []Candidate

	for i, seg := range segments {
		if seg.Score <= PeakFloor || !isLocalMax(segments, i) {
			continue
		}

		first := max(0, i-1)
		last := min(len(segments)-1, i+1)

		start := segments[first].Start
		end := segments[last].End

		if end-start < minDuration {
			continue
		}

		var evts []events.Event
		activity := make([]float64, len(seg.Frames))

		for k, f := range seg.Frames {
			evts = append(evts, f.Events...)
			activity[k] = f.ActivityScore
		}

		meanActivity := 0.0
		if len(activity) > 0 {
			meanActivity = stat.Mean(activity, nil)
		}

		out = append(out, Candidate{
			StartTime:     start,
			EndTime:       end,
			PeakTimestamp: seg.Start + (seg.End-seg.Start)/2,
			Score:         seg.Score,
			Type:          classify(evts, meanActivity),
			Events:        evts,
			Duration:      end - start,
		})
	}

	return out
}

// isLocalMax reports if segment i strictly exceeds its neighbours
func isLocalMax(segments []Segment, i int) bool {

	for j := max(0, i-peakNeighbours); j <= min(len(segments)-1, i+peakNeighbours); j++ {
		if j != i && segments[j].Score >= segments[i].Score {
			return false
		}
	}

	return true
}
