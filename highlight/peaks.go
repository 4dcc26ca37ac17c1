package highlight

import (
	"sort"
	"time"

	"github.com/swdee/go-sportscam/events"
)

// findPeaks returns the indexes of local maxima of x with a value of at least
// height, separated by at least distance samples.  Flat peaks resolve to
// their middle sample (rounded down) and the first and last samples are never
// peaks.  When two peaks are closer than distance the higher one is kept,
// or the later one if they are equal
func findPeaks(x []float64, height float64, distance int) []int {

	var peaks []int

	for i := 1; i < len(x)-1; {
		if x[i-1] >= x[i] {
			i++
			continue
		}

		// walk to the end of a plateau
		j := i
		for j+1 < len(x) && x[j+1] == x[i] {
			j++
		}

		if j+1 < len(x) && x[j+1] < x[i] {
			mid := (i + j) / 2
			if x[mid] >= height {
				peaks = append(peaks, mid)
			}
		}

		i = j + 1
	}

	if distance <= 1 || len(peaks) < 2 {
		return peaks
	}

	// highest peaks claim their neighbourhood first, between equal heights
	// the later peak wins
	order := make([]int, len(peaks))
	for k := range order {
		order[k] = k
	}

	sort.Slice(order, func(a, b int) bool {
		pa, pb := peaks[order[a]], peaks[order[b]]
		if x[pa] != x[pb] {
			return x[pa] > x[pb]
		}
		return pa > pb
	})

	keep := make([]bool, len(peaks))
	for k := range keep {
		keep[k] = true
	}

	for _, k := range order {
		if !keep[k] {
			continue
		}

		for n := range peaks {
			if n == k || !keep[n] {
				continue
			}

			d := peaks[n] - peaks[k]
			if d < 0 {
				d = -d
			}

			if d < distance {
				keep[n] = false
			}
		}
	}

	out := peaks[:0]
	for k, p := range peaks {
		if keep[k] {
			out = append(out, p)
		}
	}

	return out
}

// FindActivityPeaks locates peaks of the per frame activity score and builds
// a classified candidate centred on each
func FindActivityPeaks(frames []Frame, cfg Config) []Candidate {

	if len(frames) == 0 {
		return nil
	}

	scores := make([]float64, len(frames))
	for i, f := range frames {
		scores[i] = f.ActivityScore
	}

	distance := int(sampleRate(frames) * cfg.PeakDistance.Seconds())
	seriesStart := frames[0].Timestamp
	seriesEnd := frames[len(frames)-1].Timestamp

	var out []Candidate

	for _, idx := range findPeaks(scores, cfg.ActivityThreshold, distance) {
		peak := frames[idx]

		evts := eventsBetween(frames, peak.Timestamp-cfg.EventWindow,
			peak.Timestamp+cfg.EventWindow)

		typ := classify(evts, peak.ActivityScore)
		dur := cfg.duration(scores, idx, typ)

		start := max(seriesStart, peak.Timestamp-dur/2)
		end := min(seriesEnd, peak.Timestamp+dur/2)

		out = append(out, Candidate{
			StartTime:     start,
			EndTime:       end,
			PeakTimestamp: peak.Timestamp,
			Score:         peak.ActivityScore,
			Type:          typ,
			Events:        evts,
			Duration:      dur,
		})
	}

	return out
}

// classify picks the highlight type from the events around a moment, the
// first matching rule wins
func classify(evts []events.Event, activity float64) Type {

	nearGoal := events.Has(evts, events.BallNearGoal)
	celebration := events.Has(evts, events.Celebration)

	switch {
	case events.Has(evts, events.Goal) || (nearGoal && celebration):
		return TypeGoal
	case nearGoal:
		return TypeGoalAttempt
	case celebration:
		return TypeCelebration
	case events.Has(evts, events.FastMovement) && activity > 0.8:
		return TypeFastAction
	case activity > 0.7:
		return TypeHighActivity
	default:
		return TypeGeneral
	}
}

// baseDurations is the nominal clip length per highlight type
var baseDurations = map[Type]time.Duration{
	TypeGoal:         20 * time.Second,
	TypeGoalAttempt:  15 * time.Second,
	TypeCelebration:  10 * time.Second,
	TypeFastAction:   15 * time.Second,
	TypeHighActivity: 12 * time.Second,
	TypeGeneral:      10 * time.Second,
}

// sustainedExtension is added to a highlight surrounded by sustained
// activity
const sustainedExtension = 5 * time.Second

// duration returns the clip length for a peak at idx, extended when most of
// the samples around the peak are active and clamped to the configured range
func (c Config) duration(scores []float64, idx int, typ Type) time.Duration {

	d, ok := baseDurations[typ]
	if !ok {
		d = baseDurations[TypeGeneral]
	}

	from := max(0, idx-c.ActivityWindow)
	to := min(len(scores), idx+c.ActivityWindow)

	active := 0
	for _, s := range scores[from:to] {
		if s > 0.5 {
			active++
		}
	}

	if float64(active) > float64(c.ActivityWindow)*0.7 {
		d += sustainedExtension
	}

	return min(max(d, c.MinDuration), c.MaxDuration)
}
