package tracker

import "github.com/swdee/go-sportscam/detection"

// Trail is a fixed capacity FIFO of the most recent centroids of a tracked
// object used for drawing a trail.  Once full the oldest point is evicted
type Trail struct {
	// size is the maximum number of most recent points to keep in history
	size int
	// points is the ring storage, start indexes the oldest point
	points []detection.Point
	start  int
	count  int
}

// NewTrail returns a new trail history.  Size specifies the maximum length of
// the trail to maintain and is raised to 1 if smaller
func NewTrail(size int) *Trail {

	if size < 1 {
		size = 1
	}

	return &Trail{
		size:   size,
		points: make([]detection.Point, size),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.start = 0
	t.count = 0
}

// Add a point to the history, dropping the oldest point when full
func (t *Trail) Add(p detection.Point) {

	if t.count < t.size {
		t.points[(t.start+t.count)%t.size] = p
		t.count++
		return
	}

	// overwrite oldest
	t.points[t.start] = p
	t.start = (t.start + 1) % t.size
}

// Len returns the number of points held
func (t *Trail) Len() int {
	return t.count
}

// Cap returns the maximum number of points held
func (t *Trail) Cap() int {
	return t.size
}

// Points returns a copy of the history ordered oldest to newest
func (t *Trail) Points() []detection.Point {

	out := make([]detection.Point, t.count)

	for i := 0; i < t.count; i++ {
		out[i] = t.points[(t.start+i)%t.size]
	}

	return out
}

// Last returns the most recent point and false if the trail is empty
func (t *Trail) Last() (detection.Point, bool) {

	if t.count == 0 {
		return detection.Point{}, false
	}

	return t.points[(t.start+t.count-1)%t.size], true
}
