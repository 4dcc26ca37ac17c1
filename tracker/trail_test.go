package tracker

import (
	"testing"

	"github.com/swdee/go-sportscam/detection"
)

func TestTrailEvictsOldest(t *testing.T) {

	trail := NewTrail(3)

	if _, ok := trail.Last(); ok {
		t.Errorf("expected empty trail to have no last point")
	}

	for i := 1; i <= 5; i++ {
		trail.Add(detection.Point{X: float64(i), Y: float64(i)})
	}

	if trail.Len() != 3 || trail.Cap() != 3 {
		t.Fatalf("expected len 3 cap 3, got len %d cap %d", trail.Len(), trail.Cap())
	}

	want := []float64{3, 4, 5}
	got := trail.Points()

	for i, x := range want {
		if got[i].X != x {
			t.Errorf("point %d: expected x=%.0f, got %.0f", i, x, got[i].X)
		}
	}

	last, ok := trail.Last()
	if !ok || last.X != 5 {
		t.Errorf("expected last point x=5, got %v", last)
	}

	trail.Reset()

	if trail.Len() != 0 || len(trail.Points()) != 0 {
		t.Errorf("expected reset trail to be empty")
	}
}

func TestTrailMinimumSize(t *testing.T) {

	trail := NewTrail(0)
	trail.Add(detection.Point{X: 1})
	trail.Add(detection.Point{X: 2})

	if trail.Len() != 1 {
		t.Fatalf("expected single point, got %d", trail.Len())
	}

	if p, _ := trail.Last(); p.X != 2 {
		t.Errorf("expected newest point kept, got %v", p)
	}
}

func TestTrailPointsIsCopy(t *testing.T) {

	trail := NewTrail(2)
	trail.Add(detection.Point{X: 1})

	pts := trail.Points()
	pts[0].X = 99

	if p, _ := trail.Last(); p.X != 1 {
		t.Errorf("expected trail to be unaffected by caller changes, got %v", p)
	}
}
