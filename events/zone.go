package events

import (
	clipper "github.com/ctessum/go.clipper"
	"github.com/swdee/go-sportscam/detection"
)

// zone is a goal area with its surrounding near goal polygon
type zone struct {
	area GoalArea
	// near is the goal area grown by the near goal margin, nil when the near
	// goal rule is disabled
	near clipper.Path
}

// newZone computes the near goal polygon of a goal area by offsetting its
// rectangle outward with rounded corners
func newZone(area GoalArea, margin float64) zone {

	z := zone{area: area}

	if margin <= 0 {
		return z
	}

	path := clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(area.X1), Y: clipper.CInt(area.Y1)},
		&clipper.IntPoint{X: clipper.CInt(area.X2), Y: clipper.CInt(area.Y1)},
		&clipper.IntPoint{X: clipper.CInt(area.X2), Y: clipper.CInt(area.Y2)},
		&clipper.IntPoint{X: clipper.CInt(area.X1), Y: clipper.CInt(area.Y2)},
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtClosedPolygon)

	solution := co.Execute(margin)

	// offsetting a convex rectangle outward yields a single polygon
	for _, sol := range solution {
		if len(sol) > len(z.near) {
			z.near = sol
		}
	}

	return z
}

// inGoal reports if the point is inside the goal area
func (z zone) inGoal(p detection.Point) bool {
	return z.area.Contains(p)
}

// nearGoal reports if the point is inside the near goal polygon but not the
// goal area itself
func (z zone) nearGoal(p detection.Point) bool {

	if len(z.near) == 0 || z.inGoal(p) {
		return false
	}

	return pathContains(z.near, p)
}

// polygon returns the near goal outline as points for drawing
func (z zone) polygon() []detection.Point {

	pts := make([]detection.Point, len(z.near))

	for i, pt := range z.near {
		pts[i] = detection.Point{X: float64(pt.X), Y: float64(pt.Y)}
	}

	return pts
}

// pathContains tests if a point lies inside a closed polygon using the even
// odd ray casting rule
func pathContains(path clipper.Path, p detection.Point) bool {

	inside := false
	n := len(path)

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := float64(path[i].X), float64(path[i].Y)
		xj, yj := float64(path[j].X), float64(path[j].Y)

		if (yi > p.Y) != (yj > p.Y) &&
			p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}
