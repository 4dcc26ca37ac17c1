package render

import (
	"image"
	"image/color"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/tracker"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the bounding box.  If set to false then use
	// the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the midpoint circle should be the
	// same color as that of the bounding box.  If set to false then use
	// the color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
	// MinPoints is the trail length required before a trail is drawn
	MinPoints int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    true,
		CircleColor:   Pink,
		CircleRadius:  3,
		MinPoints:     3,
	}
}

// Trails draws the centroid history of every tracked object on the source
// image
func Trails(img *gocv.Mat, objects events.Snapshot, style TrailStyle) {

	for _, cat := range category.All {
		objs := objects[cat]

		for _, id := range tracker.SortedIDs(objs) {
			Trail(img, objs[id], style)
		}
	}
}

// Trail draws the trail line of a single object ending in a circle at its
// latest centroid
func Trail(img *gocv.Mat, obj tracker.TrackedObject, style TrailStyle) {

	points := obj.Trail

	if len(points) < style.MinPoints || len(points) < 2 {
		return
	}

	objClr := ObjectColor(obj.Category, obj.ID)

	// determine style colors to use
	lineClr := objClr
	circleClr := objClr

	if !style.LineSame {
		lineClr = style.LineColor
	}

	if !style.CircleSame {
		circleClr = style.CircleColor
	}

	for i := 1; i < len(points); i++ {
		gocv.Line(img, toPt(points[i-1]), toPt(points[i]), lineClr, style.LineThickness)
	}

	gocv.Circle(img, toPt(points[len(points)-1]), style.CircleRadius, circleClr, -1)
}

// toPt rounds a centroid to pixel coordinates
func toPt(p detection.Point) image.Point {
	return image.Pt(int(p.X+0.5), int(p.Y+0.5))
}
