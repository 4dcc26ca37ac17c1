package render

import (
	"fmt"
	"image"
	"sort"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/tracker"
	"gocv.io/x/gocv"
)

// GoalAreas draws each goal rectangle and the outline of the zone around it
// in which the ball counts as near goal
func GoalAreas(img *gocv.Mat, areas []events.GoalArea,
	nearGoal map[string][]detection.Point, font Font, lineThickness int) {

	labels := make([]textLabel, 0, len(areas))

	for _, area := range areas {

		if poly, ok := nearGoal[area.Name]; ok && len(poly) > 2 {
			pts := make([]image.Point, len(poly))
			for i, p := range poly {
				pts[i] = toPt(p)
			}

			ptsVec := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
			gocv.Polylines(img, ptsVec, true, Orange, lineThickness)
			ptsVec.Close()
		}

		gocv.Rectangle(img, image.Rect(area.X1, area.Y1, area.X2, area.Y2), Red,
			lineThickness)

		labels = append(labels, font.labelAbove(area.Name, area.X1, area.X2, area.Y1,
			lineThickness, Red))
	}

	font.drawLabels(img, labels)
}

// EventBanner stacks one line per event in the top left corner of the image
func EventBanner(img *gocv.Mat, evts []events.Event, font Font) {

	labels := make([]textLabel, 0, len(evts))
	pt := image.Pt(10, 10)

	for _, e := range evts {
		text := e.Description
		if text == "" {
			text = e.String()
		}

		l := font.labelAt(text, pt, EventColor(e.Type))
		labels = append(labels, l)

		pt.Y = l.rect.Max.Y + 4
	}

	font.drawLabels(img, labels)
}

// StatsPanel writes the live object count of each non empty category in the
// top right corner of the image
func StatsPanel(img *gocv.Mat, stats tracker.Stats, font Font) {

	lines := make([]string, 0, len(category.All)+1)

	for _, cat := range category.All {
		if n := stats.Counts[cat]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d (avg %.1f)", cat, n, stats.Averages[cat]))
		}
	}

	lines = append(lines, fmt.Sprintf("total: %d", stats.Total))

	labels := make([]textLabel, 0, len(lines))
	y := 10

	for _, line := range lines {
		textSize := gocv.GetTextSize(line, font.Face, font.Scale, font.Thickness)
		x := img.Cols() - textSize.X - font.LeftPad - font.RightPad - 10

		l := font.labelAt(line, image.Pt(x, y), Black)
		labels = append(labels, l)

		y = l.rect.Max.Y
	}

	font.drawLabels(img, labels)
}

// Overlay bundles the styles used to annotate a frame
type Overlay struct {
	Font          Font
	BannerFont    Font
	Trail         TrailStyle
	LineThickness int
	GoalAreas     []events.GoalArea
	// NearGoal are the near goal outlines keyed by goal area name
	NearGoal map[string][]detection.Point
}

// NewOverlay returns an Overlay with default styles for the detector's goal
// areas
func NewOverlay(detector *events.Detector) *Overlay {
	return &Overlay{
		Font:          DefaultFont(),
		BannerFont:    BannerFont(),
		Trail:         DefaultTrailStyle(),
		LineThickness: 2,
		GoalAreas:     detector.Config().GoalAreas,
		NearGoal:      detector.NearGoalPolygons(),
	}
}

// Draw annotates img with the goal areas, object trails and boxes, the
// frame's events and the category counts
func (o *Overlay) Draw(img *gocv.Mat, objects events.Snapshot,
	evts []events.Event, stats tracker.Stats) {

	GoalAreas(img, o.GoalAreas, o.NearGoal, o.Font, o.LineThickness)
	Trails(img, objects, o.Trail)
	TrackedBoxes(img, objects, o.Font, o.LineThickness)
	EventBanner(img, sortEvents(evts), o.BannerFont)
	StatsPanel(img, stats, o.Font)
}

// sortEvents returns the events ordered by descending confidence
func sortEvents(evts []events.Event) []events.Event {

	out := make([]events.Event, len(evts))
	copy(out, evts)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})

	return out
}
