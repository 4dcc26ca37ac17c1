package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/tracker"
	"gocv.io/x/gocv"
)

// DetectionBoxes renders the bounding boxes around raw detections before
// tracking
func DetectionBoxes(img *gocv.Mat, dets []detection.Detection, font Font,
	lineThickness int) {

	// keep a record of all box labels for later rendering
	labels := make([]textLabel, 0, len(dets))

	for i, det := range dets {

		useClr := classColors[i%len(classColors)]

		rect := image.Rect(det.Box.Left, det.Box.Top, det.Box.Right, det.Box.Bottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("%s %.2f", det.ClassName, det.Confidence)
		labels = append(labels, font.labelAbove(text, det.Box.Left, det.Box.Right,
			det.Box.Top, lineThickness, useClr))
	}

	font.drawLabels(img, labels)
}

// TrackedBoxes renders the bounding boxes of the tracked objects observed on
// the current frame labelled with their class name and ID.  Objects that
// went unmatched this frame are not drawn
func TrackedBoxes(img *gocv.Mat, objects events.Snapshot, font Font,
	lineThickness int) {

	labels := make([]textLabel, 0)

	for _, cat := range category.All {
		objs := objects[cat]

		for _, id := range tracker.SortedIDs(objs) {
			obj := objs[id]

			if !obj.Active() {
				continue
			}

			useClr := ObjectColor(cat, id)

			rect := image.Rect(obj.Box.Left, obj.Box.Top, obj.Box.Right, obj.Box.Bottom)
			gocv.Rectangle(img, rect, useClr, lineThickness)

			name := obj.ClassName
			if name == "" {
				name = string(cat)
			}

			text := fmt.Sprintf("%s %d", name, id)
			labels = append(labels, font.labelAbove(text, obj.Box.Left, obj.Box.Right,
				obj.Box.Top, lineThickness, useClr))
		}
	}

	// labels are drawn last so trails and other boxes don't overlap them
	font.drawLabels(img, labels)
}
