package detection

import "math"

// ModelOutput is a raw box as reported by a YOLO style model in the
// coordinate space of the model input, before rescaling to the frame
type ModelOutput struct {
	ClassID    int     `json:"class_id"`
	Confidence float32 `json:"confidence"`
	// XYXY are the left, top, right and bottom edges of the box
	XYXY [4]float32 `json:"xyxy"`
}

// Scale maps model input coordinates to frame coordinates.  A model run on a
// 640x640 input for a 1920x1080 frame has a scale of 3.0 x 1.6875
type Scale struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// FromModel converts raw model outputs to frame space detections.  Outputs
// with a confidence not above minConfidence are dropped.  Box edges are
// truncated to whole pixels after scaling and the center and area are taken
// from the scaled box
func FromModel(outputs []ModelOutput, scale Scale, minConfidence float32) []Detection {

	if scale.X == 0 {
		scale.X = 1
	}

	if scale.Y == 0 {
		scale.Y = 1
	}

	dets := make([]Detection, 0, len(outputs))

	for _, out := range outputs {

		if out.Confidence <= minConfidence {
			continue
		}

		box := BoxRect{
			Left:   truncate(out.XYXY[0] * scale.X),
			Top:    truncate(out.XYXY[1] * scale.Y),
			Right:  truncate(out.XYXY[2] * scale.X),
			Bottom: truncate(out.XYXY[3] * scale.Y),
		}

		center := Point{
			X: math.Floor(float64(box.Left+box.Right) / 2),
			Y: math.Floor(float64(box.Top+box.Bottom) / 2),
		}

		dets = append(dets, Detection{
			ClassID:    out.ClassID,
			Confidence: out.Confidence,
			Box:        box,
			Center:     &center,
			Area:       box.Area(),
		})
	}

	return dets
}

// truncate drops the fractional part of a scaled coordinate
func truncate(v float32) int {
	return int(v)
}
