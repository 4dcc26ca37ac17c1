package detection

import (
	"encoding/json"
	"fmt"
	"math"
)

// BoxRect are the pixel dimensions of the bounding box of a detected object
type BoxRect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns the width of the box
func (b BoxRect) Width() int {
	return b.Right - b.Left
}

// Height returns the height of the box
func (b BoxRect) Height() int {
	return b.Bottom - b.Top
}

// Area returns the box area, zero for degenerate boxes
func (b BoxRect) Area() int {
	if b.Width() <= 0 || b.Height() <= 0 {
		return 0
	}
	return b.Width() * b.Height()
}

// Center returns the geometric center of the box
func (b BoxRect) Center() Point {
	return Point{
		X: float64(b.Left+b.Right) / 2,
		Y: float64(b.Top+b.Bottom) / 2,
	}
}

// MarshalJSON encodes the box as [x1, y1, x2, y2]
func (b BoxRect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.Left, b.Top, b.Right, b.Bottom})
}

// UnmarshalJSON decodes the box from [x1, y1, x2, y2].  Fractional pixel
// values are truncated
func (b *BoxRect) UnmarshalJSON(data []byte) error {

	var coords []float64

	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("bbox: %w", err)
	}

	if len(coords) != 4 {
		return fmt.Errorf("bbox: expected 4 coordinates, got %d", len(coords))
	}

	b.Left = int(coords[0])
	b.Top = int(coords[1])
	b.Right = int(coords[2])
	b.Bottom = int(coords[3])

	return nil
}

// Point is a position in pixel coordinates
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance to another point
func (p Point) Distance(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// finite reports if both coordinates are real numbers
func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) &&
		!math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// MarshalJSON encodes the point as [x, y]
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes the point from [x, y]
func (p *Point) UnmarshalJSON(data []byte) error {

	var coords []float64

	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("point: %w", err)
	}

	if len(coords) != 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(coords))
	}

	p.X = coords[0]
	p.Y = coords[1]

	return nil
}

// Detection defines the attributes of a single object observed in one frame
// by the external detector
type Detection struct {
	// ClassID is the line number in the labels file the Model was trained on
	ClassID int `json:"class_id"`
	// ClassName is the label for ClassID
	ClassName string `json:"class_name,omitempty"`
	// Confidence is the confidence score of the object detected
	Confidence float32 `json:"confidence"`
	// Box are the bounding box dimensions of the object location
	Box BoxRect `json:"bbox"`
	// Center is the detector supplied center point, if any
	Center *Point `json:"center,omitempty"`
	// Area is the bounding box area in pixels
	Area int `json:"area"`
	// ID is a unique ID assigned to the detection by its source
	ID int64 `json:"id,omitempty"`
}

// New returns a Detection for the given class and box with the center point
// and area derived from the box
func New(classID int, className string, confidence float32, box BoxRect) Detection {

	center := box.Center()

	return Detection{
		ClassID:    classID,
		ClassName:  className,
		Confidence: confidence,
		Box:        box,
		Center:     &center,
		Area:       box.Area(),
	}
}

// Centroid returns the detector supplied center point when present, otherwise
// the center of the bounding box
func (d Detection) Centroid() Point {
	if d.Center != nil {
		return *d.Center
	}
	return d.Box.Center()
}

// Valid reports if the detection is well formed.  Malformed detections are
// skipped by the tracker rather than aborting the frame
func (d Detection) Valid() bool {

	if d.Box.Right <= d.Box.Left || d.Box.Bottom <= d.Box.Top {
		return false
	}

	if d.Center != nil && !d.Center.finite() {
		return false
	}

	conf := float64(d.Confidence)

	if math.IsNaN(conf) || conf < 0 || conf > 1 {
		return false
	}

	return true
}
