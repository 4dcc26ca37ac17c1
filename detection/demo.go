package detection

import (
	"context"
	"io"
	"math"
	"time"
)

// COCO class ids used by the demo source
const (
	classPerson     = 0
	classCar        = 2
	classCat        = 15
	classSportsBall = 32
	classBottle     = 39
	classChair      = 56
)

// DemoSource generates moving mock detections for demonstrations without a
// camera or model.  The scene is a deterministic function of the frame number
type DemoSource struct {
	width, height int
	fps           int
	frames        int
	frame         int
	ids           *IDGenerator
}

// NewDemoSource returns a demo source producing the given number of frames
// for a frame of width x height at fps.  A frames value of 0 runs forever
func NewDemoSource(width, height, fps, frames int) *DemoSource {

	if fps <= 0 {
		fps = 30
	}

	return &DemoSource{
		width:  width,
		height: height,
		fps:    fps,
		frames: frames,
		ids:    NewIDGenerator(),
	}
}

// Next returns the detections for the next demo frame
func (d *DemoSource) Next(ctx context.Context) (FrameDetections, error) {

	if err := ctx.Err(); err != nil {
		return FrameDetections{}, err
	}

	if d.frames > 0 && d.frame >= d.frames {
		return FrameDetections{}, io.EOF
	}

	num := d.frame
	d.frame++

	t := float64(num) / float64(d.fps)
	dets := d.scene(t)
	d.ids.Assign(dets)

	return FrameDetections{
		Number:     num,
		Timestamp:  time.Duration(t * float64(time.Second)),
		Detections: dets,
	}, nil
}

// Close is a no-op for the demo source
func (d *DemoSource) Close() error {
	return nil
}

// scene builds the mock objects at time t seconds
func (d *DemoSource) scene(t float64) []Detection {

	w := float64(d.width)
	h := float64(d.height)

	box := func(x1, y1, x2, y2 float64) BoxRect {
		return BoxRect{Left: int(x1), Top: int(y1), Right: int(x2), Bottom: int(y2)}
	}

	// two players sweep across the pitch, the ball oscillates between the
	// goal mouths so goal and possession events occur periodically
	ballX := w/2 + (w/2-30)*math.Sin(t*0.4)
	ballY := h / 2
	p1X := ballX - 20
	p2X := w - ballX - 20

	return []Detection{
		New(classPerson, "person", 0.85, box(p1X-20, h*0.35, p1X+20, h*0.65)),
		New(classPerson, "person", 0.82, box(p2X-20, h*0.30, p2X+20, h*0.60)),
		New(classSportsBall, "sports ball", 0.74, box(ballX-6, ballY-6, ballX+6, ballY+6)),
		New(classCar, "car", 0.92, box(w*0.1, h*0.8, w*0.3, h*0.95)),
		New(classCat, "cat", 0.78, box(w*0.6+50*math.Sin(t), h*0.85, w*0.7+50*math.Sin(t), h*0.95)),
		New(classBottle, "bottle", 0.67, box(w*0.8, h*0.05, w*0.85, h*0.2)),
		New(classChair, "chair", 0.81, box(w*0.05, h*0.05, w*0.15, h*0.25)),
	}
}
