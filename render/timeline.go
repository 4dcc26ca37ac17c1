package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/swdee/go-sportscam/highlight"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// TimelineStyle defines the layout and colors of a session timeline image
type TimelineStyle struct {
	Width  int
	Height int
	// Margins around the plot area, the top and bottom margins hold the
	// title and time axis labels
	MarginLeft   int
	MarginRight  int
	MarginTop    int
	MarginBottom int
	Background   color.RGBA
	CurveColor   color.RGBA
	CurveWidth   float32
	// HighlightColor is blended over the time range of each highlight
	HighlightColor color.NRGBA
	GridColor      color.RGBA
	TextColor      color.RGBA
	// MarkerHeight is the length of the event tick marks at the top of the
	// plot
	MarkerHeight int
	// Threshold draws a horizontal grid line at this activity level, zero
	// disables it
	Threshold float64
	Title     string
}

// DefaultTimelineStyle returns default timeline settings
func DefaultTimelineStyle() TimelineStyle {
	return TimelineStyle{
		Width:          1200,
		Height:         240,
		MarginLeft:     40,
		MarginRight:    10,
		MarginTop:      20,
		MarginBottom:   20,
		Background:     color.RGBA{R: 24, G: 24, B: 24, A: 255},
		CurveColor:     Green,
		CurveWidth:     2,
		HighlightColor: color.NRGBA{R: 255, G: 255, B: 50, A: 80},
		GridColor:      color.RGBA{R: 96, G: 96, B: 96, A: 255},
		TextColor:      White,
		MarkerHeight:   8,
		Threshold:      0.5,
		Title:          "activity",
	}
}

// timelineScale maps stream time and activity to pixel coordinates of the
// plot area
type timelineScale struct {
	plot  image.Rectangle
	start time.Duration
	span  time.Duration
}

// newTimelineScale returns the scale for a series drawn with style
func newTimelineScale(series []highlight.Frame, style TimelineStyle) timelineScale {

	s := timelineScale{
		plot: image.Rect(style.MarginLeft, style.MarginTop,
			style.Width-style.MarginRight, style.Height-style.MarginBottom),
	}

	if len(series) > 0 {
		s.start = series[0].Timestamp
		s.span = series[len(series)-1].Timestamp - s.start
	}

	return s
}

// x returns the pixel column of stream time ts
func (s timelineScale) x(ts time.Duration) int {

	if s.span <= 0 {
		return s.plot.Min.X
	}

	frac := float64(ts-s.start) / float64(s.span)
	frac = math.Max(0, math.Min(1, frac))

	return s.plot.Min.X + int(math.Round(frac*float64(s.plot.Dx()-1)))
}

// y returns the pixel row of activity level v
func (s timelineScale) y(v float64) int {
	v = math.Max(0, math.Min(1, v))
	return s.plot.Max.Y - 1 - int(math.Round(v*float64(s.plot.Dy()-1)))
}

// Timeline renders the activity score of a session as an image with the
// highlight time ranges shaded and a colored tick for every event
func Timeline(series []highlight.Frame, cands []highlight.Candidate,
	style TimelineStyle) *image.RGBA {

	img := image.NewRGBA(image.Rect(0, 0, style.Width, style.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)

	sc := newTimelineScale(series, style)

	// plot frame and threshold grid line
	drawRectOutline(img, sc.plot, style.GridColor)

	if style.Threshold > 0 {
		y := sc.y(style.Threshold)
		for x := sc.plot.Min.X; x < sc.plot.Max.X; x += 4 {
			img.SetRGBA(x, y, style.GridColor)
		}
	}

	for _, c := range cands {
		span := image.Rect(sc.x(c.StartTime), sc.plot.Min.Y+1,
			sc.x(c.EndTime)+1, sc.plot.Max.Y-1)
		draw.Draw(img, span, image.NewUniform(style.HighlightColor), image.Point{}, draw.Over)
	}

	drawCurve(img, series, sc, style)

	for _, f := range series {
		for _, e := range f.Events {
			x := sc.x(e.Timestamp)
			clr := EventColor(e.Type)

			for y := sc.plot.Min.Y + 1; y < sc.plot.Min.Y+1+style.MarkerHeight; y++ {
				img.SetRGBA(x, y, clr)
			}
		}
	}

	// labels
	textY := style.MarginTop - 6
	drawText(img, style.Title, style.MarginLeft, textY, style.TextColor)

	if len(series) > 0 {
		axisY := style.Height - 6
		drawText(img, formatStreamTime(sc.start), sc.plot.Min.X, axisY, style.TextColor)

		end := formatStreamTime(sc.start + sc.span)
		drawText(img, end, sc.plot.Max.X-textWidth(end), axisY, style.TextColor)

		summary := fmt.Sprintf("%d highlights", len(cands))
		drawText(img, summary, sc.plot.Max.X-textWidth(summary), textY, style.TextColor)
	}

	return img
}

// drawCurve strokes the activity score polyline
func drawCurve(img *image.RGBA, series []highlight.Frame, sc timelineScale,
	style TimelineStyle) {

	if len(series) < 2 {
		return
	}

	b := img.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	half := style.CurveWidth / 2

	for i := 1; i < len(series); i++ {
		x0 := float32(sc.x(series[i-1].Timestamp))
		y0 := float32(sc.y(series[i-1].ActivityScore))
		x1 := float32(sc.x(series[i].Timestamp))
		y1 := float32(sc.y(series[i].ActivityScore))

		dx, dy := x1-x0, y1-y0
		length := float32(math.Hypot(float64(dx), float64(dy)))

		if length == 0 {
			continue
		}

		// normal offset turns the segment into a quad of the curve width
		nx, ny := -dy/length*half, dx/length*half

		r.MoveTo(x0+nx, y0+ny)
		r.LineTo(x1+nx, y1+ny)
		r.LineTo(x1-nx, y1-ny)
		r.LineTo(x0-nx, y0-ny)
		r.ClosePath()
	}

	r.Draw(img, b, image.NewUniform(style.CurveColor), image.Point{})
}

// drawRectOutline draws a one pixel border just inside rect
func drawRectOutline(img *image.RGBA, rect image.Rectangle, clr color.RGBA) {

	for x := rect.Min.X; x < rect.Max.X; x++ {
		img.SetRGBA(x, rect.Min.Y, clr)
		img.SetRGBA(x, rect.Max.Y-1, clr)
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		img.SetRGBA(rect.Min.X, y, clr)
		img.SetRGBA(rect.Max.X-1, y, clr)
	}
}

// drawText writes text with its baseline at x,y
func drawText(img *image.RGBA, text string, x, y int, clr color.RGBA) {

	dr := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	dr.DrawString(text)
}

// textWidth returns the rendered width of text in pixels
func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// formatStreamTime formats a stream offset as m:ss
func formatStreamTime(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// SavePNG writes an image to path in PNG format
func SavePNG(path string, img image.Image) error {

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding png: %w", err)
	}

	return f.Close()
}
