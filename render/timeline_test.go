package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
)

// flatSeries returns one frame per second over [0, n) seconds with a constant
// activity score
func flatSeries(n int, activity float64) []highlight.Frame {

	series := make([]highlight.Frame, n)

	for i := range series {
		series[i] = highlight.Frame{
			Timestamp:     time.Duration(i) * time.Second,
			ActivityScore: activity,
		}
	}

	return series
}

func TestTimelineScale(t *testing.T) {

	style := DefaultTimelineStyle()
	sc := newTimelineScale(flatSeries(11, 0), style)

	if got := sc.x(0); got != style.MarginLeft {
		t.Errorf("expected series start at column %d, got %d", style.MarginLeft, got)
	}

	if got := sc.x(10 * time.Second); got != style.Width-style.MarginRight-1 {
		t.Errorf("expected series end at last plot column, got %d", got)
	}

	if got := sc.x(5 * time.Second); got != 615 {
		t.Errorf("expected midpoint column 615, got %d", got)
	}

	if got := sc.y(0); got != style.Height-style.MarginBottom-1 {
		t.Errorf("expected zero activity on bottom plot row, got %d", got)
	}

	if got := sc.y(2); got != style.MarginTop {
		t.Errorf("expected activity clamped to top plot row, got %d", got)
	}

	// a single frame has no span, everything maps to the left edge
	single := newTimelineScale(flatSeries(1, 0), style)

	if got := single.x(3 * time.Second); got != style.MarginLeft {
		t.Errorf("expected zero span to map to left edge, got %d", got)
	}
}

func TestTimelineMarksEventsAndHighlights(t *testing.T) {

	style := DefaultTimelineStyle()
	series := flatSeries(11, 0)
	series[5].Events = []events.Event{{Type: events.Goal, Timestamp: 5 * time.Second}}

	cands := []highlight.Candidate{{StartTime: 2 * time.Second, EndTime: 4 * time.Second}}

	img := Timeline(series, cands, style)

	if img.Bounds().Dx() != style.Width || img.Bounds().Dy() != style.Height {
		t.Fatalf("unexpected image size %v", img.Bounds())
	}

	if got := img.RGBAAt(615, style.MarginTop+4); got != Red {
		t.Errorf("expected goal marker color %v, got %v", Red, got)
	}

	if got := img.RGBAAt(385, 70); got == style.Background {
		t.Errorf("expected highlight span to be shaded")
	}

	if got := img.RGBAAt(900, 70); got != style.Background {
		t.Errorf("expected background outside highlight, got %v", got)
	}
}

func TestTimelineDrawsActivityCurve(t *testing.T) {

	style := DefaultTimelineStyle()
	img := Timeline(flatSeries(11, 0.5), nil, style)

	// y(0.5) is row 119, the stroke covers the row above it
	got := img.RGBAAt(600, 118)

	if got.G < 200 || got.R > 50 {
		t.Errorf("expected curve color at activity 0.5, got %v", got)
	}
}

func TestTimelineEmptySeries(t *testing.T) {

	style := DefaultTimelineStyle()
	img := Timeline(nil, nil, style)

	if got := img.RGBAAt(0, 0); got != style.Background {
		t.Errorf("expected background, got %v", got)
	}
}

func TestFormatStreamTime(t *testing.T) {

	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{75 * time.Second, "1:15"},
		{599500 * time.Millisecond, "10:00"},
	}

	for _, tc := range tests {
		if got := formatStreamTime(tc.in); got != tc.want {
			t.Errorf("formatStreamTime(%s): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSavePNG(t *testing.T) {

	style := DefaultTimelineStyle()
	path := filepath.Join(t.TempDir(), "timeline.png")

	if err := SavePNG(path, Timeline(flatSeries(3, 0.2), nil, style)); err != nil {
		t.Fatalf("error saving png: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("error opening png: %v", err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("error decoding png: %v", err)
	}

	if cfg.Width != style.Width || cfg.Height != style.Height {
		t.Errorf("unexpected png size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestObjectAndEventColors(t *testing.T) {

	if ObjectColor("people", 3) != classColors[3] {
		t.Errorf("expected people colored per id")
	}

	if ObjectColor("sports", 3) != ObjectColor("sports", 7) {
		t.Errorf("expected sports objects to share the category color")
	}

	if EventColor(events.Goal) != Red {
		t.Errorf("expected goal events in red")
	}

	if EventColor("unknown") != White {
		t.Errorf("expected unknown event types in white")
	}
}
