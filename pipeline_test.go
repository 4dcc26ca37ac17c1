package sportscam

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/config"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/events"
)

func newTestPipeline(t *testing.T, mutate func(*config.Config)) *Pipeline {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}

	p, err := NewPipeline(&cfg, nil)
	require.NoError(t, err)

	return p
}

func ballDet(x, y int) detection.Detection {
	return detection.New(32, "sports ball", 0.8,
		detection.BoxRect{Left: x - 6, Top: y - 6, Right: x + 6, Bottom: y + 6})
}

func personDet(x, y int) detection.Detection {
	return detection.New(0, "person", 0.9,
		detection.BoxRect{Left: x - 20, Top: y - 40, Right: x + 20, Bottom: y + 40})
}

func TestPipelineGoalScenario(t *testing.T) {

	p := newTestPipeline(t, nil)
	step := 33 * time.Millisecond

	var goals []events.Event

	for i := 0; i < 5; i++ {
		var dets []detection.Detection
		if i < 3 {
			dets = append(dets, ballDet(50, 300))
		}

		frame := p.Process(dets, time.Duration(i)*step)
		assert.Equal(t, i+1, frame.Number)

		for _, e := range frame.Events {
			if e.Type == events.Goal {
				goals = append(goals, e)
			}
		}
	}

	require.Len(t, goals, 1)
	assert.Equal(t, time.Duration(0), goals[0].Timestamp)

	stats := p.Stats()
	assert.Equal(t, 5, stats.TotalFrames)
	assert.Equal(t, 3, stats.TotalDetections)
	assert.Equal(t, 3, stats.BallDetections)
	assert.Equal(t, 1, stats.EventCounts[events.Goal])
}

func TestPipelineFrameContents(t *testing.T) {

	p := newTestPipeline(t, nil)

	frame := p.Process([]detection.Detection{
		personDet(300, 240), personDet(400, 240), ballDet(320, 250),
		detection.New(2, "car", 0.9, detection.BoxRect{Left: 10, Top: 10, Right: 60, Bottom: 40}),
		detection.New(200, "unknown", 0.5, detection.BoxRect{Left: 0, Top: 0, Right: 4, Bottom: 4}),
	}, 0)

	assert.Len(t, frame.Objects[category.People], 2)
	assert.Len(t, frame.Objects[category.Sports], 1)
	assert.Len(t, frame.Objects[category.Vehicles], 1)
	assert.Len(t, frame.Objects[category.Other], 1)
	assert.Equal(t, 5, frame.ObjectCount)
	assert.True(t, frame.BallDetected)

	// 2 players and a ball, no motion measured yet
	assert.InDelta(t, 0.4, frame.ActivityScore, 1e-9)
	assert.Equal(t, 2, p.Stats().PlayerCount)
}

func TestPipelineExternalEvents(t *testing.T) {

	p := newTestPipeline(t, nil)

	frame := p.ProcessFrame(detection.FrameDetections{
		Number:    0,
		Timestamp: time.Second,
		Events: []detection.ExternalEvent{
			{Type: "celebration", Confidence: 0.9, PlayerCount: 4},
		},
	})

	require.Len(t, frame.Events, 1)
	assert.Equal(t, events.Celebration, frame.Events[0].Type)
	assert.Equal(t, time.Second, frame.Events[0].Timestamp)

	series := p.Series()
	require.Len(t, series, 1)
	assert.Len(t, series[0].Events, 1)
}

func TestPipelineEventLogIsBounded(t *testing.T) {

	p := newTestPipeline(t, func(cfg *config.Config) {
		cfg.Pipeline.EventLogSize = 2
	})

	for i := 0; i < 5; i++ {
		p.ProcessFrame(detection.FrameDetections{
			Timestamp: time.Duration(i) * time.Second,
			Events:    []detection.ExternalEvent{{Type: "celebration", Confidence: float64(i) / 10}},
		})
	}

	stats := p.Stats()
	require.Len(t, stats.RecentEvents, 2)
	assert.Equal(t, 3*time.Second, stats.RecentEvents[0].Timestamp)
	assert.Equal(t, 4*time.Second, stats.RecentEvents[1].Timestamp)
	assert.Equal(t, 5, stats.EventCounts[events.Celebration])
}

func TestPipelineReset(t *testing.T) {

	p := newTestPipeline(t, nil)

	p.Process([]detection.Detection{personDet(100, 100)}, 0)
	p.Process([]detection.Detection{personDet(500, 100), personDet(100, 100)}, time.Second)

	p.Reset()

	assert.Empty(t, p.Series())
	assert.Equal(t, 0, p.Stats().TotalFrames)

	frame := p.Process([]detection.Detection{personDet(100, 100)}, 0)
	assert.Equal(t, 1, frame.Number)

	_, ok := frame.Objects[category.People][0]
	assert.True(t, ok, "expected ids to restart from zero")
}

func TestPipelineRunDemo(t *testing.T) {

	p := newTestPipeline(t, nil)
	src := detection.NewDemoSource(640, 480, 10, 300)

	frames := 0
	err := p.Run(context.Background(), src, func(f Frame) error {
		frames++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 300, frames)
	assert.Equal(t, 300, p.Stats().TotalFrames)
	assert.Equal(t, 300, p.Stats().BallDetections)

	hl := p.Highlights()
	assert.LessOrEqual(t, len(hl), 10)

	for i := 1; i < len(hl); i++ {
		assert.GreaterOrEqual(t, hl[i-1].Score, hl[i].Score)
	}
}

func TestPipelineRunStopsOnCallbackError(t *testing.T) {

	p := newTestPipeline(t, nil)
	src := detection.NewDemoSource(640, 480, 10, 0)
	stop := errors.New("stop")

	n := 0
	err := p.Run(context.Background(), src, func(Frame) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, p.Stats().TotalFrames)
}

func TestPipelineRunCancelled(t *testing.T) {

	p := newTestPipeline(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, detection.NewDemoSource(640, 480, 10, 0), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineLabels(t *testing.T) {

	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("person\nbicycle\n car \n"), 0o644))

	p := newTestPipeline(t, func(cfg *config.Config) {
		cfg.Pipeline.Labels = path
	})

	dets := []detection.Detection{
		detection.New(2, "", 0.9, detection.BoxRect{Left: 0, Top: 0, Right: 10, Bottom: 10}),
	}

	frame := p.Process(dets, 0)

	assert.Equal(t, "car", frame.Objects[category.Vehicles][0].ClassName)
	assert.Equal(t, "", dets[0].ClassName, "input detections are not modified")
}

func TestLoadLabelsMissingFile(t *testing.T) {
	_, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestActivityScore(t *testing.T) {

	tests := []struct {
		name    string
		players int
		ball    bool
		speeds  map[int]float64
		want    float64
	}{
		{"empty", 0, false, nil, 0},
		{"players only", 2, false, nil, 0.2},
		{"player term capped", 8, false, nil, 0.3},
		{"ball", 0, true, nil, 0.2},
		{"half moving fast", 4, true, map[int]float64{0: 80, 1: 20}, 0.3 + 0.2 + 0.125},
		{"all fast", 2, true, map[int]float64{0: 80, 1: 90}, 0.2 + 0.2 + 0.5},
		{"clamped", 12, true, map[int]float64{0: 80, 1: 90, 2: 60, 3: 70, 4: 80, 5: 90,
			6: 80, 7: 90, 8: 60, 9: 70, 10: 80, 11: 90}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, activityScore(tt.players, tt.ball, tt.speeds, 50), 1e-9)
		})
	}
}
