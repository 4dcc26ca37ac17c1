package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/tracker"
)

func ball(id int, x, y float64) tracker.TrackedObject {
	return tracker.TrackedObject{
		ID:         id,
		Category:   category.Sports,
		ClassID:    32,
		ClassName:  "sports ball",
		Confidence: 0.8,
		Centroid:   detection.Point{X: x, Y: y},
	}
}

func player(id int, x, y float64) tracker.TrackedObject {
	return tracker.TrackedObject{
		ID:         id,
		Category:   category.People,
		ClassID:    0,
		ClassName:  "person",
		Confidence: 0.9,
		Centroid:   detection.Point{X: x, Y: y},
	}
}

func snapshot(objs ...tracker.TrackedObject) Snapshot {

	snap := make(Snapshot)

	for _, cat := range category.All {
		snap[cat] = make(map[int]tracker.TrackedObject)
	}

	for _, o := range objs {
		snap[o.Category][o.ID] = o
	}

	return snap
}

func newTestDetector(t *testing.T) *Detector {
	d, err := NewDetector(DefaultConfig(), nil)
	require.NoError(t, err)
	return d
}

func ofType(evts []Event, typ Type) []Event {
	var out []Event
	for _, e := range evts {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestGoalFiresOnceForConsecutiveFrames(t *testing.T) {

	d := newTestDetector(t)

	var all []Event
	step := 100 * time.Millisecond

	for i := 0; i < 3; i++ {
		all = append(all, d.Detect(snapshot(ball(0, 50, 300)), time.Duration(i)*step)...)
	}

	for i := 3; i < 5; i++ {
		all = append(all, d.Detect(snapshot(), time.Duration(i)*step)...)
	}

	require.Len(t, all, 1)
	assert.Equal(t, Goal, all[0].Type)
	assert.Equal(t, time.Duration(0), all[0].Timestamp)
	assert.Equal(t, "left_goal", all[0].Location)
	assert.InDelta(t, 0.8, all[0].Confidence, 1e-9)
}

func TestGoalCooldownIsStrict(t *testing.T) {

	d := newTestDetector(t)
	b := snapshot(ball(0, 600, 300))

	assert.Len(t, d.Detect(b, 0), 1)
	assert.Empty(t, d.Detect(b, 5*time.Second))

	evts := d.Detect(b, 5*time.Second+time.Millisecond)
	require.Len(t, evts, 1)
	assert.Equal(t, "right_goal", evts[0].Location)
}

func TestGoalAreasCooldownIndependently(t *testing.T) {

	d := newTestDetector(t)

	left := d.Detect(snapshot(ball(0, 0, 200)), 0)
	right := d.Detect(snapshot(ball(0, 640, 400)), time.Second)

	require.Len(t, left, 1)
	require.Len(t, right, 1)
	assert.Equal(t, "left_goal", left[0].Location)
	assert.Equal(t, "right_goal", right[0].Location)
}

func TestBallNearGoal(t *testing.T) {

	d := newTestDetector(t)

	evts := d.Detect(snapshot(ball(0, 150, 300)), 0)
	require.Len(t, evts, 1)
	assert.Equal(t, BallNearGoal, evts[0].Type)
	assert.Equal(t, "left_goal", evts[0].Location)
	assert.InDelta(t, 0.7, evts[0].Confidence, 1e-9)

	// within the near goal cooldown
	assert.Empty(t, d.Detect(snapshot(ball(0, 160, 300)), 2*time.Second))
	assert.Len(t, d.Detect(snapshot(ball(0, 160, 300)), 3*time.Second), 1)

	// midfield
	assert.Empty(t, d.Detect(snapshot(ball(0, 320, 300)), 10*time.Second))
}

func TestNearGoalZoneHasRoundedCorners(t *testing.T) {

	z := newZone(DefaultGoalAreas()[0], 100)

	// 90.5px from the goal corner
	assert.True(t, z.nearGoal(detection.Point{X: 190, Y: 190}))
	// 134px from the goal corner but inside the square grown rectangle
	assert.False(t, z.nearGoal(detection.Point{X: 195, Y: 105}))
	// inside the goal itself
	assert.False(t, z.nearGoal(detection.Point{X: 50, Y: 300}))

	disabled := newZone(DefaultGoalAreas()[0], 0)
	assert.False(t, disabled.nearGoal(detection.Point{X: 150, Y: 300}))
	assert.Empty(t, disabled.polygon())
}

func TestStaleBallIsIgnored(t *testing.T) {

	d := newTestDetector(t)

	b := ball(0, 50, 300)
	b.Disappeared = 1

	assert.Empty(t, d.Detect(snapshot(b), 0))
}

func TestHighestConfidenceBallWins(t *testing.T) {

	d := newTestDetector(t)

	weak := ball(0, 320, 300)
	weak.Confidence = 0.3
	strong := ball(1, 50, 300)
	strong.Confidence = 0.9

	evts := d.Detect(snapshot(weak, strong), 0)
	require.Len(t, evts, 1)
	assert.Equal(t, Goal, evts[0].Type)
}

func TestFastMovement(t *testing.T) {

	d := newTestDetector(t)

	// first observation only records position
	assert.Empty(t, d.Detect(snapshot(player(0, 0, 0), player(1, 300, 300)), 0))

	evts := d.Detect(snapshot(player(0, 100, 0), player(1, 310, 300)), time.Second)
	require.Len(t, evts, 1)
	assert.Equal(t, FastMovement, evts[0].Type)
	assert.Equal(t, 0, evts[0].PlayerID)
	assert.InDelta(t, 100, evts[0].Speed, 1e-9)
	assert.InDelta(t, 1.0, evts[0].Confidence, 1e-9)
	assert.Equal(t, 2, evts[0].PlayerCount)

	// still fast but within the per player cooldown
	assert.Empty(t, d.Detect(snapshot(player(0, 200, 0), player(1, 320, 300)), 2*time.Second))

	evts = d.Detect(snapshot(player(0, 410, 0), player(1, 330, 300)), 5*time.Second)
	require.Len(t, evts, 1)
	assert.InDelta(t, 70, evts[0].Speed, 1e-9)
	assert.InDelta(t, 0.7, evts[0].Confidence, 1e-9)
}

func TestFastMovementHistoryPruned(t *testing.T) {

	d := newTestDetector(t)

	d.Detect(snapshot(player(0, 0, 0)), 0)
	d.Detect(snapshot(), time.Second)

	assert.Empty(t, d.positions)

	// treated as a first observation after pruning
	assert.Empty(t, d.Detect(snapshot(player(0, 500, 0)), 2*time.Second))
}

func TestPossessionChange(t *testing.T) {

	d := newTestDetector(t)

	// first possessor recorded silently
	assert.Empty(t, d.Detect(snapshot(ball(0, 200, 100), player(0, 210, 100),
		player(1, 400, 100)), 0))

	id, ok := d.Possessor()
	require.True(t, ok)
	assert.Equal(t, 0, id)

	evts := ofType(d.Detect(snapshot(ball(0, 390, 100), player(0, 210, 100),
		player(1, 400, 100)), time.Second), PossessionChange)

	require.Len(t, evts, 1)
	assert.Equal(t, 0, evts[0].FromPlayer)
	assert.Equal(t, 1, evts[0].ToPlayer)

	// back to player 0 within 2s of the last change
	assert.Empty(t, ofType(d.Detect(snapshot(ball(0, 215, 100), player(0, 210, 100),
		player(1, 400, 100)), 3*time.Second), PossessionChange))

	id, _ = d.Possessor()
	assert.Equal(t, 1, id)

	evts = ofType(d.Detect(snapshot(ball(0, 215, 100), player(0, 210, 100),
		player(1, 400, 100)), 3*time.Second+time.Millisecond), PossessionChange)

	require.Len(t, evts, 1)
	assert.Equal(t, 1, evts[0].FromPlayer)
	assert.Equal(t, 0, evts[0].ToPlayer)
}

func TestPossessionCooldownIsStrict(t *testing.T) {

	d := newTestDetector(t)

	atPlayer0 := snapshot(ball(0, 205, 100), player(0, 200, 100), player(1, 400, 100))
	atPlayer1 := snapshot(ball(0, 395, 100), player(0, 200, 100), player(1, 400, 100))

	d.Detect(atPlayer0, 0)

	changed := 500 * time.Millisecond
	require.Len(t, ofType(d.Detect(atPlayer1, changed), PossessionChange), 1)

	// exactly the cooldown after the last change is still too soon
	assert.Empty(t, ofType(d.Detect(atPlayer0, changed+2*time.Second), PossessionChange))

	id, _ := d.Possessor()
	assert.Equal(t, 1, id)

	evts := ofType(d.Detect(atPlayer0, changed+2*time.Second+time.Nanosecond), PossessionChange)
	require.Len(t, evts, 1)
	assert.Equal(t, 1, evts[0].FromPlayer)
	assert.Equal(t, 0, evts[0].ToPlayer)
}

func TestPossessionRequiresRadius(t *testing.T) {

	d := newTestDetector(t)

	d.Detect(snapshot(ball(0, 200, 100), player(0, 300, 100)), 0)

	_, ok := d.Possessor()
	assert.False(t, ok)
}

func TestDetectorReset(t *testing.T) {

	d := newTestDetector(t)
	b := snapshot(ball(0, 50, 300), player(0, 60, 300))

	assert.NotEmpty(t, d.Detect(b, 0))
	assert.Empty(t, d.Detect(b, time.Second))

	d.Reset()

	_, ok := d.Possessor()
	assert.False(t, ok)

	evts := d.Detect(b, 2*time.Second)
	assert.Len(t, ofType(evts, Goal), 1)
}

func TestConfigValidate(t *testing.T) {

	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.GoalAreas = append(cfg.GoalAreas, GoalArea{Name: "left_goal", X1: 1, Y1: 1, X2: 2, Y2: 2})
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.GoalAreas[0].X2 = cfg.GoalAreas[0].X1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.PlayerCategory = "referees"
	assert.ErrorIs(t, cfg.Validate(), category.ErrUnknownCategory)

	cfg = DefaultConfig()
	cfg.GoalCooldown = -time.Second
	_, err := NewDetector(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEventHelpers(t *testing.T) {

	evts := []Event{{Type: Goal}, {Type: FastMovement}, {Type: Goal}}

	assert.Equal(t, []Type{Goal, FastMovement}, Types(evts))
	assert.True(t, Has(evts, FastMovement))
	assert.False(t, Has(evts, Celebration))
}

func TestSpeeds(t *testing.T) {

	d := newTestDetector(t)

	d.Detect(snapshot(player(0, 0, 0)), 0)
	assert.Empty(t, d.Speeds())

	d.Detect(snapshot(player(0, 30, 40), player(1, 300, 300)), 500*time.Millisecond)

	speeds := d.Speeds()
	require.Len(t, speeds, 1)
	assert.InDelta(t, 100, speeds[0], 1e-9)
}
