package events

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/swdee/go-sportscam/category"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/tracker"
)

// Snapshot is the per category tracked object state of a frame as returned by
// tracker.MultiTracker
type Snapshot = map[category.Category]map[int]tracker.TrackedObject

// position is the last observed location of a player
type position struct {
	point detection.Point
	at    time.Duration
}

// Detector is a stateful rule engine that emits game events from the tracked
// objects of each frame.  One Detector is used per tracking session and it
// is not safe for concurrent use
type Detector struct {
	cfg   Config
	zones []zone
	// cooldowns hold the time each rule last fired, keyed by goal area name
	// or player id
	goalFired map[string]time.Duration
	nearFired map[string]time.Duration
	fastFired map[int]time.Duration
	// positions is the last position of each player seen
	positions map[int]position
	// speeds of players measured on the latest frame
	speeds map[int]float64
	// possession state
	possessor    int
	hasPossessor bool
	lastChange   time.Duration
	changed      bool
	log          *slog.Logger
}

// NewDetector returns a Detector using the given rule configuration
func NewDetector(cfg Config, logger *slog.Logger) (*Detector, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Detector{
		cfg: cfg,
		log: logger,
	}

	for _, area := range cfg.GoalAreas {
		d.zones = append(d.zones, newZone(area, cfg.NearGoalMargin))
	}

	d.Reset()

	return d, nil
}

// Reset clears all cooldowns, position history and possession state
func (d *Detector) Reset() {
	d.goalFired = make(map[string]time.Duration)
	d.nearFired = make(map[string]time.Duration)
	d.fastFired = make(map[int]time.Duration)
	d.positions = make(map[int]position)
	d.speeds = make(map[int]float64)
	d.possessor = 0
	d.hasPossessor = false
	d.lastChange = 0
	d.changed = false
}

// Config returns the rule configuration in use
func (d *Detector) Config() Config {
	return d.cfg
}

// NearGoalPolygons returns the near goal outline of each goal area keyed by
// area name
func (d *Detector) NearGoalPolygons() map[string][]detection.Point {

	out := make(map[string][]detection.Point, len(d.zones))

	for _, z := range d.zones {
		out[z.area.Name] = z.polygon()
	}

	return out
}

// Possessor returns the id of the player currently in possession of the
// ball and false if no possession has been recorded
func (d *Detector) Possessor() (int, bool) {
	return d.possessor, d.hasPossessor
}

// Speeds returns the speed in pixels per second of each player measured on
// the latest frame.  Players seen for the first time have no entry
func (d *Detector) Speeds() map[int]float64 {

	out := make(map[int]float64, len(d.speeds))

	for id, v := range d.speeds {
		out[id] = v
	}

	return out
}

// Detect runs every rule against the objects observed on the frame at time
// now and returns the events that fired.  The snapshot is not modified
func (d *Detector) Detect(snapshot Snapshot, now time.Duration) []Event {

	ball, hasBall := d.findBall(snapshot)
	players := d.findPlayers(snapshot)

	var evts []Event

	if hasBall {
		if e, ok := d.detectGoal(ball, now, len(players)); ok {
			evts = append(evts, e)
		}
	}

	evts = append(evts, d.detectFastMovement(snapshot, players, now)...)

	if hasBall && len(players) > 0 {
		if e, ok := d.detectPossessionChange(ball, players, now); ok {
			evts = append(evts, e)
		}
	}

	for _, e := range evts {
		d.log.Debug("event detected",
			slog.String("type", string(e.Type)),
			slog.Duration("timestamp", e.Timestamp),
			slog.Float64("confidence", e.Confidence),
		)
	}

	return evts
}

// findBall returns the highest confidence ball seen on this frame
func (d *Detector) findBall(snapshot Snapshot) (tracker.TrackedObject, bool) {

	var ball tracker.TrackedObject
	found := false

	for _, cat := range category.All {
		objs := snapshot[cat]

		for _, id := range tracker.SortedIDs(objs) {
			obj := objs[id]

			if !obj.Active() || obj.ClassID != d.cfg.BallClassID {
				continue
			}

			if !found || obj.Confidence > ball.Confidence {
				ball = obj
				found = true
			}
		}
	}

	return ball, found
}

// findPlayers returns the players seen on this frame in id order
func (d *Detector) findPlayers(snapshot Snapshot) []tracker.TrackedObject {

	objs := snapshot[d.cfg.PlayerCategory]
	players := make([]tracker.TrackedObject, 0, len(objs))

	for _, id := range tracker.SortedIDs(objs) {
		if objs[id].Active() {
			players = append(players, objs[id])
		}
	}

	return players
}

// cooledDown reports if enough time has passed since a rule last fired
func cooledDown(last time.Duration, fired bool, now, cooldown time.Duration) bool {
	return !fired || now-last > cooldown
}

// detectGoal checks the ball against each goal area and its surrounding near
// goal zone.  At most one event is produced per frame
func (d *Detector) detectGoal(ball tracker.TrackedObject, now time.Duration,
	playerCount int) (Event, bool) {

	for _, z := range d.zones {
		if !z.inGoal(ball.Centroid) {
			continue
		}

		last, fired := d.goalFired[z.area.Name]

		if !cooledDown(last, fired, now, d.cfg.GoalCooldown) {
			continue
		}

		d.goalFired[z.area.Name] = now

		return Event{
			Type:        Goal,
			Timestamp:   now,
			Confidence:  0.8,
			Location:    z.area.Name,
			PlayerCount: playerCount,
			Description: fmt.Sprintf("Potential goal detected at %s", z.area.Name),
		}, true
	}

	for _, z := range d.zones {
		if !z.nearGoal(ball.Centroid) {
			continue
		}

		last, fired := d.nearFired[z.area.Name]

		if !cooledDown(last, fired, now, d.cfg.NearGoalCooldown) {
			continue
		}

		d.nearFired[z.area.Name] = now

		return Event{
			Type:        BallNearGoal,
			Timestamp:   now,
			Confidence:  0.7,
			Location:    z.area.Name,
			PlayerCount: playerCount,
			Description: fmt.Sprintf("Ball near %s", z.area.Name),
		}, true
	}

	return Event{}, false
}

// detectFastMovement computes the speed of every player since it was last
// seen.  Position history is updated for every player whether or not an
// event fires, and history of players no longer tracked is discarded
func (d *Detector) detectFastMovement(snapshot Snapshot,
	players []tracker.TrackedObject, now time.Duration) []Event {

	var evts []Event

	clear(d.speeds)

	for _, p := range players {
		prev, ok := d.positions[p.ID]
		d.positions[p.ID] = position{point: p.Centroid, at: now}

		if !ok {
			continue
		}

		elapsed := now - prev.at
		if elapsed <= 0 {
			continue
		}

		speed := p.Centroid.Distance(prev.point) / elapsed.Seconds()
		d.speeds[p.ID] = speed

		if speed <= d.cfg.FastMovementSpeed {
			continue
		}

		last, fired := d.fastFired[p.ID]

		if !cooledDown(last, fired, now, d.cfg.FastMovementCooldown) {
			continue
		}

		d.fastFired[p.ID] = now

		evts = append(evts, Event{
			Type:        FastMovement,
			Timestamp:   now,
			Confidence:  math.Min(speed/100, 1),
			PlayerID:    p.ID,
			Speed:       speed,
			PlayerCount: len(players),
			Description: fmt.Sprintf("Fast movement detected for player %d", p.ID),
		})
	}

	tracked := snapshot[d.cfg.PlayerCategory]

	for id := range d.positions {
		if _, ok := tracked[id]; !ok {
			delete(d.positions, id)
			delete(d.fastFired, id)
		}
	}

	return evts
}

// detectPossessionChange finds the player nearest the ball and reports a
// change of possession once per cooldown period.  The first possessor is
// recorded without an event
func (d *Detector) detectPossessionChange(ball tracker.TrackedObject,
	players []tracker.TrackedObject, now time.Duration) (Event, bool) {

	nearest := -1
	minDist := math.Inf(1)

	for i, p := range players {
		dist := p.Centroid.Distance(ball.Centroid)

		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	if nearest < 0 || minDist >= d.cfg.PossessionRadius {
		return Event{}, false
	}

	id := players[nearest].ID

	if !d.hasPossessor {
		d.possessor = id
		d.hasPossessor = true
		return Event{}, false
	}

	if id == d.possessor ||
		!cooledDown(d.lastChange, d.changed, now, d.cfg.PossessionCooldown) {
		return Event{}, false
	}

	from := d.possessor

	d.possessor = id
	d.lastChange = now
	d.changed = true

	return Event{
		Type:        PossessionChange,
		Timestamp:   now,
		Confidence:  0.7,
		FromPlayer:  from,
		ToPlayer:    id,
		PlayerCount: len(players),
		Description: fmt.Sprintf("Ball possession changed from player %d to %d", from, id),
	}, true
}
