package highlight

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swdee/go-sportscam/events"
)

// Type is the classification of a highlight
type Type string

const (
	TypeGoal         Type = "goal"
	TypeGoalAttempt  Type = "goal_attempt"
	TypeCelebration  Type = "celebration"
	TypeFastAction   Type = "fast_action"
	TypeHighActivity Type = "high_activity"
	TypeGeneral      Type = "general"
)

var titles = map[Type]string{
	TypeGoal:         "Goal!",
	TypeGoalAttempt:  "Goal Attempt",
	TypeCelebration:  "Team Celebration",
	TypeFastAction:   "Fast-Paced Action",
	TypeHighActivity: "Intense Moment",
	TypeGeneral:      "Game Highlight",
}

var descriptions = map[Type]string{
	TypeGoal:         "An exciting goal-scoring moment with high activity around the goal area.",
	TypeGoalAttempt:  "A goal-scoring opportunity with the ball near the goal.",
	TypeCelebration:  "Players celebrating an important moment in the game.",
	TypeFastAction:   "Fast-paced action with multiple players in motion.",
	TypeHighActivity: "A moment of high activity and intensity.",
	TypeGeneral:      "An interesting moment from the game.",
}

// excitingScore is the score above which a highlight is tagged exciting
const excitingScore = 0.8

// Candidate is a ranked time range suggested for clip extraction
type Candidate struct {
	ID            string
	StartTime     time.Duration
	EndTime       time.Duration
	PeakTimestamp time.Duration
	Score         float64
	Type          Type
	// Events are the events that contributed to the highlight
	Events   []events.Event
	Duration time.Duration
	Title    string
	// Description is a sentence describing the highlight
	Description string
	Tags        []string
}

// overlaps reports if the time ranges of two candidates intersect
func (c Candidate) overlaps(o Candidate) bool {
	return c.StartTime < o.EndTime && o.StartTime < c.EndTime
}

// enrich assigns an id and the presentation fields
func (c *Candidate) enrich() {

	c.ID = uuid.NewString()

	title, ok := titles[c.Type]
	if !ok {
		title = "Highlight"
	}

	c.Title = fmt.Sprintf("%s - %dm", title, int(c.PeakTimestamp.Minutes()))

	c.Description, ok = descriptions[c.Type]
	if !ok {
		c.Description = "A highlight from the game."
	}

	c.Tags = []string{string(c.Type)}

	for _, t := range events.Types(c.Events) {
		if string(t) == string(c.Type) {
			continue
		}
		c.Tags = append(c.Tags, string(t))
	}

	if c.Score > excitingScore {
		c.Tags = append(c.Tags, "exciting")
	}
}
