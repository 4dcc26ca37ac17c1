package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sportscam "github.com/swdee/go-sportscam"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
	"github.com/swdee/go-sportscam/store"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// streamTime formats a stream offset with millisecond precision
func streamTime(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

type jsonEvent struct {
	Type        string  `json:"type"`
	Timestamp   float64 `json:"timestamp"`
	Confidence  float64 `json:"confidence"`
	Location    string  `json:"location,omitempty"`
	PlayerID    int     `json:"player_id,omitempty"`
	Speed       float64 `json:"speed,omitempty"`
	Description string  `json:"description"`
}

type jsonHighlight struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	Peak        float64  `json:"peak"`
	Score       float64  `json:"score"`
	Tags        []string `json:"tags"`
	Events      int      `json:"events"`
}

type jsonStats struct {
	Frames         int            `json:"frames"`
	Detections     int            `json:"detections"`
	Players        int            `json:"players"`
	BallDetections int            `json:"ball_detections"`
	EventCounts    map[string]int `json:"event_counts"`
}

type jsonReport struct {
	SessionID  string          `json:"session_id,omitempty"`
	Stats      jsonStats       `json:"stats"`
	Events     []jsonEvent     `json:"events"`
	Highlights []jsonHighlight `json:"highlights"`
}

func newJSONReport(sessionID string, stats sportscam.SessionStats,
	evts []events.Event, cands []highlight.Candidate) jsonReport {

	report := jsonReport{
		SessionID: sessionID,
		Stats: jsonStats{
			Frames:         stats.TotalFrames,
			Detections:     stats.TotalDetections,
			Players:        stats.PlayerCount,
			BallDetections: stats.BallDetections,
			EventCounts:    make(map[string]int, len(stats.EventCounts)),
		},
		Events:     make([]jsonEvent, 0, len(evts)),
		Highlights: make([]jsonHighlight, 0, len(cands)),
	}

	for t, n := range stats.EventCounts {
		report.Stats.EventCounts[string(t)] = n
	}

	for _, e := range evts {
		report.Events = append(report.Events, jsonEvent{
			Type:        string(e.Type),
			Timestamp:   e.Timestamp.Seconds(),
			Confidence:  e.Confidence,
			Location:    e.Location,
			PlayerID:    e.PlayerID,
			Speed:       e.Speed,
			Description: e.Description,
		})
	}

	for _, c := range cands {
		report.Highlights = append(report.Highlights, jsonHighlight{
			ID:          c.ID,
			Type:        string(c.Type),
			Title:       c.Title,
			Description: c.Description,
			Start:       c.StartTime.Seconds(),
			End:         c.EndTime.Seconds(),
			Peak:        c.PeakTimestamp.Seconds(),
			Score:       c.Score,
			Tags:        c.Tags,
			Events:      len(c.Events),
		})
	}

	return report
}

func printStats(out io.Writer, stats sportscam.SessionStats) {
	rows := [][]string{
		{"Frames", strconv.Itoa(stats.TotalFrames)},
		{"Detections", strconv.Itoa(stats.TotalDetections)},
		{"Players (last frame)", strconv.Itoa(stats.PlayerCount)},
		{"Ball detections", strconv.Itoa(stats.BallDetections)},
	}

	types := make([]string, 0, len(stats.EventCounts))
	for t := range stats.EventCounts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	for _, t := range types {
		rows = append(rows, []string{"Events: " + t,
			strconv.Itoa(stats.EventCounts[events.Type(t)])})
	}

	fmt.Fprintln(out, renderTable([]string{"Session", "Value"}, rows,
		[]columnAlignment{alignLeft, alignRight}))
}

func printEvents(out io.Writer, evts []events.Event) {
	if len(evts) == 0 {
		fmt.Fprintln(out, "No events detected")
		return
	}

	rows := make([][]string, 0, len(evts))
	for _, e := range evts {
		rows = append(rows, []string{
			streamTime(e.Timestamp),
			string(e.Type),
			fmt.Sprintf("%.2f", e.Confidence),
			e.Description,
		})
	}

	fmt.Fprintln(out, renderTable([]string{"Time", "Event", "Confidence", "Description"},
		rows, []columnAlignment{alignRight, alignLeft, alignRight, alignLeft}))
}

func printHighlights(out io.Writer, cands []highlight.Candidate) {
	if len(cands) == 0 {
		fmt.Fprintln(out, "No highlights found")
		return
	}

	rows := make([][]string, 0, len(cands))
	for i, c := range cands {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Title,
			streamTime(c.StartTime),
			streamTime(c.EndTime),
			streamTime(c.PeakTimestamp),
			fmt.Sprintf("%.2f", c.Score),
			strings.Join(c.Tags, ", "),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"#", "Highlight", "Start", "End", "Peak", "Score", "Tags"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}))
}

func printSessions(out io.Writer, sessions []store.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded")
		return
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		finished := "running"
		if !s.FinishedAt.IsZero() {
			finished = s.FinishedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			s.ID,
			s.Source,
			s.StartedAt.Local().Format(time.DateTime),
			finished,
			strconv.Itoa(s.Frames),
			strconv.Itoa(s.Detections),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Source", "Started", "Finished", "Frames", "Detections"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
}
