package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/swdee/go-sportscam/detection"
)

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return out.String(), err
}

// writeRecording writes a short JSONL recording of a single player walking
// right with the ball at their feet
func writeRecording(t *testing.T, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "detections.jsonl")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create recording: %v", err)
	}
	defer f.Close()

	for i := 0; i < frames; i++ {
		x := 200 + i*5
		dets := []detection.Detection{
			detection.New(0, "person", 0.9,
				detection.BoxRect{Left: x - 20, Top: 200, Right: x + 20, Bottom: 280}),
			detection.New(32, "sports ball", 0.8,
				detection.BoxRect{Left: x - 5, Top: 275, Right: x + 5, Bottom: 285}),
		}

		fd := detection.FrameDetections{
			Number:     i,
			Timestamp:  time.Duration(i) * time.Second / 30,
			Detections: dets,
		}

		if err := detection.WriteJSONL(f, fd); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	return path
}

func TestConfigSamplePrintsTOML(t *testing.T) {
	out, err := execute(t, "config", "sample")
	if err != nil {
		t.Fatalf("config sample: %v", err)
	}
	if !strings.Contains(out, "[logging]") || !strings.Contains(out, "[highlights]") {
		t.Fatalf("expected sample configuration, got %q", out)
	}
}

func TestConfigSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sportscam.toml")

	if _, err := execute(t, "config", "sample", "--path", path); err != nil {
		t.Fatalf("config sample --path: %v", err)
	}

	if _, err := execute(t, "config", "sample", "--path", path); err == nil {
		t.Fatal("expected error when config file exists")
	}

	if _, err := execute(t, "config", "sample", "--path", path, "--overwrite"); err != nil {
		t.Fatalf("config sample --overwrite: %v", err)
	}

	// the written sample must load cleanly
	out, err := execute(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output %q", out)
	}
}

func TestConfigValidateRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[tracking]\nunknown_key = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := execute(t, "--config", path, "config", "validate"); err == nil {
		t.Fatal("expected error for unknown configuration key")
	}
}

func TestDemoJSONReport(t *testing.T) {
	out, err := execute(t, "demo", "--frames", "60", "--json")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	var report jsonReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}

	if report.Stats.Frames != 60 {
		t.Fatalf("expected 60 frames, got %d", report.Stats.Frames)
	}
	if report.Stats.Players != 2 {
		t.Fatalf("expected 2 players on the last frame, got %d", report.Stats.Players)
	}
	if report.SessionID != "" {
		t.Fatalf("expected no session without a database, got %q", report.SessionID)
	}
}

func TestDemoRejectsNonPositiveFrames(t *testing.T) {
	if _, err := execute(t, "demo", "--frames", "0"); err == nil {
		t.Fatal("expected error for zero frames")
	}
}

func TestReplayRecordsSession(t *testing.T) {
	recording := writeRecording(t, 45)
	db := filepath.Join(t.TempDir(), "sessions.db")
	timeline := filepath.Join(t.TempDir(), "timeline.png")

	out, err := execute(t, "replay", recording, "--db", db, "--timeline", timeline, "--json")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	var report jsonReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}

	if report.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if report.Stats.Frames != 45 || report.Stats.BallDetections != 45 {
		t.Fatalf("unexpected stats %+v", report.Stats)
	}

	if info, err := os.Stat(timeline); err != nil || info.Size() == 0 {
		t.Fatalf("expected timeline image, got %v", err)
	}

	out, err = execute(t, "sessions", "list", "--db", db)
	if err != nil {
		t.Fatalf("sessions list: %v", err)
	}
	if !strings.Contains(out, report.SessionID) {
		t.Fatalf("expected session %s in list:\n%s", report.SessionID, out)
	}

	out, err = execute(t, "sessions", "show", report.SessionID, "--db", db)
	if err != nil {
		t.Fatalf("sessions show: %v", err)
	}
	if !strings.Contains(out, "45 frames") {
		t.Fatalf("unexpected show output:\n%s", out)
	}

	if _, err := execute(t, "sessions", "delete", report.SessionID, "--db", db); err != nil {
		t.Fatalf("sessions delete: %v", err)
	}
	if _, err := execute(t, "sessions", "show", report.SessionID, "--db", db); err == nil {
		t.Fatal("expected error showing a deleted session")
	}
}

func TestReplayTableOutput(t *testing.T) {
	recording := writeRecording(t, 10)

	out, err := execute(t, "replay", recording)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out, "Frames") || !strings.Contains(out, "10") {
		t.Fatalf("expected stats table, got:\n%s", out)
	}
}

func TestReplayMissingFile(t *testing.T) {
	if _, err := execute(t, "replay", filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatal("expected error for missing recording")
	}
}

func TestSessionsRequireDatabase(t *testing.T) {
	_, err := execute(t, "sessions", "list")
	if err == nil || !strings.Contains(err.Error(), "no session database") {
		t.Fatalf("expected missing database error, got %v", err)
	}
}
