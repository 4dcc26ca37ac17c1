package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db", "sportscam.db")
	s, err := Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

func TestSessionLifecycle(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "match.jsonl")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	require.NoError(t, s.FinishSession(ctx, sess.ID, Totals{Frames: 300, Detections: 2100, BallDetections: 280}))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, "match.jsonl", got.Source)
	assert.Equal(t, 300, got.Frames)
	assert.Equal(t, 2100, got.Detections)
	assert.Equal(t, 280, got.BallDetections)
	assert.False(t, got.FinishedAt.IsZero())
	assert.WithinDuration(t, sess.StartedAt, got.StartedAt, time.Millisecond)

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sess.ID, list[0].ID)
}

func TestUnknownSession(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.FinishSession(ctx, "missing", Totals{}), ErrNotFound)
	assert.ErrorIs(t, s.DeleteSession(ctx, "missing"), ErrNotFound)
}

func TestEventsRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "demo")
	require.NoError(t, err)

	evts := []events.Event{
		{Type: events.PossessionChange, Timestamp: 3 * time.Second, Confidence: 0.7,
			FromPlayer: 1, ToPlayer: 4, PlayerCount: 6, Description: "changed"},
		{Type: events.Goal, Timestamp: 1500 * time.Millisecond, Confidence: 0.8,
			Location: "left_goal"},
		{Type: events.FastMovement, Timestamp: 2 * time.Second, Confidence: 0.9,
			PlayerID: 2, Speed: 90.5},
	}

	require.NoError(t, s.SaveEvents(ctx, sess.ID, evts))
	require.NoError(t, s.SaveEvents(ctx, sess.ID, nil))

	got, err := s.Events(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, evts[1], got[0])
	assert.Equal(t, evts[2], got[1])
	assert.Equal(t, evts[0], got[2])
}

func TestSaveEventsRequiresSession(t *testing.T) {
	s, _ := openTestStore(t)

	err := s.SaveEvents(context.Background(), "missing", []events.Event{{Type: events.Goal}})
	assert.Error(t, err)
}

func TestHighlightsRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "demo")
	require.NoError(t, err)

	cands := []highlight.Candidate{
		{ID: "a", Type: highlight.TypeGoal, StartTime: 5 * time.Second, EndTime: 20 * time.Second,
			PeakTimestamp: 12500 * time.Millisecond, Duration: 15 * time.Second, Score: 0.9,
			Title: "Goal! - 0m", Description: "goal", Tags: []string{"goal", "exciting"},
			Events: []events.Event{{Type: events.Goal}}},
		{Type: highlight.TypeGeneral, Score: 0.6, Title: "Game Highlight - 1m", Tags: []string{"general"}},
	}

	require.NoError(t, s.SaveHighlights(ctx, sess.ID, cands))

	got, err := s.Highlights(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := cands[0]
	want.Events = nil
	assert.Equal(t, want, got[0])

	assert.NotEmpty(t, got[1].ID)
	assert.Equal(t, []string{"general"}, got[1].Tags)

	// saving again replaces the previous set
	require.NoError(t, s.SaveHighlights(ctx, sess.ID, cands[1:]))

	got, err = s.Highlights(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDeleteSessionCascades(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "demo")
	require.NoError(t, err)

	require.NoError(t, s.SaveEvents(ctx, sess.ID, []events.Event{{Type: events.Goal}}))
	require.NoError(t, s.SaveHighlights(ctx, sess.ID, []highlight.Candidate{{Type: highlight.TypeGoal, Tags: []string{}}}))

	require.NoError(t, s.DeleteSession(ctx, sess.ID))

	evts, err := s.Events(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, evts)

	hl, err := s.Highlights(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, hl)
}

func TestReopenChecksSchemaVersion(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "demo")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)

	_, err = s.GetSession(ctx, sess.ID)
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, "UPDATE schema_version SET version = ?", schemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.True(t, errors.Is(err, ErrSchemaMismatch), "expected schema mismatch, got %v", err)
}
