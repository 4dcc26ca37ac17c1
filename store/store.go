package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Session is a single run of the pipeline over a detection source.
type Session struct {
	ID             string
	Source         string
	StartedAt      time.Time
	FinishedAt     time.Time
	Frames         int
	Detections     int
	BallDetections int
}

// Totals are the counters recorded when a session finishes.
type Totals struct {
	Frames         int
	Detections     int
	BallDetections int
}

// Open initializes or connects to the database at path and creates the
// schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// pragmas apply per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateSession records the start of a session reading from source.
func (s *Store) CreateSession(ctx context.Context, source string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, source, started_at) VALUES (?, ?, ?)`,
		sess.ID, sess.Source, sess.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return sess, nil
}

// FinishSession records the final counters of a session.
func (s *Store) FinishSession(ctx context.Context, id string, totals Totals) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET finished_at = ?, frames = ?, detections = ?, ball_detections = ?
         WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		totals.Frames, totals.Detections, totals.BallDetections, id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetSession returns a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, started_at, finished_at, frames, detections, ball_detections
         FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, started_at, finished_at, frames, detections, ball_detections
         FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess     Session
		started  string
		finished sql.NullString
	)

	if err := row.Scan(&sess.ID, &sess.Source, &started, &finished,
		&sess.Frames, &sess.Detections, &sess.BallDetections); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	var err error
	if sess.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finished.Valid {
		if sess.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}

	return &sess, nil
}

// SaveEvents appends events to a session.
func (s *Store) SaveEvents(ctx context.Context, sessionID string, evts []events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin events tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (
            session_id, type, timestamp_ns, confidence, location, player_id,
            from_player, to_player, speed, player_count, description
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range evts {
		if _, err := stmt.ExecContext(ctx, sessionID, string(e.Type), int64(e.Timestamp),
			e.Confidence, e.Location, e.PlayerID, e.FromPlayer, e.ToPlayer, e.Speed,
			e.PlayerCount, e.Description); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit events: %w", err)
	}
	return nil
}

// Events returns the events of a session in time order.
func (s *Store) Events(ctx context.Context, sessionID string) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, timestamp_ns, confidence, location, player_id, from_player,
                to_player, speed, player_count, description
         FROM events WHERE session_id = ? ORDER BY timestamp_ns, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			e   events.Event
			typ string
			ts  int64
		)
		if err := rows.Scan(&typ, &ts, &e.Confidence, &e.Location, &e.PlayerID,
			&e.FromPlayer, &e.ToPlayer, &e.Speed, &e.PlayerCount, &e.Description); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = events.Type(typ)
		e.Timestamp = time.Duration(ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// SaveHighlights replaces the highlights of a session, preserving their
// rank order.
func (s *Store) SaveHighlights(ctx context.Context, sessionID string, cands []highlight.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin highlights tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM highlights WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clear highlights: %w", err)
	}

	for rank, c := range cands {
		tags, err := json.Marshal(c.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}

		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO highlights (
                id, session_id, rank, type, start_ns, end_ns, peak_ns, duration_ns,
                score, title, description, tags, event_count
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, sessionID, rank, string(c.Type), int64(c.StartTime), int64(c.EndTime),
			int64(c.PeakTimestamp), int64(c.Duration), c.Score, c.Title, c.Description,
			string(tags), len(c.Events),
		); err != nil {
			return fmt.Errorf("insert highlight: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit highlights: %w", err)
	}
	return nil
}

// Highlights returns the highlights of a session in rank order.  Contributing
// events are not stored, use Events for the full event log.
func (s *Store) Highlights(ctx context.Context, sessionID string) ([]highlight.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, start_ns, end_ns, peak_ns, duration_ns, score, title,
                description, tags
         FROM highlights WHERE session_id = ? ORDER BY rank`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query highlights: %w", err)
	}
	defer rows.Close()

	var out []highlight.Candidate
	for rows.Next() {
		var (
			c                          highlight.Candidate
			typ, tags                  string
			start, end, peak, duration int64
		)
		if err := rows.Scan(&c.ID, &typ, &start, &end, &peak, &duration, &c.Score,
			&c.Title, &c.Description, &tags); err != nil {
			return nil, fmt.Errorf("scan highlight: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		c.Type = highlight.Type(typ)
		c.StartTime = time.Duration(start)
		c.EndTime = time.Duration(end)
		c.PeakTimestamp = time.Duration(peak)
		c.Duration = time.Duration(duration)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate highlights: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session with its events and highlights.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
