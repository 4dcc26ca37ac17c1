package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	sportscam "github.com/swdee/go-sportscam"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/events"
	"github.com/swdee/go-sportscam/highlight"
	"github.com/swdee/go-sportscam/render"
	"github.com/swdee/go-sportscam/store"
)

// runOptions are the flags shared by commands that run a session
type runOptions struct {
	dbPath   string
	timeline string
	labels   string
	jsonOut  bool
	quiet    bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.dbPath, "db", "", "Record the session in this SQLite database")
	cmd.Flags().StringVar(&o.timeline, "timeline", "", "Write an activity timeline PNG to this path")
	cmd.Flags().StringVar(&o.labels, "labels", "", "Class names file, one per line")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Output the session report as JSON")
	cmd.Flags().BoolVar(&o.quiet, "quiet", false, "Omit the event table")
}

// newPipeline builds a pipeline from the loaded configuration
func (c *commandContext) newPipeline(labels string) (*sportscam.Pipeline, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}

	p, err := sportscam.NewPipeline(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if labels != "" {
		if err := p.LoadLabels(labels); err != nil {
			return nil, nil, err
		}
	}

	return p, logger, nil
}

// runSession drains src through a new pipeline, optionally persists the
// session and prints the report
func (c *commandContext) runSession(cmd *cobra.Command, src detection.Source,
	sourceName string, opts runOptions) error {

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, logger, err := c.newPipeline(opts.labels)
	if err != nil {
		return err
	}

	st, err := c.openStore(opts.dbPath)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var sess *store.Session
	if st != nil {
		sess, err = st.CreateSession(ctx, sourceName)
		if err != nil {
			return err
		}
		logger.Info("session started", slog.String("session_id", sess.ID),
			slog.String("source", sourceName))
	}

	var evts []events.Event

	err = p.Run(ctx, src, func(f sportscam.Frame) error {
		evts = append(evts, f.Events...)
		return nil
	})
	if err != nil {
		return err
	}

	cands := p.Highlights()
	stats := p.Stats()

	logger.Info("session complete",
		slog.Int("frames", stats.TotalFrames),
		slog.Int("events", len(evts)),
		slog.Int("highlights", len(cands)))

	var sessionID string
	if st != nil {
		sessionID = sess.ID
		if err := persistSession(ctx, st, sessionID, stats, evts, cands); err != nil {
			return err
		}
	}

	if opts.timeline != "" {
		cfg, _ := c.ensureConfig()
		style := render.DefaultTimelineStyle()
		style.Threshold = cfg.Highlights.ActivityThreshold
		style.Title = fmt.Sprintf("activity: %s", sourceName)

		if err := render.SavePNG(opts.timeline, render.Timeline(p.Series(), cands, style)); err != nil {
			return fmt.Errorf("write timeline: %w", err)
		}
		logger.Info("timeline written", slog.String("path", opts.timeline))
	}

	if opts.jsonOut {
		return writeJSON(cmd, newJSONReport(sessionID, stats, evts, cands))
	}

	out := cmd.OutOrStdout()
	if sessionID != "" {
		fmt.Fprintf(out, "Session %s\n", sessionID)
	}
	printStats(out, stats)
	if !opts.quiet {
		printEvents(out, evts)
	}
	printHighlights(out, cands)

	return nil
}

func persistSession(ctx context.Context, st *store.Store, id string,
	stats sportscam.SessionStats, evts []events.Event, cands []highlight.Candidate) error {

	if err := st.SaveEvents(ctx, id, evts); err != nil {
		return err
	}
	if err := st.SaveHighlights(ctx, id, cands); err != nil {
		return err
	}
	return st.FinishSession(ctx, id, store.Totals{
		Frames:         stats.TotalFrames,
		Detections:     stats.TotalDetections,
		BallDetections: stats.BallDetections,
	})
}
