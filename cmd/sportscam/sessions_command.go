package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect recorded sessions",
	}
	sessionsCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.requireStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			sessions, err := st.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			printSessions(cmd.OutOrStdout(), sessions)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the events and highlights of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.requireStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			sess, err := st.GetSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			evts, err := st.Events(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}

			cands, err := st.Highlights(cmd.Context(), sess.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (%s): %d frames, %d detections, ball seen on %d frames\n",
				sess.ID, sess.Source, sess.Frames, sess.Detections, sess.BallDetections)
			printEvents(out, evts)
			printHighlights(out, cands)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session with its events and highlights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.requireStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s deleted\n", args[0])
			return nil
		},
	}

	sessionsCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return sessionsCmd
}
