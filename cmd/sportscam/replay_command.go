package main

import (
	"github.com/spf13/cobra"

	"github.com/swdee/go-sportscam/detection"
)

func newReplayCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions
	var minConfidence float32

	cmd := &cobra.Command{
		Use:   "replay <detections.jsonl>",
		Short: "Run recorded detections through the tracking pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			src, err := detection.OpenJSONL(args[0], logger)
			if err != nil {
				return err
			}
			defer src.Close()
			src.SetMinConfidence(minConfidence)

			return ctx.runSession(cmd, src, args[0], opts)
		},
	}

	cmd.Flags().Float32Var(&minConfidence, "min-confidence", detection.DefaultMinConfidence,
		"Confidence raw model outputs must exceed")
	opts.bind(cmd)
	return cmd
}
