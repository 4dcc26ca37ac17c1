package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swdee/go-sportscam/detection"
)

func newDemoCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions
	var frames int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline over generated mock detections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames <= 0 {
				return fmt.Errorf("--frames must be positive")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			src := detection.NewDemoSource(cfg.Video.Width, cfg.Video.Height,
				int(cfg.Video.FPS+0.5), frames)
			defer src.Close()

			return ctx.runSession(cmd, src, "demo", opts)
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 900, "Number of frames to generate")
	opts.bind(cmd)
	return cmd
}
