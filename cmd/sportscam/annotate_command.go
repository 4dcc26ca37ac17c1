package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	sportscam "github.com/swdee/go-sportscam"
	"github.com/swdee/go-sportscam/detection"
	"github.com/swdee/go-sportscam/render"
)

func newAnnotateCommand(ctx *commandContext) *cobra.Command {
	var codec string
	var labels string

	cmd := &cobra.Command{
		Use:   "annotate <video> <detections.jsonl> <output.avi>",
		Short: "Draw tracked objects, goal areas and events onto a video",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, logger, err := ctx.newPipeline(labels)
			if err != nil {
				return err
			}

			src, err := detection.OpenJSONL(args[1], logger)
			if err != nil {
				return err
			}
			defer src.Close()

			written, err := annotateVideo(cmd, p, src, args[0], args[2], codec, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d annotated frames to %s\n", written, args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&codec, "codec", "XVID", "FourCC codec of the output video")
	cmd.Flags().StringVar(&labels, "labels", "", "Class names file, one per line")
	return cmd
}

// annotateVideo reads the source video frame by frame, processes the
// detections recorded for each frame number and writes the overlaid frame.
// Video frames without a recording reuse the last tracking result
func annotateVideo(cmd *cobra.Command, p *sportscam.Pipeline, src detection.Source,
	videoPath, outPath, codec string, logger *slog.Logger) (int, error) {

	ctx := cmd.Context()

	video, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return 0, fmt.Errorf("open video %s: %w", videoPath, err)
	}
	defer video.Close()

	fps := video.Get(gocv.VideoCaptureFPS)
	width := int(video.Get(gocv.VideoCaptureFrameWidth))
	height := int(video.Get(gocv.VideoCaptureFrameHeight))

	writer, err := gocv.VideoWriterFile(outPath, codec, fps, width, height, true)
	if err != nil {
		return 0, fmt.Errorf("create video %s: %w", outPath, err)
	}
	defer writer.Close()

	overlay := render.NewOverlay(p.Detector())

	img := gocv.NewMat()
	defer img.Close()

	next, err := src.Next(ctx)
	exhausted := errors.Is(err, io.EOF)
	if err != nil && !exhausted {
		return 0, err
	}

	var last *sportscam.Frame
	written := 0

	for frameNum := 0; ; frameNum++ {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		if ok := video.Read(&img); !ok {
			break
		}

		if img.Empty() {
			continue
		}

		// skip recordings for frames the video does not have
		for !exhausted && next.Number < frameNum {
			next, err = src.Next(ctx)
			exhausted = errors.Is(err, io.EOF)
			if err != nil && !exhausted {
				return written, err
			}
		}

		if !exhausted && next.Number == frameNum {
			res := p.ProcessFrame(next)
			last = &res

			next, err = src.Next(ctx)
			exhausted = errors.Is(err, io.EOF)
			if err != nil && !exhausted {
				return written, err
			}
		}

		if last != nil {
			overlay.Draw(&img, last.Objects, last.Events, last.Tracking)
		}

		if err := writer.Write(img); err != nil {
			return written, fmt.Errorf("write frame %d: %w", frameNum, err)
		}
		written++
	}

	logger.Info("annotation complete",
		slog.Int("frames", written),
		slog.Int("tracked_frames", p.Stats().TotalFrames))

	return written, nil
}
