// Command sportscam replays recorded detections through the tracking
// pipeline, prints the detected events and ranked highlights and can
// annotate the source video with the tracking overlay.
//
// Usage:
//
//	sportscam replay detections.jsonl --db sessions.db --timeline activity.png
//	sportscam demo --frames 900
//	sportscam annotate match.mp4 detections.jsonl annotated.avi
//	sportscam sessions list --db sessions.db
//	sportscam config sample
package main
