/*
go-sportscam tracks the objects a detector reports on each frame of a sports
video, detects game events from their motion and ranks the moments of the
game worth turning into highlight clips.

Detections are routed into semantic categories, each category is tracked by
its own centroid tracker and the tracked players and ball are passed through
a rule based event detector.  Every processed frame is recorded to a time
series which the highlight generator scores on demand.

The Pipeline type wires these together and is the usual entry point.  The
category, tracker, events and highlight packages may also be used on their
own.  Inference is not performed here, detections are supplied by a
detection.Source such as a JSONL recording.

See the cmd/sportscam tool for example usage.
*/
package sportscam
