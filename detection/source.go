package detection

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// ExternalEvent is an event reported alongside a frame by an upstream
// producer, eg: a pose model reporting a celebration
type ExternalEvent struct {
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	PlayerCount int     `json:"player_count,omitempty"`
	Location    string  `json:"location,omitempty"`
}

// FrameDetections is the output of a detector for a single frame
type FrameDetections struct {
	// Number is the frame number within the stream
	Number int
	// Timestamp is the offset of the frame from the start of the stream
	Timestamp time.Duration
	// Detections made on the frame
	Detections []Detection
	// Events reported by the producer for this frame
	Events []ExternalEvent
}

// Source is the capability every detector implementation provides to the
// tracking pipeline.  Next returns io.EOF once the stream is exhausted
type Source interface {
	Next(ctx context.Context) (FrameDetections, error)
	Close() error
}

// jsonFrame is the on disk line format of a JSONL detection stream
type jsonFrame struct {
	Frame      int             `json:"frame"`
	Timestamp  float64         `json:"timestamp"`
	Detections []Detection     `json:"detections"`
	Events     []ExternalEvent `json:"events,omitempty"`
	// Outputs are raw model boxes recorded before rescaling, they are
	// converted with Scale and appended to Detections
	Outputs []ModelOutput `json:"outputs,omitempty"`
	Scale   Scale         `json:"scale"`
}

// jsonLine decodes a jsonFrame leaving each detection and model output raw,
// so a single malformed element does not cost the rest of the frame
type jsonLine struct {
	Frame      int               `json:"frame"`
	Timestamp  float64           `json:"timestamp"`
	Detections []json.RawMessage `json:"detections"`
	Events     []ExternalEvent   `json:"events,omitempty"`
	Outputs    []json.RawMessage `json:"outputs,omitempty"`
	Scale      Scale             `json:"scale"`
}

// DefaultMinConfidence is the confidence raw model outputs must exceed to be
// kept
const DefaultMinConfidence = 0.3

// JSONLSource replays detections recorded one frame per line
type JSONLSource struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
	ids     *IDGenerator
	log     *slog.Logger
	line    int
	// minConfidence filters raw model outputs
	minConfidence float32
}

// OpenJSONL opens a JSONL detection recording from disk
func OpenJSONL(path string, logger *slog.Logger) (*JSONLSource, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening detection file: %w", err)
	}

	return NewJSONLSource(f, logger), nil
}

// NewJSONLSource returns a source reading from the given reader
func NewJSONLSource(rc io.ReadCloser, logger *slog.Logger) *JSONLSource {

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 10<<20)

	return &JSONLSource{
		rc:            rc,
		scanner:       scanner,
		ids:           NewIDGenerator(),
		log:           logger,
		minConfidence: DefaultMinConfidence,
	}
}

// Next returns the next decodable frame.  Lines whose frame fields fail to
// decode are logged and skipped, a malformed detection only drops itself
func (s *JSONLSource) Next(ctx context.Context) (FrameDetections, error) {

	for s.scanner.Scan() {

		if err := ctx.Err(); err != nil {
			return FrameDetections{}, err
		}

		s.line++
		raw := s.scanner.Bytes()

		if len(raw) == 0 {
			continue
		}

		var jl jsonLine

		if err := json.Unmarshal(raw, &jl); err != nil {
			s.log.Warn("skipping undecodable detection line",
				slog.Int("line", s.line), slog.Any("error", err))
			continue
		}

		dets := decodeEach[Detection](s, jl.Detections, "detection")

		if len(jl.Outputs) > 0 {
			outputs := decodeEach[ModelOutput](s, jl.Outputs, "model output")
			dets = append(dets, FromModel(outputs, jl.Scale, s.minConfidence)...)
		}

		s.ids.Assign(dets)

		return FrameDetections{
			Number:     jl.Frame,
			Timestamp:  time.Duration(jl.Timestamp * float64(time.Second)),
			Detections: dets,
			Events:     jl.Events,
		}, nil
	}

	if err := s.scanner.Err(); err != nil {
		return FrameDetections{}, fmt.Errorf("error reading detection file: %w", err)
	}

	return FrameDetections{}, io.EOF
}

// decodeEach decodes every raw element of a line, logging and dropping the
// ones that fail
func decodeEach[T any](s *JSONLSource, raws []json.RawMessage, kind string) []T {

	out := make([]T, 0, len(raws))

	for i, r := range raws {
		var v T

		if err := json.Unmarshal(r, &v); err != nil {
			s.log.Warn("skipping undecodable "+kind,
				slog.Int("line", s.line), slog.Int("index", i), slog.Any("error", err))
			continue
		}

		out = append(out, v)
	}

	return out
}

// SetMinConfidence sets the confidence raw model outputs must exceed to be
// converted to detections.  Recorded detections are never filtered
func (s *JSONLSource) SetMinConfidence(v float32) {
	s.minConfidence = v
}

// Close releases the underlying reader
func (s *JSONLSource) Close() error {
	return s.rc.Close()
}

// WriteJSONL encodes a frame as a single JSONL line
func WriteJSONL(w io.Writer, fd FrameDetections) error {

	jf := jsonFrame{
		Frame:      fd.Number,
		Timestamp:  fd.Timestamp.Seconds(),
		Detections: fd.Detections,
		Events:     fd.Events,
	}

	if err := json.NewEncoder(w).Encode(jf); err != nil {
		return fmt.Errorf("error encoding frame %d: %w", fd.Number, err)
	}

	return nil
}
