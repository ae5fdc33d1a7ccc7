// ABOUTME: Decoder for line-delimited SSE frames from a chat response body
// ABOUTME: Malformed data payloads are dropped so one bad frame never kills the turn

package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// maxLineSize bounds a single SSE line; large model outputs arrive as
// many small token frames, so 1 MiB is generous.
const maxLineSize = 1 << 20

// Decoder reads `event:`/`data:` line pairs from a byte stream and yields
// typed events. A blank line terminates a frame; multiple data lines are
// joined with newlines per the SSE wire format.
type Decoder struct {
	scanner *bufio.Scanner
	logger  *slog.Logger
}

// NewDecoder wraps a response body. Pass nil logger for default.
func NewDecoder(r io.Reader, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{
		scanner: scanner,
		logger:  logger.With("component", "stream"),
	}
}

// Next returns the next decoded event, or io.EOF when the stream ends.
// Frames whose data is not valid JSON are dropped and scanning continues:
// missing one update beats aborting the whole turn.
func (d *Decoder) Next(ctx context.Context) (Event, error) {
	var eventType string
	var dataLines []string

	for d.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		line := d.scanner.Text()

		// Blank line ends the frame.
		if line == "" {
			if ev, ok := d.buildEvent(eventType, dataLines); ok {
				return ev, nil
			}
			eventType = ""
			dataLines = nil
			continue
		}

		switch {
		case strings.HasPrefix(line, ":"):
			// SSE comment / keep-alive.
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		default:
			// Unknown field (id:, retry:, ...) — ignore.
		}
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, err
	}

	// Stream ended mid-frame; flush whatever is complete.
	if ev, ok := d.buildEvent(eventType, dataLines); ok {
		return ev, nil
	}
	return Event{}, io.EOF
}

// buildEvent assembles a typed event from accumulated frame fields.
// Returns false when the frame is empty or its data is not JSON.
func (d *Decoder) buildEvent(eventType string, dataLines []string) (Event, bool) {
	if eventType == "" || len(dataLines) == 0 {
		return Event{}, false
	}

	data := strings.Join(dataLines, "\n")
	if !json.Valid([]byte(data)) {
		d.logger.Debug("dropping malformed event data", "event", eventType)
		return Event{}, false
	}

	return Event{Type: EventType(eventType), Data: json.RawMessage(data)}, true
}
