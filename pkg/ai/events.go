package ai

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	eventChunkSize = 4096
	doneMarker     = "[DONE]"
)

var (
	eventDelimiter = []byte("\n\n")
	crlf           = []byte("\r\n")
	lf             = []byte("\n")
)

// EventReader splits a server-sent-event body into event payloads.
//
// Bytes are buffered until a blank line terminates the event, so an event
// split across reads is reassembled before it is parsed. Whatever is left
// when the body ends is treated as a final event.
type EventReader struct {
	r       io.Reader
	chunk   []byte
	pending []byte
	data    string
	sawDone bool
	eof     bool
	err     error
}

// NewEventReader reads events from r.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{
		r:     r,
		chunk: make([]byte, eventChunkSize),
	}
}

// Next advances to the next event carrying data. Blank events and the
// [DONE] sentinel are skipped. It returns false at end of stream or on a
// read error.
func (e *EventReader) Next() bool {
	for {
		if idx := bytes.Index(e.pending, eventDelimiter); idx >= 0 {
			raw := e.pending[:idx]
			e.pending = e.pending[idx+len(eventDelimiter):]
			if e.accept(raw) {
				return true
			}
			continue
		}

		if e.eof || e.err != nil {
			if len(e.pending) == 0 {
				return false
			}
			raw := e.pending
			e.pending = nil
			if e.accept(raw) {
				return true
			}
			continue
		}

		e.fill()
	}
}

// Data returns the payload of the current event with any "data: " prefix removed.
func (e *EventReader) Data() string {
	return e.data
}

// SawDone reports whether the [DONE] sentinel has been seen.
func (e *EventReader) SawDone() bool {
	return e.sawDone
}

// Err returns the first non-EOF read error.
func (e *EventReader) Err() error {
	return e.err
}

func (e *EventReader) fill() {
	n, err := e.r.Read(e.chunk)
	if n > 0 {
		e.appendNormalized(e.chunk[:n])
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			e.eof = true
			return
		}
		e.err = err
	}
}

// appendNormalized adds b to pending with CRLF folded to LF. Only the new
// bytes are rewritten, plus a CR left at the end of the previous read.
func (e *EventReader) appendNormalized(b []byte) {
	from := len(e.pending)
	if from > 0 && e.pending[from-1] == '\r' {
		from--
	}
	tail := append(e.pending[from:len(e.pending):len(e.pending)], b...)
	e.pending = append(e.pending[:from], bytes.ReplaceAll(tail, crlf, lf)...)
}

func (e *EventReader) accept(raw []byte) bool {
	data, ok := parseEvent(string(raw))
	if !ok {
		return false
	}
	if data == doneMarker {
		e.sawDone = true
		return false
	}
	e.data = data
	return true
}

// parseEvent extracts the data of one event. Lines without a field name are
// taken as data so bare JSON bodies still decode.
func parseEvent(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	if strings.Contains(raw, "data: "+doneMarker) {
		return doneMarker, true
	}

	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case line == "", strings.HasPrefix(line, ":"):
			continue
		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			parts = append(parts, strings.TrimPrefix(value, " "))
		case strings.HasPrefix(line, "event:"), strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
			continue
		default:
			parts = append(parts, line)
		}
	}

	data := strings.Join(parts, "\n")
	if strings.TrimSpace(data) == "" {
		return "", false
	}
	return data, true
}

// deltaContent returns choices[0].delta.content of a chunk payload. Payloads
// that are not JSON objects, or that carry no content, report false.
func deltaContent(data string) (string, bool) {
	if !gjson.Valid(data) {
		return "", false
	}
	parsed := gjson.Parse(data)
	if !parsed.IsObject() {
		return "", false
	}
	content := parsed.Get("choices.0.delta.content")
	if content.Type != gjson.String || content.Str == "" {
		return "", false
	}
	return content.Str, true
}
