// Package stream decodes the backend's server-sent analysis event
// stream into structured events.
package stream

import (
	"bytes"
	"encoding/json"
	"strings"

	"crowdwatch/internal/dao"
)

// Event is one decoded stream payload. Fields are mutually
// non-exclusive; absent fields keep their zero value.
type Event struct {
	Error       string          `json:"error,omitempty"`
	Complete    bool            `json:"complete,omitempty"`
	TotalCount  *int            `json:"total_count,omitempty"`
	ZoneCounts  []dao.ZoneCount `json:"zone_counts,omitempty"`
	Progress    int             `json:"progress,omitempty"`
	Counts      map[string]int  `json:"counts,omitempty"`
	Frame       string          `json:"frame,omitempty"`
	FrameNumber int             `json:"frame_number,omitempty"`
	TotalFrames int             `json:"total_frames,omitempty"`
}

// Terminal reports whether the event ends the session.
func (e *Event) Terminal() bool {
	return e.Error != "" || e.Complete
}

var eventSeparator = []byte("\n\n")

// Parser reassembles events from arbitrarily chunked stream bytes.
// Events are framed by a blank line; a partial trailing fragment is
// buffered until the next Feed call. Payloads that fail to decode are
// dropped: the transport interleaves keep-alive noise and may truncate
// the last frame, and neither is fatal.
type Parser struct {
	buf []byte
}

func NewParser() *Parser {
	return &Parser{}
}

// Feed appends chunk to the internal buffer and returns every complete
// event it now holds, in stream order.
func (p *Parser) Feed(chunk []byte) []Event {
	p.buf = append(p.buf, chunk...)

	parts := bytes.Split(p.buf, eventSeparator)
	rest := parts[len(parts)-1]
	p.buf = append(p.buf[:0:0], rest...)

	var events []Event
	for _, part := range parts[:len(parts)-1] {
		if ev, ok := decode(part); ok {
			events = append(events, ev)
		}
	}
	return events
}

func decode(frame []byte) (Event, bool) {
	var ev Event

	s := strings.TrimSpace(string(frame))
	if s == "" || !strings.Contains(s, "data:") {
		return ev, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "data:"))
	if len(s) < 2 {
		return ev, false
	}
	if err := json.Unmarshal([]byte(s), &ev); err != nil {
		return ev, false
	}
	return ev, true
}
