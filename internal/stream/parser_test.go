package stream

import (
	"reflect"
	"testing"
)

const sampleStream = "data: {\"progress\": 10, \"counts\": {\"Zone A\": 3}, \"frame_number\": 1, \"total_frames\": 10}\n\n" +
	"data: {\"progress\": 50, \"counts\": {\"Zone A\": 7, \"Zone B\": 2}, \"frame_number\": 5, \"total_frames\": 10}\n\n" +
	"data: {\"complete\": true, \"total_count\": 9}\n\n"

func feedAll(p *Parser, chunks ...[]byte) []Event {
	var events []Event
	for _, chunk := range chunks {
		events = append(events, p.Feed(chunk)...)
	}
	return events
}

func TestParser_WholeStream(t *testing.T) {
	events := feedAll(NewParser(), []byte(sampleStream))
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Progress != 10 || events[0].Counts["Zone A"] != 3 {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Counts["Zone B"] != 2 || events[1].FrameNumber != 5 {
		t.Errorf("unexpected second event: %+v", events[1])
	}
	if !events[2].Complete || events[2].TotalCount == nil || *events[2].TotalCount != 9 {
		t.Errorf("unexpected terminal event: %+v", events[2])
	}
}

func TestParser_SplitAtEveryOffset(t *testing.T) {
	raw := []byte(sampleStream)
	want := feedAll(NewParser(), raw)

	for offset := 0; offset <= len(raw); offset++ {
		got := feedAll(NewParser(), raw[:offset], raw[offset:])
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at offset %d changed the event sequence: got %+v, want %+v", offset, got, want)
		}
	}
}

func TestParser_ByteAtATime(t *testing.T) {
	raw := []byte(sampleStream)
	want := feedAll(NewParser(), raw)

	p := NewParser()
	var got []Event
	for i := range raw {
		got = append(got, p.Feed(raw[i:i+1])...)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("byte-at-a-time feeding changed the event sequence: got %+v, want %+v", got, want)
	}
}

func TestParser_SkipsMalformedFrames(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   int
	}{
		{
			name:   "broken json",
			stream: "data: {not json}\n\ndata: {\"progress\": 5}\n\n",
			want:   1,
		},
		{
			name:   "keep-alive without data marker",
			stream: ": ping\n\ndata: {\"progress\": 5}\n\n",
			want:   1,
		},
		{
			name:   "empty payload",
			stream: "data: \n\ndata: {\"progress\": 5}\n\n",
			want:   1,
		},
		{
			name:   "blank frames only",
			stream: "\n\n\n\n",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := feedAll(NewParser(), []byte(tt.stream))
			if len(events) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(events))
			}
		})
	}
}

func TestParser_BuffersTrailingFragment(t *testing.T) {
	p := NewParser()

	events := p.Feed([]byte("data: {\"prog"))
	if len(events) != 0 {
		t.Fatalf("incomplete frame produced %d events", len(events))
	}

	events = p.Feed([]byte("ress\": 42}\n\n"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event after completing the frame, got %d", len(events))
	}
	if events[0].Progress != 42 {
		t.Errorf("expected progress 42, got %d", events[0].Progress)
	}
}

func TestEvent_Terminal(t *testing.T) {
	if (&Event{Progress: 10}).Terminal() {
		t.Error("incremental event reported terminal")
	}
	if !(&Event{Complete: true}).Terminal() {
		t.Error("complete event not reported terminal")
	}
	if !(&Event{Error: "boom"}).Terminal() {
		t.Error("error event not reported terminal")
	}
}
