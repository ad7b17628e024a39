package ai

import (
	"errors"
	"strings"
	"testing"
)

func collectEvents(t *testing.T, r *EventReader) []string {
	t.Helper()
	var got []string
	for r.Next() {
		got = append(got, r.Data())
	}
	return got
}

func TestEventReader_SplitsOnBlankLines(t *testing.T) {
	r := NewEventReader(strings.NewReader("data: one\n\ndata: two\n\n\n\ndata: [DONE]\n\n"))

	got := collectEvents(t, r)
	if strings.Join(got, "|") != "one|two" {
		t.Fatalf("Expected one|two, got %q", got)
	}
	if !r.SawDone() {
		t.Fatal("Expected [DONE] to be recorded")
	}
	if r.Err() != nil {
		t.Fatalf("Unexpected error: %v", r.Err())
	}
}

func TestEventReader_CRLFAndComments(t *testing.T) {
	r := NewEventReader(strings.NewReader(": keep-alive\r\n\r\nevent: chunk\r\nid: 7\r\ndata: {\"a\":1}\r\n\r\n"))

	got := collectEvents(t, r)
	if len(got) != 1 || got[0] != `{"a":1}` {
		t.Fatalf("Expected single JSON payload, got %q", got)
	}
}

func TestEventReader_CRLFSplitAcrossReads(t *testing.T) {
	r := NewEventReader(&chunkReader{chunks: []string{
		"data: one\r",
		"\n\r",
		"\ndata: two\r\n\r\n",
	}})

	got := collectEvents(t, r)
	if strings.Join(got, "|") != "one|two" {
		t.Fatalf("Expected one|two, got %q", got)
	}
}

func TestEventReader_LargeEventAcrossManyReads(t *testing.T) {
	payload := strings.Repeat("a", 10*eventChunkSize)
	r := NewEventReader(strings.NewReader("data: " + payload + "\r\n\r\ndata: tail\r\n\r\n"))

	got := collectEvents(t, r)
	if len(got) != 2 || got[0] != payload || got[1] != "tail" {
		t.Fatalf("Expected large payload then tail, got %d events", len(got))
	}
}

func TestEventReader_BareJSONWithoutPrefix(t *testing.T) {
	r := NewEventReader(strings.NewReader(`{"choices":[]}` + "\n\n"))

	got := collectEvents(t, r)
	if len(got) != 1 || got[0] != `{"choices":[]}` {
		t.Fatalf("Expected bare payload, got %q", got)
	}
}

func TestEventReader_TrailingEventWithoutDelimiter(t *testing.T) {
	r := NewEventReader(&chunkReader{chunks: []string{"data: first\n\ndata: ", "last"}})

	got := collectEvents(t, r)
	if strings.Join(got, "|") != "first|last" {
		t.Fatalf("Expected first|last, got %q", got)
	}
	if r.SawDone() {
		t.Fatal("Did not expect [DONE]")
	}
}

func TestEventReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	r := NewEventReader(&chunkReader{chunks: []string{"data: ok\n\n"}, err: boom})

	got := collectEvents(t, r)
	if len(got) != 1 || got[0] != "ok" {
		t.Fatalf("Expected events before the error, got %q", got)
	}
	if !errors.Is(r.Err(), boom) {
		t.Fatalf("Expected boom, got %v", r.Err())
	}
}

func TestDeltaContent(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
		ok   bool
	}{
		{name: "content", data: `{"choices":[{"delta":{"content":"hi"}}]}`, want: "hi", ok: true},
		{name: "role only", data: `{"choices":[{"delta":{"role":"assistant"}}]}`},
		{name: "finish", data: `{"choices":[{"delta":{},"finish_reason":"stop"}]}`},
		{name: "empty content", data: `{"choices":[{"delta":{"content":""}}]}`},
		{name: "no choices", data: `{"x_groq":{"id":"req_1"}}`},
		{name: "not an object", data: `["choices"]`},
		{name: "truncated", data: `{"choices":[{"delta":{"content":"hi`},
		{name: "garbage", data: `hello`},
		{name: "second choice ignored", data: `{"choices":[{"delta":{}},{"delta":{"content":"no"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := deltaContent(tt.data)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("deltaContent(%q) = %q, %v; want %q, %v", tt.data, got, ok, tt.want, tt.ok)
			}
		})
	}
}
