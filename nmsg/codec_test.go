package nmsg

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// frame builds a wire frame by hand, with the length prefix set
// independently of the actual body size.
func frame(length int, body []byte) []byte {
	wire := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(wire, uint32(length))
	copy(wire[4:], body)
	return wire
}

type brokenWriter struct{ err error }

func (w brokenWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWriteReadRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object", `{"type":"ping","id":"1"}`},
		{"nested", `{"data":{"items":[1,2,3],"ok":true}}`},
		{"array", `[1,2,3]`},
		{"string", `"hello"`},
		{"number", `42`},
		{"bool", `false`},
		{"null", `null`},
		{"unicode", `{"text":"котка и мишка"}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, json.RawMessage(tt.body)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if got, want := buf.Len(), 4+len(tt.body); got != want {
				t.Errorf("frame size = %d, want %d", got, want)
			}
			if got := binary.LittleEndian.Uint32(buf.Bytes()); got != uint32(len(tt.body)) {
				t.Errorf("length prefix = %d, want %d", got, len(tt.body))
			}
			msg, err := Read(&buf)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if string(msg) != tt.body {
				t.Errorf("Read returned %q, want %q", msg, tt.body)
			}
		})
	}
}

func TestWriteReadStruct(t *testing.T) {
	type payload struct {
		Type string   `json:"type"`
		Seq  int      `json:"seq"`
		Tags []string `json:"tags,omitempty"`
	}
	want := payload{Type: "copy", Seq: 7, Tags: []string{"a", "b"}}

	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	msg, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	var got payload
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decoding round-tripped message %q: %v", msg, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSequence(t *testing.T) {
	bodies := []string{`{"seq":1}`, `{"seq":2}`, `{"seq":3}`}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for _, b := range bodies {
		if err := Write(w, json.RawMessage(b)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	// Write flushes buffered writers itself, no explicit w.Flush here.
	for i, want := range bodies {
		msg, err := Read(&buf)
		if err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		if string(msg) != want {
			t.Errorf("message %d = %q, want %q", i, msg, want)
		}
	}
	if _, err := Read(&buf); !errors.Is(err, ErrNoMoreInput) {
		t.Errorf("Read past last frame returned %v, want ErrNoMoreInput", err)
	}
}

func TestWriteSizeLimit(t *testing.T) {
	// A JSON string of exactly MaxMessageSize bytes: two quotes plus the fill.
	atLimit := json.RawMessage(`"` + strings.Repeat("a", MaxMessageSize-2) + `"`)

	var buf bytes.Buffer
	if err := Write(&buf, atLimit); err != nil {
		t.Fatalf("Write at the limit failed: %v", err)
	}
	if got, want := buf.Len(), 4+MaxMessageSize; got != want {
		t.Errorf("frame size = %d, want %d", got, want)
	}

	over := json.RawMessage(`"` + strings.Repeat("a", MaxMessageSize-1) + `"`)
	buf.Reset()
	err := Write(&buf, over)
	if err == nil {
		t.Fatal("Write accepted a message over the limit")
	}
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("Write returned %v, want a TooLargeError", err)
	}
	if tooLarge.Size != MaxMessageSize+1 {
		t.Errorf("TooLargeError.Size = %d, want %d", tooLarge.Size, MaxMessageSize+1)
	}
	if buf.Len() != 0 {
		t.Errorf("rejected Write left %d bytes on the stream, want 0", buf.Len())
	}
}

func TestReadAboveWriteLimit(t *testing.T) {
	// Inbound frames are not size-capped, the browser already limits them.
	body := `"` + strings.Repeat("a", 2*MaxMessageSize) + `"`
	msg, err := Read(bytes.NewReader(frame(len(body), []byte(body))))
	if err != nil {
		t.Fatalf("Read failed on a %d byte message: %v", len(body), err)
	}
	if len(msg) != len(body) {
		t.Errorf("Read returned %d bytes, want %d", len(msg), len(body))
	}
}

func TestReadEndOfInput(t *testing.T) {
	if _, err := Read(bytes.NewReader(nil)); !errors.Is(err, ErrNoMoreInput) {
		t.Errorf("Read on an empty stream returned %v, want ErrNoMoreInput", err)
	}
}

func TestReadTruncatedStream(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"one header byte", []byte{0x05}},
		{"three header bytes", []byte{0x05, 0x00, 0x00}},
		{"missing body", frame(16, nil)},
		{"short body", frame(16, []byte(`{"a":1`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.wire))
			if err == nil {
				t.Fatal("Read succeeded on a truncated stream")
			}
			if errors.Is(err, ErrNoMoreInput) {
				t.Error("truncated stream reported as a clean end of input")
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("Read returned %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestReadMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "hello"},
		{"truncated object", `{"type":`},
		{"empty body", ""},
		{"trailing garbage", `{} extra`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(frame(len(tt.body), []byte(tt.body))))
			if err == nil {
				t.Fatal("Read accepted a malformed body")
			}
			var syntaxErr *json.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("Read returned %v, want a json.SyntaxError", err)
			}
		})
	}
}

func TestWriteUnencodableValue(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, make(chan int)); err == nil {
		t.Fatal("Write accepted a channel")
	}
	if buf.Len() != 0 {
		t.Errorf("failed Write left %d bytes on the stream, want 0", buf.Len())
	}
}

func TestWriteStreamError(t *testing.T) {
	werr := errors.New("pipe closed")
	if err := Write(brokenWriter{err: werr}, json.RawMessage(`{}`)); !errors.Is(err, werr) {
		t.Errorf("Write returned %v, want it to wrap %v", err, werr)
	}
}
