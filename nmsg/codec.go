// Package nmsg implements the native messaging protocol browsers use to
// talk to host processes over stdin/stdout: every message is a 4-byte
// little-endian length followed by that many bytes of UTF-8 encoded JSON.
//
// Read and Write handle single frames on arbitrary streams. Host drives
// the full serve loop of a native messaging host, including panic
// reporting back to the browser extension.
package nmsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxMessageSize is the largest message Write will put on the wire
// (1 MiB). Browsers refuse anything bigger coming from a host, so
// oversized messages fail locally with TooLargeError instead of killing
// the session remotely. Read does not enforce it: inbound frames are
// produced by the browser, which applies its own, much higher limit.
const MaxMessageSize = 1024 * 1024

// Read consumes one frame from r and returns its JSON body. The body is
// checked to be well-formed JSON but not interpreted further; callers
// unmarshal it into whatever shape they expect.
//
// A stream that ends before the first header byte yields ErrNoMoreInput.
// A stream that ends anywhere after that yields an I/O error, since the
// header promised bytes that never arrived.
func Read(r io.Reader) (json.RawMessage, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		// A partial header comes back as io.ErrUnexpectedEOF and is not
		// matched here: only a stream ending before the first byte is a
		// clean end of input.
		if errors.Is(err, io.EOF) {
			return nil, ErrNoMoreInput
		}
		return nil, fmt.Errorf("nmsg: reading length: %w", err)
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		// The header promised n bytes, an EOF here is never a clean end
		// of input. ReadFull reports a zero byte read as plain io.EOF.
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("nmsg: reading %d byte body: %w", n, err)
	}
	var msg json.RawMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("nmsg: decoding body: %w", err)
	}
	return msg, nil
}

// Write sends v to w as one frame: v is marshaled to JSON and prefixed
// with its 4-byte little-endian byte length. Messages encoding to more
// than MaxMessageSize bytes are rejected with TooLargeError before
// anything reaches the stream. When w buffers (exposes Flush() error,
// as bufio.Writer does) the frame is flushed before Write returns, so
// the peer never waits on a frame stuck in a buffer.
func Write(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("nmsg: encoding message: %w", err)
	}
	if len(body) > MaxMessageSize {
		return &TooLargeError{Size: len(body)}
	}
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("nmsg: writing length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("nmsg: writing %d byte body: %w", len(body), err)
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("nmsg: flushing message: %w", err)
		}
	}
	return nil
}
