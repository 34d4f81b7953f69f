package nmsg

import (
	"errors"
	"fmt"
)

// ErrNoMoreInput reports that the input stream ended cleanly on a frame
// boundary. It is the only signal that the peer has closed the channel on
// purpose: end-of-stream in the middle of a frame is reported as a plain
// I/O failure instead. Callers should test for it with errors.Is.
var ErrNoMoreInput = errors.New("the input stream reached the end")

// TooLargeError is returned by Write when a message encodes to more bytes
// than MaxMessageSize. Size holds the measured encoded length, so the
// caller can report how far over the limit the message was. Write fails
// before touching the stream, leaving it usable for further frames.
type TooLargeError struct {
	Size int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("message too large: %d bytes", e.Size)
}
