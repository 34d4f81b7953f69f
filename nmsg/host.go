package nmsg

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
)

// Handler processes one decoded message. The returned value is sent back
// to the peer as the response frame; it can be anything json.Marshal
// accepts, including nil for a bare acknowledgement. A returned error is
// reported to the peer as an {"error": ...} frame and does not stop the
// serve loop.
type Handler func(msg json.RawMessage) (any, error)

// errorReply is the wire shape for recoverable failures.
type errorReply struct {
	Error string `json:"error"`
}

// Host runs the request/response cycle of a native messaging host over a
// pair of byte streams, os.Stdin and os.Stdout in a real deployment. The
// loop is strictly sequential: a message is read, handled and answered
// before the next one is looked at. Nothing else may write to the output
// stream while Run executes, as frames must not interleave.
type Host struct {
	in          *bufio.Reader
	out         *bufio.Writer
	trap        *PanicTrap
	keepServing bool
}

// Option adjusts how a Host behaves.
type Option func(*Host)

// WithPanicTrap makes the host report panics through trap instead of one
// of its own. Sharing one trap between the host and an outer recovery
// boundary keeps a single fault from being reported twice.
func WithPanicTrap(trap *PanicTrap) Option {
	return func(h *Host) { h.trap = trap }
}

// ContinueOnWriteError keeps the serve loop alive when a response cannot
// be delivered. The default is to stop and return the write error, since
// an output stream that swallows a frame usually means the browser is
// gone.
func ContinueOnWriteError() Option {
	return func(h *Host) { h.keepServing = true }
}

// NewHost prepares a host reading frames from in and writing them to out.
// Both streams are buffered internally; every outgoing frame is flushed
// before the loop moves on.
func NewHost(in io.Reader, out io.Writer, opts ...Option) *Host {
	h := &Host{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
	}
	for _, o := range opts {
		o(h)
	}
	if h.trap == nil {
		h.trap = NewPanicTrap(h.out)
	}
	return h
}

// Run feeds incoming messages to fn until the input stream ends, writing
// results back as frames. It returns nil once the peer closes the stream
// cleanly. Malformed frames and handler errors are reported to the peer
// as {"error": ...} frames and the loop keeps serving. A response too
// large for the wire is reported the same way, as the failed Write leaves
// the stream untouched. Other response write failures stop the loop
// unless ContinueOnWriteError was set.
//
// There is no cancellation: the protocol has none, and a silent peer
// blocks Run until the browser closes the host's stdin.
//
// A panic escaping fn is reported with a {"status": "panic"} diagnostic
// frame and then re-raised so the process dies the way it would have
// without the host in between.
func (h *Host) Run(fn Handler) error {
	defer func() {
		if r := recover(); r != nil {
			h.trap.Report(r)
			panic(r)
		}
	}()

	for {
		msg, err := Read(h.in)
		if err != nil {
			if errors.Is(err, ErrNoMoreInput) {
				return nil
			}
			h.reply(err)
			continue
		}

		resp, err := h.dispatch(fn, msg)
		if err != nil {
			h.reply(err)
			continue
		}

		if err := Write(h.out, resp); err != nil {
			var tooLarge *TooLargeError
			switch {
			case errors.As(err, &tooLarge):
				h.reply(err)
			case h.keepServing:
				log.Printf("dropping response: %v", err)
			default:
				return fmt.Errorf("nmsg: writing response: %w", err)
			}
		}
	}
}

// dispatch guards a single handler call. The recover must be called
// straight from the deferred function, so the guard cannot be folded
// into Run's loop body.
func (h *Host) dispatch(fn Handler, msg json.RawMessage) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.trap.Report(r)
			panic(r)
		}
	}()
	return fn(msg)
}

// reply sends an error frame. Best effort: a failure here is logged and
// swallowed, so a dying output stream does not cascade into the loop.
func (h *Host) reply(cause error) {
	if err := Write(h.out, errorReply{Error: cause.Error()}); err != nil {
		log.Printf("dropping error frame %q: %v", cause, err)
	}
}
