package nmsg

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"
	"sync"
)

// panicReport is the wire shape of the diagnostic frame sent when a host
// goes down with a panic. File and Line are pointers so that an unknown
// panic location serializes as null rather than as zero values.
type panicReport struct {
	Status  string  `json:"status"`
	Payload string  `json:"payload"`
	File    *string `json:"file"`
	Line    *int    `json:"line"`
}

// PanicTrap turns a panic into one best-effort diagnostic frame so the
// extension on the other side of the pipe learns why the host died
// instead of watching it close silently. A trap fires at most once:
// installing the same trap at several recovery boundaries, or letting a
// reported panic propagate through an outer boundary, cannot produce a
// second frame for the same fault.
type PanicTrap struct {
	w    io.Writer
	once sync.Once
}

// NewPanicTrap returns a trap that writes its diagnostic frame to w.
func NewPanicTrap(w io.Writer) *PanicTrap {
	return &PanicTrap{w: w}
}

// Report emits the diagnostic frame for a recovered panic value v. The
// frame carries the panic payload rendered as text plus the source
// location of the panic when it can be recovered from the stack. A
// failure to write the frame is logged and swallowed: reporting a fault
// must not raise another one. Report never panics.
func (t *PanicTrap) Report(v any) {
	t.once.Do(func() {
		rep := panicReport{Status: "panic", Payload: fmt.Sprint(v)}
		if file, line, ok := panicOrigin(); ok {
			rep.File = &file
			rep.Line = &line
		}
		if err := Write(t.w, rep); err != nil {
			log.Printf("dropping panic diagnostic: %v", err)
		}
	})
}

// panicOrigin locates the frame that raised the in-flight panic: the
// first non-runtime function above runtime.gopanic on the current stack.
// It reports ok=false when no panic is unwinding, or when the panic came
// from runtime internals only.
func panicOrigin() (file string, line int, ok bool) {
	pc := make([]uintptr, 64)
	frames := runtime.CallersFrames(pc[:runtime.Callers(1, pc)])
	var unwinding bool
	for {
		f, more := frames.Next()
		if f.Function == "runtime.gopanic" {
			unwinding = true
		} else if unwinding && !strings.HasPrefix(f.Function, "runtime.") {
			return f.File, f.Line, true
		}
		if !more {
			return "", 0, false
		}
	}
}
