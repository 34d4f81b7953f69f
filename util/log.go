package util

import (
	"fmt"
	"io"
	"log"
	"os"
)

// NewLogWriter redirects all log output so the native messaging channel
// on stdout stays clean. Output goes to fname when given, to stderr when
// debug is set, and is discarded otherwise. A log file stays open for the
// life of the process.
func NewLogWriter(title string, flags int, debug bool, fname string) error {

	log.SetPrefix("[" + title + "] ")
	log.SetFlags(flags)

	switch {
	case fname != "":
		f, err := os.OpenFile(fname, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("unable to open log file %s: %w", fname, err)
		}
		log.SetOutput(f)
	case debug:
		log.SetOutput(os.Stderr)
	default:
		log.SetOutput(io.Discard)
	}
	return nil
}
