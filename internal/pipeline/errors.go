package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindConfig        Kind = "config"
	KindExtraction    Kind = "extraction"
	KindTranscription Kind = "transcription"
	KindWrite         Kind = "write"
	KindCancelled     Kind = "cancelled"
)

// Error is a stage-aware pipeline failure. Fatal errors (model load) abort
// the remaining batch; everything else fails a single job.
type Error struct {
	Kind   Kind
	Stage  Stage
	Path   string // input file the job was processing
	Msg    string
	Stderr string // captured tool output, when relevant
	Fatal  bool
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s: %s", e.Stage, msg, e.Stderr)
	}
	return fmt.Sprintf("%s: %s", e.Stage, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsFatal reports whether err should abort the remaining batch.
func IsFatal(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Fatal
}

// IsCancelled reports whether err is a cooperative-stop outcome rather than
// a real failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
