// Package transcriber converts prepared audio into timed text using
// whisper.cpp, either in-process through the Go bindings (cgo builds) or
// through a whisper-cli subprocess (pure Go builds).
package transcriber

import (
	"context"
	"time"
)

// Segment is a timed span of recognized text, ordered by start time.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result is the raw output of one inference run.
type Result struct {
	Text     string        // Joined segment text, untrimmed of recognition quirks
	Segments []Segment     // Ordered by non-decreasing start
	Language string        // Detected or requested language
	Elapsed  time.Duration // Wall time spent inside the model call
}

// Engine runs speech recognition against 16 kHz mono WAV files.
type Engine interface {
	// Transcribe runs inference on the audio at wavPath. Language is an ISO
	// code or "auto". The context is honored between files, not mid-inference.
	Transcribe(ctx context.Context, wavPath, language string) (*Result, error)

	// Name identifies the backing implementation for log output.
	Name() string

	// Close releases the loaded model.
	Close() error
}

// engineOptions carries everything either engine flavor needs.
type engineOptions struct {
	// ModelPath points at a ggml model file.
	ModelPath string
	// BinPath names the whisper-cli binary for subprocess builds.
	BinPath string
}
