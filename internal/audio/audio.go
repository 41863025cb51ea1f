// Package audio prepares transcriber input: it extracts a 16 kHz mono PCM
// WAV track from any container ffmpeg understands, falling back to pure-Go
// decoders and an embedded WebAssembly ffmpeg when the system binary is
// missing.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mediascribe/internal/logging"
)

// SampleRate and Channels are the PCM convention whisper.cpp expects.
const (
	SampleRate = 16000
	Channels   = 1
)

// ErrFFmpegNotFound reports that no usable ffmpeg binary is on PATH.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// CommandError is a failed ffmpeg invocation with its captured stderr tail.
type CommandError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Cmd, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// commandRunner abstracts subprocess execution so tests inject fakes.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stderr string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// Extractor pulls the audio stream out of media files.
type Extractor struct {
	ffmpegPath string
	verbose    bool
	runner     commandRunner
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. ffmpegPath may be empty to use "ffmpeg"
// from PATH; verbose passes ffmpeg's own log output through.
func NewExtractor(ffmpegPath string, verbose bool, logger *slog.Logger) *Extractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Extractor{
		ffmpegPath: ffmpegPath,
		verbose:    verbose,
		runner:     execRunner{},
		logger:     logging.WithComponent(logger, "audio"),
	}
}

// Available reports whether the ffmpeg binary can be resolved.
func (e *Extractor) Available() bool {
	_, err := exec.LookPath(e.ffmpegPath)
	return err == nil
}

// Extract writes a 16 kHz mono WAV of inputPath's audio stream to
// outputPath, generating a temp file when outputPath is empty, and returns
// the path written. The caller owns the file.
func (e *Extractor) Extract(ctx context.Context, inputPath, outputPath string) (string, error) {
	if outputPath == "" {
		path, err := tempWAVPath(inputPath)
		if err != nil {
			return "", err
		}
		outputPath = path
	}

	if !e.Available() {
		e.logger.Warn("ffmpeg not found, using built-in decoders", logging.String("input", filepath.Base(inputPath)))
		if err := e.convertFallback(ctx, inputPath, outputPath); err != nil {
			os.Remove(outputPath)
			return "", err
		}
		return outputPath, nil
	}

	args := e.args(inputPath, outputPath)
	e.logger.Debug("running ffmpeg", logging.String("args", strings.Join(args, " ")))

	stderr, err := e.runner.Run(ctx, e.ffmpegPath, args...)
	if err != nil {
		os.Remove(outputPath)
		return "", &CommandError{Cmd: e.ffmpegPath, Stderr: tail(stderr, 500), Err: err}
	}
	return outputPath, nil
}

// args builds the ffmpeg command line for one extraction.
func (e *Extractor) args(inputPath, outputPath string) []string {
	args := []string{
		"-i", inputPath,
		"-y",
		"-vn",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-c:a", "pcm_s16le",
	}
	if !e.verbose {
		args = append(args, "-loglevel", "error")
	}
	return append(args, outputPath)
}

// tempWAVPath reserves a temp file named after the input's stem.
func tempWAVPath(inputPath string) (string, error) {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	f, err := os.CreateTemp("", "mediascribe-"+sanitize(stem)+"-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	f.Close()
	return f.Name(), nil
}

// sanitize keeps temp file patterns free of path separators and wildcards.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '*', '?':
			return '_'
		}
		return r
	}, s)
}

// tail returns at most n trailing bytes of s, trimmed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
