//go:build !cgo

package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// defaultWhisperBin is looked up on PATH when config names no binary.
const defaultWhisperBin = "whisper-cli"

// cliEngine shells out to a whisper.cpp command-line build. It keeps the
// Engine contract without a C toolchain; the model stays on disk and is
// loaded by the subprocess on every call.
type cliEngine struct {
	modelPath string
	binPath   string
}

func newEngine(opts engineOptions) (Engine, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", opts.ModelPath)
	}

	bin := opts.BinPath
	if bin == "" {
		bin = defaultWhisperBin
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("whisper binary %q not found (install whisper.cpp or build with cgo): %w", bin, err)
	}

	return &cliEngine{modelPath: opts.ModelPath, binPath: resolved}, nil
}

func (e *cliEngine) Name() string { return "whisper-cli" }

func (e *cliEngine) Transcribe(ctx context.Context, wavPath, language string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := []string{"-m", e.modelPath, "-f", wavPath}
	if language != "" && language != "auto" {
		args = append(args, "-l", language)
	}

	cmd := exec.CommandContext(ctx, e.binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", e.binPath, err, tail(stderr.String(), 400))
	}

	segments := parseCLIOutput(stdout.String())
	detected := language
	if detected == "" {
		detected = "auto"
	}

	return &Result{
		Text:     joinSegments(segments),
		Segments: segments,
		Language: detected,
		Elapsed:  time.Since(start),
	}, nil
}

func (e *cliEngine) Close() error { return nil }

// tail returns at most n trailing bytes of s, trimmed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
