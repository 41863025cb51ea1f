package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeRunner records invocations and delegates to injected behavior.
type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (string, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if f.run == nil {
		return "", nil
	}
	return f.run(ctx, name, args...)
}

func TestExtractBuildsFFmpegArgs(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "clip.mp4")
	output := filepath.Join(root, "clip.wav")

	var gotName string
	var gotArgs []string
	e := NewExtractor("/bin/true", false, nil) // resolvable binary so Available() holds
	e.runner = &fakeRunner{run: func(_ context.Context, name string, args ...string) (string, error) {
		gotName = name
		gotArgs = append([]string{}, args...)
		return "", nil
	}}

	path, err := e.Extract(context.Background(), input, output)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if path != output {
		t.Fatalf("path = %q, want %q", path, output)
	}
	if gotName != "/bin/true" {
		t.Fatalf("command = %q", gotName)
	}

	want := []string{"-i", input, "-y", "-vn", "-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le", "-loglevel", "error", output}
	if len(gotArgs) != len(want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, gotArgs[i], want[i])
		}
	}
}

func TestExtractVerboseDropsLoglevel(t *testing.T) {
	var gotArgs []string
	e := NewExtractor("/bin/true", true, nil)
	e.runner = &fakeRunner{run: func(_ context.Context, _ string, args ...string) (string, error) {
		gotArgs = append([]string{}, args...)
		return "", nil
	}}

	if _, err := e.Extract(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out.wav")); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, a := range gotArgs {
		if a == "-loglevel" {
			t.Fatalf("verbose run should not pass -loglevel, args=%v", gotArgs)
		}
	}
}

func TestExtractFailureRemovesPartialAndCarriesStderr(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.wav")

	e := NewExtractor("/bin/true", false, nil)
	e.runner = &fakeRunner{run: func(_ context.Context, _ string, args ...string) (string, error) {
		// Simulate ffmpeg leaving a partial file behind.
		if err := os.WriteFile(output, []byte("partial"), 0o644); err != nil {
			t.Fatalf("write partial: %v", err)
		}
		return "Unknown decoder 'foo'", errors.New("exit status 1")
	}}

	_, err := e.Extract(context.Background(), "in.mp4", output)
	if err == nil {
		t.Fatal("expected error")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error type = %T, want *CommandError", err)
	}
	if !strings.Contains(cmdErr.Stderr, "Unknown decoder") {
		t.Fatalf("stderr = %q", cmdErr.Stderr)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial output not removed, stat err = %v", statErr)
	}
}

func TestExtractGeneratesTempPath(t *testing.T) {
	e := NewExtractor("/bin/true", false, nil)
	e.runner = &fakeRunner{}

	path, err := e.Extract(context.Background(), "/media/my talk.mp4", "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	defer os.Remove(path)

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "mediascribe-my talk-") || !strings.HasSuffix(base, ".wav") {
		t.Fatalf("temp name = %q", base)
	}
}

func TestWriteWAVReadWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	in := make([]float32, SampleRate/10) // 100ms of 440Hz
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}

	if err := WriteWAV(path, in, SampleRate); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}

	out, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV() error = %v", err)
	}
	if rate != SampleRate {
		t.Fatalf("rate = %d, want %d", rate, SampleRate)
	}
	if len(out) != len(in) {
		t.Fatalf("samples = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if diff := math.Abs(float64(out[i] - in[i])); diff > 1.0/16384 {
			t.Fatalf("sample %d = %f, want %f (diff %f)", i, out[i], in[i], diff)
		}
	}
}

func TestResample(t *testing.T) {
	in := make([]float32, 32000)
	for i := range in {
		in[i] = float32(i) / 32000
	}

	out := Resample(in, 32000, 16000)
	if len(out) != 16000 {
		t.Fatalf("resampled length = %d, want 16000", len(out))
	}
	// Linear content must survive linear interpolation.
	if diff := math.Abs(float64(out[8000]) - 0.5); diff > 0.001 {
		t.Fatalf("midpoint = %f, want ~0.5", out[8000])
	}

	same := Resample(in, 16000, 16000)
	if len(same) != len(in) {
		t.Fatalf("same-rate resample changed length: %d", len(same))
	}
}
