package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeEngine struct {
	model  string
	closed bool
}

func (e *fakeEngine) Transcribe(ctx context.Context, wavPath, language string) (*Result, error) {
	return &Result{Text: "ok"}, nil
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Close() error {
	e.closed = true
	return nil
}

// seedModel drops a non-empty ggml file so Ensure resolves without a
// network download.
func seedModel(t *testing.T, dir, name string) {
	t.Helper()
	info, err := Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, info.File), []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCacheReusesEngineForSameSize(t *testing.T) {
	dir := t.TempDir()
	seedModel(t, dir, "base")

	var loads int
	cache := newCacheWithFactory(NewManager(dir, nil), func(opts engineOptions) (Engine, error) {
		loads++
		return &fakeEngine{model: opts.ModelPath}, nil
	})
	defer cache.Close()

	first, err := cache.Engine(context.Background(), "base")
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.Engine(context.Background(), "base")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("same size returned a different engine")
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}
}

func TestCacheSwapsEngineOnSizeChange(t *testing.T) {
	dir := t.TempDir()
	seedModel(t, dir, "base")
	seedModel(t, dir, "small")

	cache := newCacheWithFactory(NewManager(dir, nil), func(opts engineOptions) (Engine, error) {
		return &fakeEngine{model: opts.ModelPath}, nil
	})
	defer cache.Close()

	first, err := cache.Engine(context.Background(), "base")
	if err != nil {
		t.Fatal(err)
	}
	second, err := cache.Engine(context.Background(), "small")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("size change reused the old engine")
	}
	if !first.(*fakeEngine).closed {
		t.Fatal("old engine was not closed")
	}
	if got := second.(*fakeEngine).model; filepath.Base(got) != "ggml-small.bin" {
		t.Fatalf("second engine model = %s", got)
	}
}

func TestCacheClose(t *testing.T) {
	dir := t.TempDir()
	seedModel(t, dir, "tiny")

	cache := newCacheWithFactory(NewManager(dir, nil), func(opts engineOptions) (Engine, error) {
		return &fakeEngine{}, nil
	})

	engine, err := cache.Engine(context.Background(), "tiny")
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Close(); err != nil {
		t.Fatal(err)
	}
	if !engine.(*fakeEngine).closed {
		t.Fatal("Close did not close the engine")
	}
	if err := cache.Close(); err != nil {
		t.Fatal("second Close should be a no-op")
	}
}

func TestCachePropagatesFactoryError(t *testing.T) {
	dir := t.TempDir()
	seedModel(t, dir, "base")

	loadErr := errors.New("mmap failed")
	cache := newCacheWithFactory(NewManager(dir, nil), func(opts engineOptions) (Engine, error) {
		return nil, loadErr
	})

	if _, err := cache.Engine(context.Background(), "base"); !errors.Is(err, loadErr) {
		t.Fatalf("err = %v, want wrapped %v", err, loadErr)
	}
}
