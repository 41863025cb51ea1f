package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	if cfg.Model != "base" {
		t.Fatalf("model = %q, want base", cfg.Model)
	}
	if cfg.Language != "auto" {
		t.Fatalf("language = %q, want auto", cfg.Language)
	}
	if !strings.HasSuffix(cfg.InputDir, "Movies") {
		t.Fatalf("input dir = %q", cfg.InputDir)
	}
	if !strings.HasSuffix(cfg.OutputDir, "Downloads") {
		t.Fatalf("output dir = %q", cfg.OutputDir)
	}
	if cfg.ModelsDir == "" {
		t.Fatal("models dir empty")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	want := DefaultConfig()
	want.Model = "small"
	want.Timestamps = true
	want.FFmpegPath = "/opt/ffmpeg/bin/ffmpeg"

	if err := Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# mediascribe configuration file") {
		t.Fatalf("missing header comment: %q", string(data)[:40])
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Model != "small" || !got.Timestamps || got.FFmpegPath != want.FFmpegPath {
		t.Fatalf("loaded = %+v, want %+v", got, want)
	}
}

func TestLoadFillsMissingFieldsWithDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("model: medium\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model != "medium" {
		t.Fatalf("model = %q, want medium", cfg.Model)
	}
	if cfg.Language != "auto" || cfg.OutputDir == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOrDefaultToleratesMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg.Model != "base" {
		t.Fatalf("model = %q, want default base", cfg.Model)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := Init(); err == nil {
		t.Fatal("second Init() should refuse to overwrite")
	}
}

func TestApplyDotenvOverridesDirectories(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	env := "DEFAULT_INPUT_LOCATION=~/videos\nDEFAULT_OUTPUT_LOCATION=/srv/transcripts\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ApplyDotenv()
	if cfg.InputDir != filepath.Join(home, "videos") {
		t.Fatalf("input dir = %q", cfg.InputDir)
	}
	if cfg.OutputDir != "/srv/transcripts" {
		t.Fatalf("output dir = %q", cfg.OutputDir)
	}
}

func TestApplyDotenvMissingFileIsNoop(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg := DefaultConfig()
	before := *cfg
	cfg.ApplyDotenv()
	if *cfg != before {
		t.Fatalf("config changed without a dotenv file: %+v", cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cases := []struct{ in, want string }{
		{"~/videos", filepath.Join(home, "videos")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
	}
	for _, tc := range cases {
		if got := ExpandPath(tc.in); got != tc.want {
			t.Fatalf("ExpandPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQuickPathsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "quick_paths.json")

	qp, err := loadQuickPathsFrom(path)
	if err != nil {
		t.Fatalf("load missing file error = %v", err)
	}
	if qp.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", qp.Len())
	}

	if err := qp.Add("movies", "~/Movies"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := qp.Add("work", "/srv/recordings"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := qp.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	again, err := loadQuickPathsFrom(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	names := again.Names()
	if len(names) != 2 || names[0] != "movies" || names[1] != "work" {
		t.Fatalf("names = %v", names)
	}
	if dir, ok := again.Get("work"); !ok || dir != "/srv/recordings" {
		t.Fatalf("work = %q, %v", dir, ok)
	}
}

func TestQuickPathsValidation(t *testing.T) {
	qp := &QuickPaths{entries: map[string]string{"movies": "/m"}}

	if err := qp.Add("  ", "/x"); err == nil {
		t.Fatal("empty name accepted")
	}
	if err := qp.Add("movies", "/x"); err == nil {
		t.Fatal("duplicate name accepted")
	}
	if err := qp.Add("docs", "  "); err == nil {
		t.Fatal("empty directory accepted")
	}
	if err := qp.Remove("missing"); err == nil {
		t.Fatal("removing unknown name should fail")
	}
	if err := qp.Remove("movies"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
}

func TestQuickPathsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quick_paths.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	qp, err := loadQuickPathsFrom(path)
	if !errors.Is(err, ErrQuickPathsUnreadable) {
		t.Fatalf("error = %v, want ErrQuickPathsUnreadable", err)
	}
	if qp == nil || qp.Len() != 0 {
		t.Fatal("malformed file must yield an empty usable store")
	}
}
