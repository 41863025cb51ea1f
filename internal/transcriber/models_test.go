package transcriber

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookupResolvesNamesAndFiles(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"base", "ggml-base.bin"},
		{"ggml-small.bin", "ggml-small.bin"},
		{"/models/ggml-tiny.bin", "ggml-tiny.bin"},
		{"large", "ggml-large-v3.bin"},
	}
	for _, tc := range cases {
		info, err := Lookup(tc.in)
		if err != nil {
			t.Errorf("Lookup(%q): %v", tc.in, err)
			continue
		}
		if info.File != tc.want {
			t.Errorf("Lookup(%q).File = %s, want %s", tc.in, info.File, tc.want)
		}
	}

	if _, err := Lookup("gigantic"); !errors.Is(err, ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}

func TestManagerPath(t *testing.T) {
	m := NewManager("/models", nil)

	if got := m.Path("base"); got != filepath.Join("/models", "ggml-base.bin") {
		t.Fatalf("Path(base) = %s", got)
	}
	abs := filepath.Join(string(filepath.Separator), "custom", "weights.bin")
	if got := m.Path(abs); got != abs {
		t.Fatalf("absolute path rewritten: %s", got)
	}
	if got := m.Path("ggml-mine.bin"); got != filepath.Join("/models", "ggml-mine.bin") {
		t.Fatalf("Path(ggml-mine.bin) = %s", got)
	}
}

func TestManagerDownloadedAndInstalled(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, nil)

	if m.Downloaded("base") {
		t.Fatal("empty dir reports base downloaded")
	}

	seedModel(t, dir, "base")
	if err := os.WriteFile(filepath.Join(dir, "ggml-tiny.bin"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !m.Downloaded("base") {
		t.Fatal("seeded base not reported downloaded")
	}
	if m.Downloaded("tiny") {
		t.Fatal("zero-byte model reported downloaded")
	}

	installed := m.Installed()
	if len(installed) != 2 {
		t.Fatalf("installed = %v", installed)
	}
}

func TestManagerRemove(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, nil)
	seedModel(t, dir, "base")

	if err := m.Remove("base"); err != nil {
		t.Fatal(err)
	}
	if m.Downloaded("base") {
		t.Fatal("model still present after Remove")
	}
	if err := m.Remove("base"); err == nil {
		t.Fatal("removing a missing model should fail")
	}
}

func TestManagerListMatchesCatalog(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, nil)
	seedModel(t, dir, "small")

	statuses := m.List()
	if len(statuses) != len(Models) {
		t.Fatalf("statuses = %d, want %d", len(statuses), len(Models))
	}
	for _, st := range statuses {
		want := st.Name == "small"
		if st.Downloaded != want {
			t.Errorf("%s downloaded = %v, want %v", st.Name, st.Downloaded, want)
		}
	}
}
