package transcriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mediascribe/internal/logging"
)

// ErrUnknownModel reports a model size outside the supported set.
var ErrUnknownModel = errors.New("unknown model")

// ModelInfo describes one downloadable whisper model.
type ModelInfo struct {
	Name        string // Short name used on the command line
	File        string // ggml file name
	Size        string // Human-readable download size
	Description string
	URL         string
}

// Models lists the supported model sizes, smallest first. "large" resolves
// to the large-v3 weights.
var Models = []ModelInfo{
	{
		Name:        "tiny",
		File:        "ggml-tiny.bin",
		Size:        "75MB",
		Description: "Fastest, lowest accuracy",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
	},
	{
		Name:        "base",
		File:        "ggml-base.bin",
		Size:        "142MB",
		Description: "Fast, reasonable accuracy (default)",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
	},
	{
		Name:        "small",
		File:        "ggml-small.bin",
		Size:        "466MB",
		Description: "Good accuracy for most recordings",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
	},
	{
		Name:        "medium",
		File:        "ggml-medium.bin",
		Size:        "1.5GB",
		Description: "High accuracy, slower",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
	},
	{
		Name:        "large",
		File:        "ggml-large-v3.bin",
		Size:        "2.9GB",
		Description: "Best accuracy, slowest",
		URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
	},
}

// DefaultModel is used when neither flag nor config names a size.
const DefaultModel = "base"

// Lookup resolves a model by short name, ggml file name, or file path.
func Lookup(name string) (*ModelInfo, error) {
	short := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(name), "ggml-"), ".bin")
	for i := range Models {
		if Models[i].Name == short || Models[i].File == filepath.Base(name) {
			return &Models[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q (choose from %s)", ErrUnknownModel, name, ModelNames())
}

// ModelNames returns the supported short names joined for help text.
func ModelNames() string {
	names := make([]string, len(Models))
	for i, m := range Models {
		names[i] = m.Name
	}
	return strings.Join(names, "|")
}

// Manager resolves, downloads, and removes ggml model files under one
// models directory.
type Manager struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// NewManager creates a Manager rooted at dir.
func NewManager(dir string, logger *slog.Logger) *Manager {
	return &Manager{
		dir:    dir,
		client: http.DefaultClient,
		logger: logging.WithComponent(logger, "models"),
	}
}

// Dir returns the models directory.
func (m *Manager) Dir() string { return m.dir }

// Path maps a model name to its file path. Absolute paths pass through so
// users can point at their own weights.
func (m *Manager) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if info, err := Lookup(name); err == nil {
		return filepath.Join(m.dir, info.File)
	}
	if strings.HasSuffix(name, ".bin") {
		return filepath.Join(m.dir, name)
	}
	return filepath.Join(m.dir, "ggml-"+name+".bin")
}

// Downloaded reports whether the model file exists with non-zero size.
func (m *Manager) Downloaded(name string) bool {
	info, err := os.Stat(m.Path(name))
	return err == nil && info.Size() > 0
}

// Ensure returns the local path for name, downloading the model first if it
// is missing. progress, when non-nil, receives byte counts during download.
func (m *Manager) Ensure(ctx context.Context, name string, progress func(done, total int64)) (string, error) {
	path := m.Path(name)
	if m.Downloaded(name) {
		return path, nil
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("model file not found: %s", name)
	}

	info, err := Lookup(name)
	if err != nil {
		return "", err
	}

	m.logger.Info("downloading model", logging.String("model", info.Name), logging.String("size", info.Size))
	if err := m.download(ctx, info, path, progress); err != nil {
		return "", fmt.Errorf("download model %s: %w", info.Name, err)
	}
	return path, nil
}

// download fetches the model into a temp file and renames it into place so
// an interrupted download never leaves a truncated model behind.
func (m *Manager) download(ctx context.Context, info *ModelInfo, destPath string, progress func(done, total int64)) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer out.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Remove(tmpPath)
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, info.URL)
	}

	var reader io.Reader = resp.Body
	if progress != nil {
		reader = &progressReader{r: resp.Body, total: resp.ContentLength, report: progress}
	}

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write model file: %w", err)
	}
	out.Close()

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename model file: %w", err)
	}
	return nil
}

// Remove deletes a downloaded model file.
func (m *Manager) Remove(name string) error {
	path := m.Path(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("model %s is not downloaded", name)
	}
	return os.Remove(path)
}

// Installed lists the short names of models present in the directory.
func (m *Manager) Installed() []string {
	var names []string
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return names
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "ggml-") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(name, "ggml-"), ".bin"))
	}
	return names
}

// Status pairs catalog info with local download state.
type Status struct {
	ModelInfo
	Downloaded bool
}

// List reports every supported model and whether it is installed.
func (m *Manager) List() []Status {
	statuses := make([]Status, 0, len(Models))
	for _, info := range Models {
		statuses = append(statuses, Status{ModelInfo: info, Downloaded: m.Downloaded(info.Name)})
	}
	return statuses
}

type progressReader struct {
	r      io.Reader
	done   int64
	total  int64
	report func(done, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.report(p.done, p.total)
	}
	return n, err
}
