package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const QuickPathsFileName = "quick_paths.json"

// ErrQuickPathsUnreadable marks a missing or malformed quick-path file. The
// caller shows a notice and proceeds with an empty mapping.
var ErrQuickPathsUnreadable = errors.New("quick paths unreadable")

// QuickPaths is the named shortcut-directory mapping used by the GUI file
// picker and the paths subcommand.
type QuickPaths struct {
	path    string
	entries map[string]string
}

// QuickPathsFile returns the store location under the config directory.
func QuickPathsFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, QuickPathsFileName), nil
}

// LoadQuickPaths reads the store. A missing or malformed file yields an
// empty usable mapping together with ErrQuickPathsUnreadable so callers can
// surface a notice.
func LoadQuickPaths() (*QuickPaths, error) {
	path, err := QuickPathsFile()
	if err != nil {
		return nil, err
	}
	return loadQuickPathsFrom(path)
}

func loadQuickPathsFrom(path string) (*QuickPaths, error) {
	qp := &QuickPaths{path: path, entries: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return qp, nil
		}
		return qp, fmt.Errorf("%w: %v", ErrQuickPathsUnreadable, err)
	}
	if err := json.Unmarshal(data, &qp.entries); err != nil {
		qp.entries = map[string]string{}
		return qp, fmt.Errorf("%w: %v", ErrQuickPathsUnreadable, err)
	}
	return qp, nil
}

// Names lists the shortcut names in stable sorted order.
func (q *QuickPaths) Names() []string {
	names := make([]string, 0, len(q.entries))
	for name := range q.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get resolves a shortcut to its directory.
func (q *QuickPaths) Get(name string) (string, bool) {
	dir, ok := q.entries[name]
	return dir, ok
}

// Len returns the number of shortcuts.
func (q *QuickPaths) Len() int { return len(q.entries) }

// Add registers a shortcut. Empty names and duplicates are rejected; the
// directory is ~-expanded.
func (q *QuickPaths) Add(name, dir string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("quick path name cannot be empty")
	}
	if _, exists := q.entries[name]; exists {
		return fmt.Errorf("quick path %q already exists", name)
	}
	dir = ExpandPath(strings.TrimSpace(dir))
	if dir == "" {
		return errors.New("quick path directory cannot be empty")
	}
	q.entries[name] = dir
	return nil
}

// Remove deletes a shortcut.
func (q *QuickPaths) Remove(name string) error {
	if _, exists := q.entries[name]; !exists {
		return fmt.Errorf("quick path %q not found", name)
	}
	delete(q.entries, name)
	return nil
}

// Save persists the mapping as indented JSON back to its file.
func (q *QuickPaths) Save() error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(q.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(q.path, data, 0o644)
}
