// Package gui is the interactive terminal interface: a file queue with
// per-entry status, an options panel mirroring the CLI flags, live progress
// from a background pipeline worker, a scrolling log, and a quick-path
// manager. All state mutation happens in Update; the worker goroutine only
// sends messages.
package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gofrs/flock"

	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/transcriber"
)

// entryStatus is the UI lifecycle of one queued file.
type entryStatus int

const (
	statusPending entryStatus = iota
	statusRunning
	statusDone
	statusError
	statusCancelled
)

// queueEntry wraps one input file with its mutable UI state.
type queueEntry struct {
	path    string
	checked bool
	status  entryStatus
	percent int
	message string
	jobID   string // set when a run snapshots the queue
}

// uiMode selects which panel owns the keyboard.
type uiMode int

const (
	modeQueue uiMode = iota
	modeAddFile
	modePaths
	modePathName
	modePathDir
)

// Worker → UI messages.
type (
	progressMsg struct {
		jobID   string
		stage   pipeline.Stage
		percent int
		message string
	}
	logMsg      struct{ line string }
	batchDoneMsg struct{ results []pipeline.Result }
)

// sender decouples the worker from the bubbletea program; its send field is
// bound to Program.Send before the program runs.
type sender struct {
	send func(tea.Msg)
}

func (s *sender) Send(msg tea.Msg) {
	if s.send != nil {
		s.send(msg)
	}
}

// languages offered by the options panel cycle.
var languages = []string{"auto", "en", "zh", "es", "fr", "de", "ja", "ko", "ru", "pt"}

type model struct {
	cfg    *config.Config
	logger *slog.Logger
	out    *sender
	parent context.Context

	mode    uiMode
	entries []queueEntry
	cursor  int

	// Options panel.
	modelIdx   int
	langIdx    int
	timestamps bool
	keepAudio  bool
	verbose    bool

	// Run state.
	running bool
	stopping bool
	cancel  context.CancelFunc

	quickPaths *config.QuickPaths

	spinner  spinner.Model
	bar      progress.Model
	logView  viewport.Model
	input    textinput.Model
	logLines []string

	pendingPathName string
	pathCursor      int
	width, height   int
}

func newModel(ctx context.Context, cfg *config.Config, logger *slog.Logger, qp *config.QuickPaths, out *sender) model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(progress.WithScaledGradient("#FF6B6B", "#4ECDC4"), progress.WithWidth(30))

	input := textinput.New()
	input.Placeholder = "path to media file"
	input.CharLimit = 512

	logView := viewport.New(80, 8)

	m := model{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "gui"),
		out:        out,
		parent:     ctx,
		quickPaths: qp,
		spinner:    s,
		bar:        bar,
		input:      input,
		logView:    logView,
		modelIdx:   modelIndex(cfg.Model),
		langIdx:    languageIndex(cfg.Language),
		timestamps: cfg.Timestamps,
		keepAudio:  cfg.KeepAudio,
	}
	return m
}

func modelIndex(name string) int {
	for i, info := range transcriber.Models {
		if info.Name == name {
			return i
		}
	}
	return 1 // base
}

func languageIndex(code string) int {
	for i, lang := range languages {
		if lang == code {
			return i
		}
	}
	return 0
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Run starts the terminal interface and blocks until it exits. A file lock
// keeps a second instance from editing the same settings files.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dir, "gui.lock"))
	locked, err := lock.TryLock()
	if err == nil && !locked {
		return errors.New("another mediascribe instance is already running")
	}
	if err == nil {
		defer lock.Unlock()
	}

	qp, qpErr := config.LoadQuickPaths()

	out := &sender{}
	m := newModel(ctx, cfg, logger, qp, out)
	if errors.Is(qpErr, config.ErrQuickPathsUnreadable) {
		m.logLines = append(m.logLines, fmt.Sprintf("Quick paths file ignored: %v", qpErr))
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	out.send = p.Send

	_, err = p.Run()
	return err
}
