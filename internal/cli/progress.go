package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mediascribe/internal/audio"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/transcriber"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// runState is the shared state between the pipeline goroutine and the
// progress view.
type runState struct {
	mu       sync.RWMutex
	stage    pipeline.Stage
	percent  int
	message  string
	stopping bool
	done     bool
	started  time.Time
}

func newRunState() *runState {
	return &runState{stage: pipeline.StageQueued, started: time.Now()}
}

func (s *runState) update(stage pipeline.Stage, percent int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
	if percent > 0 {
		s.percent = percent
	}
	s.message = message
}

func (s *runState) setStopping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopping = true
}

func (s *runState) setDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
}

func (s *runState) get() (pipeline.Stage, int, string, bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage, s.percent, s.message, s.stopping, s.done
}

func (s *runState) elapsed() time.Duration { return time.Since(s.started) }

// runWithLiveView drives a single job with the animated terminal view. The
// pipeline runs on its own goroutine; q requests cooperative cancellation.
func runWithLiveView(ctx context.Context, ext *audio.Extractor, cache *transcriber.Cache, logger *slog.Logger, jobs []pipeline.Job) []pipeline.Result {
	state := newRunState()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := pipeline.New(ext, cache, pipeline.Callbacks{
		OnProgress: func(_ string, stage pipeline.Stage, percent int, message string) {
			state.update(stage, percent, message)
		},
	}, logger)

	done := make(chan []pipeline.Result, 1)
	go func() {
		results := p.RunBatch(runCtx, jobs)
		state.setDone()
		done <- results
	}()

	m := newRunModel(filepath.Base(jobs[0].InputPath), jobs[0].Model, state, cancel)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		// View failure only loses the animation; the run itself continues.
		logger.Warn("progress view failed", "error", err)
	}
	return <-done
}

type runTickMsg time.Time

type runModel struct {
	progress progress.Model
	spinner  spinner.Model

	filename string
	model    string
	state    *runState
	stop     context.CancelFunc
}

func newRunModel(filename, model string, state *runState, stop context.CancelFunc) runModel {
	p := progress.New(
		progress.WithScaledGradient("#FF6B6B", "#4ECDC4"),
		progress.WithWidth(50),
	)

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return runModel{
		progress: p,
		spinner:  s,
		filename: filename,
		model:    model,
		state:    state,
		stop:     stop,
	}
}

func runTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return runTickMsg(t)
	})
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, runTickCmd())
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.state.setStopping()
			m.stop()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case runTickMsg:
		_, percent, _, _, done := m.state.get()
		if done {
			return m, tea.Quit
		}
		return m, tea.Batch(runTickCmd(), m.progress.SetPercent(float64(percent)/100))
	}

	return m, nil
}

func (m runModel) View() string {
	stage, percent, message, stopping, done := m.state.get()
	if done {
		return ""
	}

	title := stageTitle(stage)
	if stopping {
		title = "Stopping after current stage..."
	}

	var s string
	s += "\n"
	s += fmt.Sprintf("  %s %s\n", m.spinner.View(), titleStyle.Render(title))
	s += fmt.Sprintf("  %s %s\n", labelStyle.Render("File:"), fileStyle.Render(m.filename))
	s += fmt.Sprintf("  %s %s\n\n", labelStyle.Render("Model:"), valueStyle.Render(m.model))
	s += fmt.Sprintf("  %s\n\n", m.progress.View())
	s += fmt.Sprintf("  %s %d%%  %s  %s %s\n",
		labelStyle.Render("Progress:"),
		percent,
		labelStyle.Render("│"),
		labelStyle.Render("Elapsed:"),
		valueStyle.Render(formatElapsed(m.state.elapsed())),
	)
	if message != "" {
		s += fmt.Sprintf("  %s\n", labelStyle.Render(message))
	}
	s += "\n"
	s += helpStyle.Render("  Press q to stop")
	s += "\n"
	return s
}

func stageTitle(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageExtracting:
		return "Extracting audio..."
	case pipeline.StageTranscribing:
		return "Transcribing speech..."
	case pipeline.StageCleaning:
		return "Cleaning transcript..."
	case pipeline.StageWriting:
		return "Saving transcript..."
	default:
		return "Preparing..."
	}
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
