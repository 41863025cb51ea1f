package gui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"mediascribe/internal/audio"
	"mediascribe/internal/config"
	"mediascribe/internal/logging"
	"mediascribe/internal/pipeline"
	"mediascribe/internal/transcriber"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 4
		m.logView.Height = maxInt(4, msg.Height-len(m.entries)-14)
		m.refreshLog()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	case progressMsg:
		return m.applyProgress(msg), nil

	case logMsg:
		m.appendLog(msg.line)
		return m, nil

	case batchDoneMsg:
		return m.applyBatchDone(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAddFile, modePathName, modePathDir:
		return m.handleInputKey(msg)
	case modePaths:
		return m.handlePathsKey(msg)
	default:
		return m.handleQueueKey(msg)
	}
}

func (m model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.running {
			m.requestStop()
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case " ":
		if m.cursor < len(m.entries) && !m.running {
			m.entries[m.cursor].checked = !m.entries[m.cursor].checked
		}

	case "a":
		if !m.running {
			m.mode = modeAddFile
			m.input.Placeholder = "path to media file"
			m.input.SetValue("")
			m.input.Focus()
			return m, nil
		}

	case "d":
		if m.cursor < len(m.entries) && !m.running {
			m.entries = append(m.entries[:m.cursor], m.entries[m.cursor+1:]...)
			if m.cursor >= len(m.entries) && m.cursor > 0 {
				m.cursor--
			}
		}

	case "m":
		if !m.running {
			m.modelIdx = (m.modelIdx + 1) % len(transcriber.Models)
		}
	case "l":
		if !m.running {
			m.langIdx = (m.langIdx + 1) % len(languages)
		}
	case "t":
		if !m.running {
			m.timestamps = !m.timestamps
		}
	case "w":
		if !m.running {
			m.keepAudio = !m.keepAudio
		}
	case "v":
		if !m.running {
			m.verbose = !m.verbose
		}

	case "p":
		if !m.running {
			m.mode = modePaths
			m.pathCursor = 0
		}

	case "s", "enter":
		if !m.running {
			return m.startRun()
		}
	case "x":
		if m.running {
			m.requestStop()
		}
	}

	return m, nil
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == modePathName || m.mode == modePathDir {
			m.mode = modePaths
		} else {
			m.mode = modeQueue
		}
		m.pendingPathName = ""
		m.input.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeAddFile:
			return m.submitAddFile(value)
		case modePathName:
			return m.submitPathName(value)
		case modePathDir:
			return m.submitPathDir(value)
		}
	}

	// Quick-path digits prefill the add-file input with a directory.
	if m.mode == modeAddFile && m.input.Value() == "" {
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 {
			names := m.quickPaths.Names()
			if n <= len(names) {
				if dir, ok := m.quickPaths.Get(names[n-1]); ok {
					m.input.SetValue(dir + string(os.PathSeparator))
					m.input.CursorEnd()
					return m, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handlePathsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.quickPaths.Names()
	switch msg.String() {
	case "esc", "q", "p":
		m.mode = modeQueue
	case "up", "k":
		if m.pathCursor > 0 {
			m.pathCursor--
		}
	case "down", "j":
		if m.pathCursor < len(names)-1 {
			m.pathCursor++
		}
	case "a":
		m.mode = modePathName
		m.input.Placeholder = "shortcut name"
		m.input.SetValue("")
		m.input.Focus()
	case "d":
		if m.pathCursor < len(names) {
			name := names[m.pathCursor]
			if err := m.quickPaths.Remove(name); err == nil {
				if err := m.quickPaths.Save(); err != nil {
					m.appendLog(fmt.Sprintf("Saving quick paths failed: %v", err))
				} else {
					m.appendLog(fmt.Sprintf("Removed quick path %q", name))
				}
			}
			if m.pathCursor >= m.quickPaths.Len() && m.pathCursor > 0 {
				m.pathCursor--
			}
		}
	}
	return m, nil
}

func (m model) submitAddFile(path string) (tea.Model, tea.Cmd) {
	if path == "" {
		m.mode = modeQueue
		m.input.Blur()
		return m, nil
	}

	path = config.ExpandPath(path)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		m.appendLog(fmt.Sprintf("Not a file: %s", path))
		return m, nil
	}

	for _, entry := range m.entries {
		if entry.path == path {
			m.appendLog(fmt.Sprintf("Already queued: %s", path))
			return m, nil
		}
	}

	m.entries = append(m.entries, queueEntry{path: path, checked: true})
	m.appendLog(fmt.Sprintf("Queued %s", path))
	m.mode = modeQueue
	m.input.Blur()
	return m, nil
}

func (m model) submitPathName(name string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(name) == "" {
		m.appendLog("Quick path name cannot be empty")
		return m, nil
	}
	if _, exists := m.quickPaths.Get(name); exists {
		m.appendLog(fmt.Sprintf("Quick path %q already exists", name))
		return m, nil
	}
	m.pendingPathName = name
	m.mode = modePathDir
	m.input.Placeholder = "directory"
	m.input.SetValue("")
	return m, nil
}

func (m model) submitPathDir(dir string) (tea.Model, tea.Cmd) {
	if err := m.quickPaths.Add(m.pendingPathName, dir); err != nil {
		m.appendLog(err.Error())
		return m, nil
	}
	if err := m.quickPaths.Save(); err != nil {
		m.appendLog(fmt.Sprintf("Saving quick paths failed: %v", err))
	} else {
		m.appendLog(fmt.Sprintf("Added quick path %q", m.pendingPathName))
	}
	m.pendingPathName = ""
	m.mode = modePaths
	m.input.Blur()
	return m, nil
}

// startRun snapshots the checked entries into immutable jobs and launches
// the worker goroutine. The queue itself is never touched by the worker.
func (m model) startRun() (tea.Model, tea.Cmd) {
	opts := pipeline.Options{
		Model:      transcriber.Models[m.modelIdx].Name,
		Language:   languages[m.langIdx],
		Timestamps: m.timestamps,
		KeepAudio:  m.keepAudio,
		Verbose:    m.verbose,
	}

	// Transcripts land in the configured output directory when it exists,
	// otherwise next to each input.
	outputDir := ""
	if info, err := os.Stat(m.cfg.OutputDir); err == nil && info.IsDir() {
		outputDir = m.cfg.OutputDir
	}

	var jobs []pipeline.Job
	for i := range m.entries {
		if !m.entries[i].checked || m.entries[i].status == statusDone {
			continue
		}
		job := pipeline.NewJob(m.entries[i].path, outputDir, opts)
		m.entries[i].jobID = job.ID
		m.entries[i].status = statusPending
		m.entries[i].percent = 0
		m.entries[i].message = ""
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		m.appendLog("Nothing to do: no files checked")
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.parent)
	m.cancel = cancel
	m.running = true
	m.stopping = false
	m.appendLog(fmt.Sprintf("Starting %d job(s) with %s model", len(jobs), opts.Model))

	out := m.out
	cfg := m.cfg
	logger := m.logger
	verbose := m.verbose
	go func() {
		extractor := audio.NewExtractor(cfg.FFmpegPath, verbose, logger)
		manager := transcriber.NewManager(cfg.ModelsDir, logger)
		cache := transcriber.NewCache(manager, cfg.WhisperPath, logger)

		p := pipeline.New(extractor, cache, pipeline.Callbacks{
			OnProgress: func(jobID string, stage pipeline.Stage, percent int, message string) {
				out.Send(progressMsg{jobID: jobID, stage: stage, percent: percent, message: message})
			},
			OnLog: func(line string) {
				out.Send(logMsg{line: line})
			},
		}, logger)

		results := p.RunBatch(ctx, jobs)
		out.Send(batchDoneMsg{results: results})
	}()

	return m, m.spinner.Tick
}

// requestStop flips the cooperative cancellation flag; the pipeline reacts
// at the next stage boundary.
func (m *model) requestStop() {
	if m.cancel != nil && !m.stopping {
		m.stopping = true
		m.cancel()
		m.appendLog("Stop requested, finishing current stage...")
	}
}

func (m model) applyProgress(msg progressMsg) model {
	for i := range m.entries {
		if m.entries[i].jobID != msg.jobID {
			continue
		}
		switch msg.stage {
		case pipeline.StageDone:
			m.entries[i].status = statusDone
			m.entries[i].percent = 100
		case pipeline.StageFailed:
			m.entries[i].status = statusError
		case pipeline.StageCancelled:
			m.entries[i].status = statusCancelled
		default:
			m.entries[i].status = statusRunning
			if msg.percent > 0 {
				m.entries[i].percent = msg.percent
			}
		}
		m.entries[i].message = msg.message
		break
	}
	return m
}

func (m model) applyBatchDone(msg batchDoneMsg) model {
	m.running = false
	m.cancel = nil

	// Entries snapshotted but never reached stay pending; anything left
	// mid-flight after a stop is cancelled.
	if m.stopping {
		for i := range m.entries {
			if m.entries[i].jobID != "" && m.entries[i].status == statusRunning {
				m.entries[i].status = statusCancelled
			}
		}
	}
	m.stopping = false

	var failed int
	for _, r := range msg.results {
		if r.Failed() {
			failed++
		}
	}
	switch {
	case failed > 0:
		m.appendLog(fmt.Sprintf("Batch finished: %d of %d jobs failed", failed, len(msg.results)))
	default:
		m.appendLog(fmt.Sprintf("Batch finished: %d job(s) processed", len(msg.results)))
	}
	m.logger.Info("batch finished", logging.Int("jobs", len(msg.results)), logging.Int("failed", failed))
	return m
}

func (m *model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > 500 {
		m.logLines = m.logLines[len(m.logLines)-500:]
	}
	m.refreshLog()
}

func (m *model) refreshLog() {
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
