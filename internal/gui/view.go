package gui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mediascribe/internal/transcriber"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cancelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	optValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mediascribe"))
	b.WriteString("\n\n")

	switch m.mode {
	case modePaths, modePathName, modePathDir:
		m.viewPaths(&b)
	default:
		m.viewQueue(&b)
	}

	if len(m.logLines) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Log"))
		b.WriteString("\n")
		b.WriteString(m.logView.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m model) viewQueue(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Queue"))
	b.WriteString("\n")
	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("  (empty — press a to add a file)"))
		b.WriteString("\n")
	}
	nameWidth := maxInt(20, m.width-40)
	for i, entry := range m.entries {
		cursor := "  "
		if i == m.cursor && m.mode == modeQueue {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		if entry.checked {
			check = "[x]"
		}
		name := runewidth.Truncate(filepath.Base(entry.path), nameWidth, "…")
		line := fmt.Sprintf("%s%s %s %s", cursor, check, m.statusGlyph(entry), name)
		if entry.status == statusRunning && entry.message != "" {
			line += dimStyle.Render("  " + entry.message)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Options"))
	b.WriteString("\n")
	fmt.Fprintf(b, "  model: %s   language: %s   timestamps: %s   keep audio: %s   verbose: %s\n",
		optValueStyle.Render(transcriber.Models[m.modelIdx].Name),
		optValueStyle.Render(languages[m.langIdx]),
		optValueStyle.Render(onOff(m.timestamps)),
		optValueStyle.Render(onOff(m.keepAudio)),
		optValueStyle.Render(onOff(m.verbose)))

	if m.running {
		b.WriteString("\n")
		if entry, ok := m.activeEntry(); ok {
			fmt.Fprintf(b, "  %s %s\n", m.spinner.View(), filepath.Base(entry.path))
			fmt.Fprintf(b, "  %s %d%%\n", m.bar.ViewAs(float64(entry.percent)/100), entry.percent)
		} else {
			fmt.Fprintf(b, "  %s working...\n", m.spinner.View())
		}
		if m.stopping {
			b.WriteString(cancelStyle.Render("  stopping after current stage..."))
			b.WriteString("\n")
		}
	}

	if m.mode == modeAddFile {
		b.WriteString("\n")
		b.WriteString("  Add file: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if names := m.quickPaths.Names(); len(names) > 0 {
			var hints []string
			for i, name := range names {
				if i >= 9 {
					break
				}
				hints = append(hints, fmt.Sprintf("%d=%s", i+1, name))
			}
			b.WriteString(dimStyle.Render("  quick paths: " + strings.Join(hints, "  ")))
			b.WriteString("\n")
		}
	}
}

func (m model) viewPaths(b *strings.Builder) {
	b.WriteString(sectionStyle.Render("Quick paths"))
	b.WriteString("\n")
	names := m.quickPaths.Names()
	if len(names) == 0 {
		b.WriteString(dimStyle.Render("  (none — press a to add one)"))
		b.WriteString("\n")
	}
	for i, name := range names {
		cursor := "  "
		if i == m.pathCursor && m.mode == modePaths {
			cursor = cursorStyle.Render("> ")
		}
		dir, _ := m.quickPaths.Get(name)
		fmt.Fprintf(b, "%s%-12s %s\n", cursor, name, dimStyle.Render(dir))
	}

	switch m.mode {
	case modePathName:
		b.WriteString("\n  Name: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modePathDir:
		fmt.Fprintf(b, "\n  Directory for %q: ", m.pendingPathName)
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
}

func (m model) statusGlyph(entry queueEntry) string {
	switch entry.status {
	case statusRunning:
		return m.spinner.View()
	case statusDone:
		return doneStyle.Render("✓")
	case statusError:
		return errStyle.Render("✗")
	case statusCancelled:
		return cancelStyle.Render("–")
	default:
		return " "
	}
}

func (m model) activeEntry() (queueEntry, bool) {
	for _, entry := range m.entries {
		if entry.status == statusRunning {
			return entry, true
		}
	}
	return queueEntry{}, false
}

func (m model) helpLine() string {
	switch m.mode {
	case modeAddFile:
		return "enter confirm • 1-9 quick path • esc cancel"
	case modePathName, modePathDir:
		return "enter confirm • esc cancel"
	case modePaths:
		return "↑/↓ move • a add • d delete • esc back"
	default:
		if m.running {
			return "x stop • q quit after stop"
		}
		return "↑/↓ move • space check • a add • d remove • s start • m model • l language • t timestamps • w keep audio • v verbose • p paths • q quit"
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
