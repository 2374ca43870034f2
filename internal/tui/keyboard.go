package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	if m.State == StateHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StatePlaying
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Next):
		if m.Queue == nil {
			return m, nil
		}
		if ref, ok := m.Queue.Next(); ok {
			return m, m.changeTrack(ref)
		}
		return m, m.setStatus("End of queue")

	case key.Matches(msg, Keys.Prev):
		if m.Queue == nil {
			return m, nil
		}
		if ref, ok := m.Queue.Prev(); ok {
			return m, m.changeTrack(ref)
		}
		return m, m.setStatus("Start of queue")

	case key.Matches(msg, Keys.ToggleAnsi):
		m.RenderCtx.Ansi = !m.RenderCtx.Ansi
		m.RenderCtx.Dirty = true
		if m.RenderCtx.Ansi {
			return m, m.setStatus("ANSI art")
		}
		return m, m.setStatus("Bitmap art")

	case key.Matches(msg, Keys.ToggleCover):
		m.CoverEnabled = !m.CoverEnabled
		m.RenderCtx.Dirty = true
		if m.CoverEnabled {
			return m, m.setStatus("Cover on")
		}
		return m, m.setStatus("Cover off")

	case key.Matches(msg, Keys.Refresh):
		m.memo.Reset()
		m.RenderCtx.Dirty = true
		return m, nil
	}

	return m, nil
}

// setStatus shows msg in the footer for a couple of seconds
func (m *Model) setStatus(msg string) tea.Cmd {
	m.StatusMsg = msg
	return ClearStatusCmd(2 * time.Second)
}
