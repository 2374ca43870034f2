package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Command factories for async operations

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// WaitForArtCmd blocks until the art service signals an update.
// The model re-issues it after every ArtUpdatedMsg.
func WaitForArtCmd(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return ArtUpdatedMsg{}
	}
}

// LoadMetadataCmd reads the tags of a track off the main loop
func LoadMetadataCmd(path string) tea.Cmd {
	return func() tea.Msg {
		return MetadataLoadedMsg{Info: ReadTrackInfo(path)}
	}
}
