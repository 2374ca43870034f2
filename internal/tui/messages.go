package tui

import "github.com/mmcdole/sleeve/internal/domain"

// Message types for the TUI

// TickMsg is a general tick message for animations and the clock
type TickMsg struct{}

// ArtUpdatedMsg signals that the art service published a new result
type ArtUpdatedMsg struct{}

// TrackChangedMsg signals that playback moved to another track
type TrackChangedMsg struct {
	Ref domain.TrackRef
}

// MetadataLoadedMsg carries the tags of a track
type MetadataLoadedMsg struct {
	Info TrackInfo
}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}
