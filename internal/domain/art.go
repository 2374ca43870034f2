package domain

import (
	"fmt"
	"time"
)

// TrackRef identifies the currently playing item.
// Generation is incremented by the playback side on every track change.
type TrackRef struct {
	Path       string
	Generation uint64
}

// IsZero reports whether no track has been referenced yet
func (t TrackRef) IsZero() bool {
	return t.Path == "" && t.Generation == 0
}

// RGB is a 24-bit colour
type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ArtState is the resolution state for one generation
type ArtState int

const (
	StateIdle ArtState = iota
	StateResolving
	StateReady
	StateNoArt
)

func (s ArtState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateReady:
		return "ready"
	case StateNoArt:
		return "no_art"
	default:
		return fmt.Sprintf("ArtState(%d)", int(s))
	}
}

// ArtResult is what the coordinator publishes to the render path.
// The zero value is an Idle result with no image.
type ArtResult struct {
	SourceTrack   string
	ImagePath     string // empty means no image
	DominantColor *RGB
	Generation    uint64
	State         ArtState
	FromCache     bool
	Err           error // diagnostic cause for NoArt, never shown to the user
}

// HasImage reports whether the result carries a renderable image
func (r ArtResult) HasImage() bool {
	return r.State == StateReady && r.ImagePath != ""
}

// CacheEntry maps a searched directory to its resolved image.
// Entries are immutable once inserted.
type CacheEntry struct {
	DirectoryKey string    `json:"directory_key"`
	ImagePath    string    `json:"image_path"`
	SizeBytes    int64     `json:"size_bytes"`
	Timestamp    time.Time `json:"timestamp"`
}

// SizeFit is a render target in terminal character cells
type SizeFit struct {
	Width  int
	Height int
}

// Empty reports whether there is no room to draw anything
func (f SizeFit) Empty() bool {
	return f.Width <= 0 || f.Height <= 0
}
