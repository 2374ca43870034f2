package tui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// TrackInfo is the metadata shown under the cover
type TrackInfo struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Year   int
}

// FallbackInfo names a track after its file
func FallbackInfo(path string) TrackInfo {
	base := filepath.Base(path)
	return TrackInfo{
		Path:  path,
		Title: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// ReadTrackInfo reads title, artist and album tags, falling back to the
// file name when the file has no readable tags.
func ReadTrackInfo(path string) TrackInfo {
	info := FallbackInfo(path)

	f, err := os.Open(path)
	if err != nil {
		return info
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return info
	}

	if t := strings.TrimSpace(m.Title()); t != "" {
		info.Title = t
	}
	info.Artist = strings.TrimSpace(m.Artist())
	if info.Artist == "" {
		info.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	info.Album = strings.TrimSpace(m.Album())
	info.Year = m.Year()
	return info
}
