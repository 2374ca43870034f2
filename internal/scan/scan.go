package scan

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/pathutil"
)

// Image is a candidate sidecar image
type Image struct {
	Path string
	Size int64
}

// FindAudioDir returns the first directory below root, in featured-first
// depth-first order, that directly contains an audio file. root itself is a
// candidate. It returns domain.ErrNotFound when no audio file exists.
func FindAudioDir(ctx context.Context, root string) (string, error) {
	for entry, err := range Walk(ctx, root, WalkOptions{Compare: CompareFeaturedFirst}) {
		if err != nil {
			return "", err
		}
		if pathutil.IsAudioFile(entry.Name) {
			return entry.Dir, nil
		}
	}
	return "", fmt.Errorf("no audio below %s: %w", root, domain.ErrNotFound)
}

// FindLargestImage returns the largest recognised image file below root.
// Ties keep the first file seen. Entries that cannot be stat'ed are skipped.
// A tree without images yields domain.ErrNotFound; an unreadable root yields
// an error that matches both domain.ErrNotFound and domain.ErrRootUnreadable.
func FindLargestImage(ctx context.Context, root string) (Image, error) {
	var best Image
	for entry, err := range Walk(ctx, root, WalkOptions{}) {
		if err != nil {
			if errors.Is(err, domain.ErrRootUnreadable) {
				return Image{}, errors.Join(domain.ErrNotFound, err)
			}
			return Image{}, err
		}
		if !pathutil.IsImageFile(entry.Name) {
			continue
		}
		info, err := os.Stat(entry.Path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if info.Size() > best.Size {
			best = Image{Path: entry.Path, Size: info.Size()}
		}
	}
	if best.Path == "" {
		return Image{}, fmt.Errorf("no images below %s: %w", root, domain.ErrNotFound)
	}
	return best, nil
}
