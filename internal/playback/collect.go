package playback

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/sleeve/internal/pathutil"
	"github.com/mmcdole/sleeve/internal/scan"
)

// collectWorkers bounds concurrent directory walks
const collectWorkers = 4

// Collect expands paths into a track list. Audio files are taken as given;
// directories contribute every audio file below them in walk order.
// Results keep the order of paths.
func Collect(ctx context.Context, paths ...string) ([]string, error) {
	parts := make([][]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(collectWorkers)
	for i, p := range paths {
		g.Go(func() error {
			tracks, err := expand(ctx, p)
			if err != nil {
				return err
			}
			parts[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tracks []string
	for _, part := range parts {
		tracks = append(tracks, part...)
	}
	return tracks, nil
}

func expand(ctx context.Context, path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", path, err)
	}
	if !info.IsDir() {
		if !pathutil.IsAudioFile(info.Name()) {
			return nil, nil
		}
		return []string{path}, nil
	}

	var tracks []string
	for e, err := range scan.Walk(ctx, path, scan.WalkOptions{Compare: scan.CompareFeaturedFirst}) {
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", path, err)
		}
		if pathutil.IsAudioFile(e.Name) {
			tracks = append(tracks, e.Path)
		}
	}
	return tracks, nil
}
