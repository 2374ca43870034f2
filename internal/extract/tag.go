package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dhowden/tag"

	"github.com/mmcdole/sleeve/internal/domain"
)

// TagExtractor reads the embedded picture in-process from the file's tags.
// It covers machines without ffmpeg installed.
type TagExtractor struct {
	logger *slog.Logger
}

// NewTagExtractor creates an in-process extractor
func NewTagExtractor(logger *slog.Logger) *TagExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagExtractor{logger: logger}
}

// Extract writes the first embedded picture of audioPath to destPath
func (e *TagExtractor) Extract(ctx context.Context, audioPath, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("%s: %w", audioPath, domain.ErrNoEmbeddedArt)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		e.logger.Debug("tag read failed", "track", audioPath, "error", err)
		return fmt.Errorf("%s: %w", audioPath, domain.ErrNoEmbeddedArt)
	}

	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return fmt.Errorf("%s: %w", audioPath, domain.ErrNoEmbeddedArt)
	}

	if err := os.WriteFile(destPath, pic.Data, 0o644); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	if err := verifyReadable(destPath); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("%s: %w", audioPath, domain.ErrNoEmbeddedArt)
	}

	e.logger.Debug("extracted tag picture", "track", audioPath, "image", destPath,
		"mime", pic.MIMEType, "bytes", len(pic.Data))
	return nil
}
