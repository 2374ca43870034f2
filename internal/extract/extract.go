// Package extract pulls embedded artwork out of audio files into scratch
// image files, either through an external ffmpeg process or in-process from
// the file's tags.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmcdole/sleeve/internal/domain"
)

// Extractor modes accepted by New
const (
	ModeAuto   = "auto"
	ModeFFmpeg = "ffmpeg"
	ModeTag    = "tag"
)

// scratchPrefix marks files created by this package in the scratch directory
const scratchPrefix = "sleeve-"

// New builds the extractor for mode. Auto prefers ffmpeg when it is on PATH
// and falls back to reading tags.
func New(mode, ffmpegPath string, timeout time.Duration, logger *slog.Logger) (domain.Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(mode) {
	case ModeFFmpeg:
		return NewFFmpegExtractor(ffmpegPath, timeout, logger), nil
	case ModeTag:
		return NewTagExtractor(logger), nil
	case ModeAuto, "":
		ff := NewFFmpegExtractor(ffmpegPath, timeout, logger)
		if ff.Available() {
			logger.Debug("using ffmpeg extractor with tag fallback", "binary", ff.binary)
			return NewChain(ff, NewTagExtractor(logger)), nil
		}
		logger.Info("ffmpeg not found, reading embedded art from tags", "binary", ff.binary)
		return NewTagExtractor(logger), nil
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", mode)
	}
}

// Chain tries each extractor in turn until one succeeds
type Chain struct {
	extractors []domain.Extractor
}

// NewChain creates a chain over extractors, tried in order
func NewChain(extractors ...domain.Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// Extract returns nil on the first success. When every extractor fails, a
// "no embedded art" answer from any of them wins over process failures.
func (c *Chain) Extract(ctx context.Context, audioPath, destPath string) error {
	if len(c.extractors) == 0 {
		return fmt.Errorf("%s: %w", audioPath, domain.ErrNoEmbeddedArt)
	}

	var noArt, failed error
	for _, e := range c.extractors {
		err := e.Extract(ctx, audioPath, destPath)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if errors.Is(err, domain.ErrNoEmbeddedArt) {
			if noArt == nil {
				noArt = err
			}
		} else if failed == nil {
			failed = err
		}
	}
	if noArt != nil {
		return noArt
	}
	return failed
}

// ScratchPath returns a fresh, unused file name for an extracted picture
func ScratchPath(dir string) string {
	if dir == "" {
		dir = DefaultScratchDir()
	}
	return filepath.Join(dir, scratchPrefix+uuid.NewString()+".jpg")
}

// DefaultScratchDir is where extracted pictures go unless configured
func DefaultScratchDir() string {
	return filepath.Join(os.TempDir(), "sleeve")
}

// IsScratchFile reports whether path was named by ScratchPath
func IsScratchFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), scratchPrefix)
}
