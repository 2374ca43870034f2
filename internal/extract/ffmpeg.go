package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/pathutil"
)

// DefaultTimeout bounds a single ffmpeg run
const DefaultTimeout = 5 * time.Second

// stderrTail is how much ffmpeg diagnostics we keep for the log
const stderrTail = 2048

// FFmpegExtractor copies the attached picture stream out of an audio file
// by running ffmpeg as a child process.
type FFmpegExtractor struct {
	binary  string        // ffmpeg executable name or path
	timeout time.Duration // hard limit per run; the process is killed after it
	logger  *slog.Logger
}

// NewFFmpegExtractor creates an extractor that runs binary (default "ffmpeg")
func NewFFmpegExtractor(binary string, timeout time.Duration, logger *slog.Logger) *FFmpegExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if binary == "" {
		binary = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FFmpegExtractor{binary: binary, timeout: timeout, logger: logger}
}

// Available reports whether the configured binary can be found
func (e *FFmpegExtractor) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Args returns the argument vector for one extraction.
// The input goes through ffmpeg's file: protocol so names that look like
// options or URLs are read as plain files.
func (e *FFmpegExtractor) Args(audioPath, destPath string) []string {
	return []string{
		"-nostdin",
		"-loglevel", "error",
		"-y",
		"-i", "file:" + audioPath,
		"-an",
		"-vcodec", "copy",
		destPath,
	}
}

// Extract runs ffmpeg and verifies that destPath was produced.
// The exit status is only used to tell a failed process from a track
// without art; a readable destination counts as success either way.
func (e *FFmpegExtractor) Extract(ctx context.Context, audioPath, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := e.Args(audioPath, destPath)
	stderr := &tailBuffer{max: stderrTail}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	e.logger.Debug("running extractor", "command", pathutil.CommandLine(e.binary, args...))

	start := time.Now()
	runErr := cmd.Run()

	// A killed process may have left a truncated picture
	if ctx.Err() != nil {
		os.Remove(destPath)
		e.logger.Warn("extractor timed out", "track", audioPath, "timeout", e.timeout)
		return fmt.Errorf("%w: %s: %w", domain.ErrExtractorFailed, e.binary, ctx.Err())
	}

	if err := verifyReadable(destPath); err == nil {
		if runErr != nil {
			e.logger.Debug("extractor exited abnormally but produced output",
				"track", audioPath, "error", runErr)
		}
		e.logger.Debug("extracted embedded art", "track", audioPath, "image", destPath,
			"elapsed", time.Since(start))
		return nil
	}

	// Never leave a partial picture behind for the caller to render
	os.Remove(destPath)

	if runErr != nil && !isExitError(runErr) {
		return fmt.Errorf("%w: %s: %w", domain.ErrExtractorFailed, e.binary, runErr)
	}

	e.logger.Debug("no embedded art", "track", audioPath, "stderr", stderr.String())
	return fmt.Errorf("%s: %w", audioPath, domain.ErrNoEmbeddedArt)
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// verifyReadable checks that path is a non-empty regular file we can open
func verifyReadable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
