package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/sleeve/internal/cache"
	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/extract"
	"github.com/mmcdole/sleeve/internal/scan"
)

// artCache is the part of the resolution cache the service needs (consumer-defined interface)
type artCache interface {
	Lookup(key string) (domain.CacheEntry, bool)
	Insert(key, imagePath string) (domain.CacheEntry, error)
}

// ArtDeps are the collaborators of an ArtService. Zero fields get defaults.
type ArtDeps struct {
	Cache     artCache         // default: in-memory cache of cache.DefaultCapacity
	Extractor domain.Extractor // nil disables embedded extraction

	FindAudioDir     func(ctx context.Context, root string) (string, error)     // default scan.FindAudioDir
	FindLargestImage func(ctx context.Context, root string) (scan.Image, error) // default scan.FindLargestImage
	DominantColor    func(imagePath string) (domain.RGB, error)                 // nil disables tinting

	LibraryRoot   string // last-resort sidecar search scope, empty to disable
	ScratchDir    string // extraction output directory, default extract.DefaultScratchDir()
	PreferSidecar bool   // search the directory without trying extraction
}

// ArtService resolves cover art for the playing track in the background and
// publishes results to the render loop.
//
// ResolveArt and CurrentArt never block on filesystem or process work.
type ArtService struct {
	deps   ArtDeps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	group  singleflight.Group

	mu     sync.Mutex
	latest domain.TrackRef
	last   domain.ArtResult
	closed bool

	pubMu   sync.Mutex
	results chan domain.ArtResult // single slot, newest wins
	updates chan struct{}

	scratchMu sync.Mutex
	scratch   map[string]struct{}
}

// NewArtService creates an art service
func NewArtService(deps ArtDeps, logger *slog.Logger) *ArtService {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(cache.DefaultCapacity)
	}
	if deps.FindAudioDir == nil {
		deps.FindAudioDir = scan.FindAudioDir
	}
	if deps.FindLargestImage == nil {
		deps.FindLargestImage = scan.FindLargestImage
	}
	if deps.ScratchDir == "" {
		deps.ScratchDir = extract.DefaultScratchDir()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ArtService{
		deps:    deps,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan domain.ArtResult, 1),
		updates: make(chan struct{}, 1),
		scratch: make(map[string]struct{}),
	}
}

// ResolveArt starts resolution for ref and returns immediately. A ref whose
// generation is not newer than the latest one seen is ignored.
func (s *ArtService) ResolveArt(ref domain.TrackRef) {
	s.mu.Lock()
	if s.closed || ref.Path == "" {
		s.mu.Unlock()
		return
	}
	if !s.latest.IsZero() && ref.Generation <= s.latest.Generation {
		s.mu.Unlock()
		s.logger.Debug("ignoring superseded track", "track", ref.Path, "generation", ref.Generation)
		return
	}
	s.latest = ref
	s.wg.Add(1)
	s.mu.Unlock()

	s.publish(domain.ArtResult{
		SourceTrack: ref.Path,
		Generation:  ref.Generation,
		State:       domain.StateResolving,
	})

	go func() {
		defer s.wg.Done()
		s.publish(s.resolve(s.ctx, ref))
	}()
}

// CurrentArt returns the result for the latest requested track. Until the
// worker for that track has finished it reports StateResolving; results of
// superseded tracks are never returned.
func (s *ArtService) CurrentArt() domain.ArtResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case r := <-s.results:
		s.last = r
	default:
	}

	if s.latest.IsZero() {
		return domain.ArtResult{}
	}
	if s.last.Generation != s.latest.Generation || s.last.SourceTrack != s.latest.Path {
		return domain.ArtResult{
			SourceTrack: s.latest.Path,
			Generation:  s.latest.Generation,
			State:       domain.StateResolving,
		}
	}
	return s.last
}

// Updates signals that a new result may be available from CurrentArt.
// Signals are coalesced.
func (s *ArtService) Updates() <-chan struct{} {
	return s.updates
}

// Close stops accepting work, waits for in-flight workers and removes the
// scratch files this service extracted.
func (s *ArtService) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.scratchMu.Lock()
	defer s.scratchMu.Unlock()
	var errs []error
	for p := range s.scratch {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	s.scratch = make(map[string]struct{})
	return errors.Join(errs...)
}

// publish replaces whatever unread result sits in the slot. Results for a
// superseded generation are dropped rather than displacing a newer one.
func (s *ArtService) publish(r domain.ArtResult) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	stale := r.Generation != s.latest.Generation || r.SourceTrack != s.latest.Path
	s.mu.Unlock()
	if stale {
		s.logger.Debug("dropping stale art result", "track", r.SourceTrack, "generation", r.Generation)
		return
	}

	select {
	case <-s.results:
	default:
	}
	s.results <- r

	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// resolution is the shared outcome of resolving one directory
type resolution struct {
	entry     domain.CacheEntry
	fromCache bool
}

func (s *ArtService) resolve(ctx context.Context, ref domain.TrackRef) domain.ArtResult {
	dir := filepath.Dir(ref.Path)
	result := domain.ArtResult{
		SourceTrack: ref.Path,
		Generation:  ref.Generation,
	}

	v, err, _ := s.group.Do(dir, func() (any, error) {
		return s.resolveDir(ctx, ref.Path, dir)
	})
	if err != nil {
		result.State = domain.StateNoArt
		result.Err = err
		s.logger.Info("no cover art", "track", ref.Path, "generation", ref.Generation,
			"kind", domain.Classify(err), "error", err)
		return result
	}

	res := v.(resolution)
	result.State = domain.StateReady
	result.ImagePath = res.entry.ImagePath
	result.FromCache = res.fromCache

	if s.deps.DominantColor != nil {
		if c, err := s.deps.DominantColor(res.entry.ImagePath); err == nil {
			result.DominantColor = &c
		} else {
			s.logger.Debug("dominant colour failed", "image", res.entry.ImagePath, "error", err)
		}
	}

	s.logger.Debug("cover art ready", "track", ref.Path, "image", result.ImagePath,
		"generation", ref.Generation, "cached", res.fromCache)
	return result
}

// resolveDir runs cache lookup, extraction and sidecar search for one
// directory, caching the first image found under dir.
func (s *ArtService) resolveDir(ctx context.Context, track, dir string) (resolution, error) {
	if entry, ok := s.deps.Cache.Lookup(dir); ok {
		return resolution{entry: entry, fromCache: true}, nil
	}

	var causes []error

	if s.deps.Extractor != nil && !s.deps.PreferSidecar {
		path, err := s.extract(ctx, track)
		if err == nil {
			return s.remember(dir, path), nil
		}
		causes = append(causes, err)
		s.logger.Debug("extraction failed, searching directory", "track", track,
			"kind", domain.Classify(err), "error", err)
	}

	path, err := s.findSidecar(ctx, dir)
	if err == nil {
		return s.remember(dir, path), nil
	}
	causes = append(causes, err)

	return resolution{}, errors.Join(causes...)
}

func (s *ArtService) extract(ctx context.Context, track string) (string, error) {
	if err := os.MkdirAll(s.deps.ScratchDir, 0755); err != nil {
		return "", fmt.Errorf("%w: scratch dir: %w", domain.ErrExtractorFailed, err)
	}
	dest := extract.ScratchPath(s.deps.ScratchDir)

	s.scratchMu.Lock()
	s.scratch[dest] = struct{}{}
	s.scratchMu.Unlock()

	if err := s.deps.Extractor.Extract(ctx, track, dest); err != nil {
		os.Remove(dest)
		s.scratchMu.Lock()
		delete(s.scratch, dest)
		s.scratchMu.Unlock()
		return "", err
	}
	return dest, nil
}

// findSidecar searches the track directory, then the library root
func (s *ArtService) findSidecar(ctx context.Context, dir string) (string, error) {
	img, err := s.deps.FindLargestImage(ctx, dir)
	if err == nil {
		return img.Path, nil
	}
	causes := []error{err}

	if s.deps.LibraryRoot != "" {
		audioDir, err := s.deps.FindAudioDir(ctx, s.deps.LibraryRoot)
		switch {
		case err != nil:
			causes = append(causes, err)
		case within(audioDir, dir):
			// Already searched
		default:
			img, err := s.deps.FindLargestImage(ctx, audioDir)
			if err == nil {
				s.logger.Debug("using library fallback art", "dir", dir, "image", img.Path)
				return img.Path, nil
			}
			causes = append(causes, err)
		}
	}

	if err := ctx.Err(); err != nil {
		causes = append(causes, err)
	}
	return "", fmt.Errorf("%w: %s: %w", domain.ErrNotFound, dir, errors.Join(causes...))
}

// remember caches path for dir. A cache failure still yields the image.
func (s *ArtService) remember(dir, path string) resolution {
	entry, err := s.deps.Cache.Insert(dir, path)
	if err != nil {
		s.logger.Warn("failed to cache art", "dir", dir, "image", path, "error", err)
		if entry.ImagePath == "" {
			entry = domain.CacheEntry{DirectoryKey: dir, ImagePath: path}
		}
	}
	return resolution{entry: entry}
}

// within reports whether path is dir or lies below it
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
