package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/sleeve/internal/cache"
	"github.com/mmcdole/sleeve/internal/config"
	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/extract"
	"github.com/mmcdole/sleeve/internal/fit"
	"github.com/mmcdole/sleeve/internal/log"
	"github.com/mmcdole/sleeve/internal/palette"
	"github.com/mmcdole/sleeve/internal/pathutil"
	"github.com/mmcdole/sleeve/internal/playback"
	"github.com/mmcdole/sleeve/internal/render"
	"github.com/mmcdole/sleeve/internal/service"
	"github.com/mmcdole/sleeve/internal/store"
	"github.com/mmcdole/sleeve/internal/termsize"
	"github.com/mmcdole/sleeve/internal/tui"
	"github.com/mmcdole/sleeve/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// errNoArt ends a -resolve run that found nothing
var errNoArt = errors.New("no artwork found")

type flags struct {
	resolve    string
	draw       bool
	clearCache bool
}

func main() {
	var showVersion bool
	var f flags
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&f.resolve, "resolve", "", "resolve artwork for one track, print the image path and exit")
	flag.BoolVar(&f.draw, "render", false, "with -resolve, draw the artwork to stdout")
	flag.BoolVar(&f.clearCache, "clear-cache", false, "remove the persistent art index and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("sleeve %s\n", Version)
		return
	}

	if err := run(f, flag.Args()); err != nil {
		if errors.Is(err, errNoArt) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting sleeve", "version", Version)

	if f.clearCache {
		return clearArtIndex(cfg)
	}

	if !styles.Apply(cfg.UI.Theme) {
		logger.Warn("unknown theme, using default", "theme", cfg.UI.Theme)
	}

	svc, closeDeps, err := newArtService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDeps()
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if f.resolve != "" {
		return resolveOnce(ctx, cfg, svc, f.resolve, f.draw)
	}
	return runTUI(ctx, cfg, svc, args, logger)
}

// newArtService wires the cache, extractor and colour analysis into an
// ArtService. The returned func releases the art index.
func newArtService(cfg *config.Config, logger *slog.Logger) (*service.ArtService, func(), error) {
	home, _ := os.UserHomeDir()

	st, err := store.NewArtStore(pathutil.ExpandHome(cfg.CacheDir(), home))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open art index: %w", err)
	}
	closeStore := func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close art index", "error", err)
		}
	}

	deps := service.ArtDeps{
		LibraryRoot:   pathutil.ExpandHome(cfg.Library.Path, home),
		ScratchDir:    pathutil.ExpandHome(cfg.Art.ScratchDir, home),
		PreferSidecar: cfg.Art.PreferSidecar,
	}
	if st.Persistent() {
		deps.Cache = cache.New(cfg.Cache.Capacity, cache.WithBacking(st))
		logger.Info("persistent art index enabled", "dir", cfg.CacheDir())
	} else {
		deps.Cache = cache.New(cfg.Cache.Capacity)
	}

	if cfg.Art.Enabled {
		ex, err := extract.New(cfg.Art.Extractor, cfg.Art.FFmpegPath, cfg.Art.ExtractTimeout, logger)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		deps.Extractor = ex
	}
	if cfg.Art.DominantColor {
		deps.DominantColor = palette.DominantColor
	}

	return service.NewArtService(deps, logger), closeStore, nil
}

// clearArtIndex empties the configured bolt index, or removes the default
// cache directory when persistence is off
func clearArtIndex(cfg *config.Config) error {
	dir := cfg.CacheDir()
	if dir == "" {
		if err := config.ClearCache(); err != nil {
			return err
		}
		fmt.Printf("Cleared %s\n", config.GetCachePath())
		return nil
	}

	home, _ := os.UserHomeDir()
	st, err := store.NewArtStore(pathutil.ExpandHome(dir, home))
	if err != nil {
		return fmt.Errorf("failed to open art index: %w", err)
	}
	defer st.Close()

	entries, err := st.All()
	if err != nil {
		return err
	}
	if err := st.Clear(); err != nil {
		return fmt.Errorf("failed to clear art index: %w", err)
	}
	fmt.Printf("Cleared %d entries from %s\n", len(entries), dir)
	return nil
}

func runTUI(ctx context.Context, cfg *config.Config, svc *service.ArtService, args []string, logger *slog.Logger) error {
	if len(args) == 0 {
		home, _ := os.UserHomeDir()
		args = []string{pathutil.ExpandHome(cfg.Library.Path, home)}
	}

	tracks, err := playback.Collect(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to collect tracks: %w", err)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no audio files found in %v", args)
	}
	logger.Info("queue ready", "tracks", len(tracks))

	geometry := termsize.Stdout()
	if !geometry.IsTerminal() {
		return errors.New("stdout is not a terminal, use -resolve for scripted use")
	}

	model := tui.NewModel(tui.Options{
		Art:               svc,
		Queue:             playback.NewQueue(tracks),
		Renderer:          render.NewBlitter(),
		Geometry:          geometry,
		CoverEnabled:      cfg.Art.Enabled,
		Ansi:              cfg.UI.Ansi,
		VisualizerEnabled: cfg.UI.VisualizerEnabled,
		VisualizerHeight:  cfg.UI.VisualizerHeight,
		MetadataHeight:    cfg.UI.MetadataHeight,
		Logger:            logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// resolveOnce resolves one track with a spinner on stderr, then prints the
// image path or draws it
func resolveOnce(ctx context.Context, cfg *config.Config, svc *service.ArtService, track string, draw bool) error {
	if !cfg.Art.Enabled {
		return errors.New("artwork is disabled (art.enabled: false)")
	}
	abs, err := filepath.Abs(track)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}

	svc.ResolveArt(domain.TrackRef{Path: abs, Generation: 1})

	res, err := waitWithSpinner(ctx, svc, cfg.Art.ExtractTimeout+30*time.Second)
	if err != nil {
		return err
	}
	if !res.HasImage() {
		if res.Err != nil {
			slog.Debug("no art", "track", abs, "error", res.Err)
		}
		return fmt.Errorf("%w for %s", errNoArt, abs)
	}

	if !draw {
		fmt.Println(res.ImagePath)
		if extract.IsScratchFile(res.ImagePath) {
			fmt.Fprintln(os.Stderr, "(embedded picture, removed on exit)")
		}
		return nil
	}

	cols, rows, err := termsize.Stdout().Size()
	if err != nil {
		slog.Debug("terminal size unavailable, using fallback", "error", err)
	}
	c := render.Context{
		Fit:  fit.ComputeFit(cols, rows, cfg.ReservedVisualizerRows(), cfg.UI.MetadataHeight),
		Tint: res.DominantColor,
		Ansi: cfg.UI.Ansi,
	}
	if c.Fit.Empty() {
		return errors.New("terminal too small to draw artwork")
	}
	frame, err := render.Select(c.Ansi)(render.NewBlitter(), res.ImagePath, c)
	if err != nil {
		return fmt.Errorf("failed to draw %s: %w", res.ImagePath, err)
	}
	fmt.Println(frame)
	return nil
}

// waitWithSpinner polls CurrentArt until the resolution settles
func waitWithSpinner(ctx context.Context, svc *service.ArtService, timeout time.Duration) (domain.ArtResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	frame := 0
	fmt.Fprintf(os.Stderr, "\r%s Resolving artwork...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		if res := svc.CurrentArt(); res.State != domain.StateResolving && res.State != domain.StateIdle {
			fmt.Fprint(os.Stderr, clearSpinnerLine)
			return res, nil
		}

		select {
		case <-svc.Updates():
		case <-ticker.C:
			frame++
			fmt.Fprintf(os.Stderr, "\r%s Resolving artwork...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
		case <-ctx.Done():
			fmt.Fprint(os.Stderr, clearSpinnerLine)
			return domain.ArtResult{}, fmt.Errorf("resolution timed out")
		}
	}
}
