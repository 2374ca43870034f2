package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/render"
	"github.com/mmcdole/sleeve/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StatePlaying ApplicationState = iota
	StateHelp
)

// tickInterval drives CurrentArt polling, geometry polling and the clock
const tickInterval = 100 * time.Millisecond

// artSource is the art service as seen by the view (consumer-defined interface)
type artSource interface {
	ResolveArt(ref domain.TrackRef)
	CurrentArt() domain.ArtResult
	Updates() <-chan struct{}
}

// trackQueue is the playback side (consumer-defined interface)
type trackQueue interface {
	Current() (domain.TrackRef, bool)
	Next() (domain.TrackRef, bool)
	Prev() (domain.TrackRef, bool)
	Len() int
	Index() int
}

// Options configures a Model
type Options struct {
	Art      artSource
	Queue    trackQueue
	Renderer domain.Renderer
	Geometry domain.GeometryProvider // optional, polled on every tick

	CoverEnabled      bool
	Ansi              bool
	VisualizerEnabled bool
	VisualizerHeight  int
	MetadataHeight    int

	Logger *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Collaborators
	Art      artSource
	Queue    trackQueue
	Renderer domain.Renderer
	Geometry domain.GeometryProvider

	// Dimensions
	Width  int
	Height int
	Fit    domain.SizeFit

	// Layout settings
	CoverEnabled      bool
	VisualizerEnabled bool
	VisualizerHeight  int
	MetadataHeight    int

	// Now playing
	Track   domain.TrackRef
	Info    TrackInfo
	Result  domain.ArtResult
	Started time.Time

	// Rendering
	RenderCtx render.Context
	memo      *render.Memo

	// UI components
	Spinner spinner.Model
	Help    help.Model

	// UI state
	StatusMsg string

	logger *slog.Logger
	now    func() time.Time
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	m := Model{
		State:             StatePlaying,
		Art:               opts.Art,
		Queue:             opts.Queue,
		Renderer:          opts.Renderer,
		Geometry:          opts.Geometry,
		CoverEnabled:      opts.CoverEnabled,
		VisualizerEnabled: opts.VisualizerEnabled,
		VisualizerHeight:  max(opts.VisualizerHeight, 0),
		MetadataHeight:    max(opts.MetadataHeight, 0),
		RenderCtx:         render.Context{Ansi: opts.Ansi},
		memo:              &render.Memo{},
		Spinner:           sp,
		Help:              h,
		logger:            logger,
		now:               time.Now,
	}

	if m.Queue != nil {
		if ref, ok := m.Queue.Current(); ok {
			m.Track = ref
			m.Info = FallbackInfo(ref.Path)
			m.Started = m.now()
		}
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		TickCmd(tickInterval),
		m.Spinner.Tick,
	}
	if m.Art != nil {
		cmds = append(cmds, WaitForArtCmd(m.Art.Updates()))
		if !m.Track.IsZero() {
			m.Art.ResolveArt(m.Track)
		}
	}
	if !m.Track.IsZero() {
		cmds = append(cmds, LoadMetadataCmd(m.Track.Path))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Dirty covers exactly one View after the Update that set it
	m.RenderCtx.Dirty = false

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.pollGeometry()
		m.refreshArt()
		return m, TickCmd(tickInterval)

	case ArtUpdatedMsg:
		m.refreshArt()
		if m.Art == nil {
			return m, nil
		}
		return m, WaitForArtCmd(m.Art.Updates())

	case TrackChangedMsg:
		return m, m.changeTrack(msg.Ref)

	case MetadataLoadedMsg:
		if msg.Info.Path == m.Track.Path {
			m.Info = msg.Info
		}
		return m, nil

	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// changeTrack makes ref the playing track and starts resolving its art
func (m *Model) changeTrack(ref domain.TrackRef) tea.Cmd {
	if ref.IsZero() || (ref.Path == m.Track.Path && ref.Generation == m.Track.Generation) {
		return nil
	}
	m.Track = ref
	m.Info = FallbackInfo(ref.Path)
	m.Started = m.now()
	m.Result = domain.ArtResult{}
	m.RenderCtx.Tint = nil

	m.logger.Debug("track changed", "track", ref.Path, "generation", ref.Generation)

	if m.Art != nil {
		m.Art.ResolveArt(ref)
		m.refreshArt()
	}
	return LoadMetadataCmd(ref.Path)
}

// refreshArt pulls the latest result without blocking
func (m *Model) refreshArt() {
	if m.Art == nil {
		return
	}
	r := m.Art.CurrentArt()

	// Never show a result for a track other than the playing one
	if r.Generation != m.Track.Generation || r.SourceTrack != m.Track.Path {
		return
	}
	if r.State == m.Result.State && r.ImagePath == m.Result.ImagePath && r.Generation == m.Result.Generation {
		return
	}

	m.Result = r
	m.RenderCtx.Tint = r.DominantColor
	m.RenderCtx.Dirty = true
}

// resize records the terminal size and recomputes the art fit
func (m *Model) resize(width, height int) {
	if width == m.Width && height == m.Height && m.Ready {
		return
	}
	m.Width = width
	m.Height = height
	m.Ready = true
	m.updateLayout()
}

// pollGeometry picks up size changes from the geometry provider
func (m *Model) pollGeometry() {
	if m.Geometry == nil {
		return
	}
	cols, rows, err := m.Geometry.Size()
	if err != nil {
		return
	}
	m.resize(cols, rows)
}

// elapsed returns the time since the current track started
func (m Model) elapsed() time.Duration {
	if m.Started.IsZero() {
		return 0
	}
	return m.now().Sub(m.Started)
}
