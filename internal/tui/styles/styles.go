package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Amber     = lipgloss.Color("#E5A00D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Red       = lipgloss.Color("#EF4444")
)

// Accent is the theme colour used for highlights
var Accent lipgloss.TerminalColor = Amber

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Accent)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Accent)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Accent)
)

// Themes maps ui.theme names onto accent colours
var Themes = map[string]lipgloss.TerminalColor{
	"default": Amber,
	"mono":    White,
	"none":    lipgloss.NoColor{},
}

// Apply switches the accent colour. Unknown names keep the default and
// report false.
func Apply(theme string) bool {
	c, ok := Themes[theme]
	if !ok {
		c = Amber
	}
	Accent = c
	AccentStyle = AccentStyle.Foreground(c)
	ModalStyle = ModalStyle.BorderForeground(c)
	HelpKeyStyle = HelpKeyStyle.Foreground(c)
	ProgressFullStyle = ProgressFullStyle.Foreground(c)
	SpinnerStyle = SpinnerStyle.Foreground(c)
	return ok
}

// ProgressBar renders a bar of width cells filled to ratio
func ProgressBar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio * float64(width))

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += ProgressFullStyle.Render("█")
		} else {
			bar += ProgressEmptyStyle.Render("░")
		}
	}
	return bar
}

// SpinnerFrames are the braille frames used outside of the TUI
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
