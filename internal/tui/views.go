package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/render"
	"github.com/mmcdole/sleeve/internal/tui/styles"
)

// View renders the now playing screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var rows []string
	if m.CoverEnabled && !m.Fit.Empty() {
		rows = append(rows, "", m.renderArt(), "")
	}
	rows = append(rows, m.renderMetadata()...)
	for range m.reservedVisualizerRows() {
		rows = append(rows, "")
	}
	rows = append(rows, m.renderTimeRow())

	return strings.Join(rows, "\n")
}

// renderArt draws the cover, or a placeholder while resolving or without art
func (m Model) renderArt() string {
	w, h := render.Area(m.Fit)
	if w <= 0 || h <= 0 {
		return ""
	}

	var block string
	switch {
	case m.Result.HasImage() && m.Renderer != nil:
		frame, err := m.memo.Draw(m.Renderer, m.Result.ImagePath, m.RenderCtx)
		if err != nil {
			m.logger.Debug("failed to draw cover", "image", m.Result.ImagePath, "error", err)
			block = render.Placeholder(w, h)
		} else {
			block = frame
		}
	case m.Result.State == domain.StateResolving || (m.Result.State == domain.StateIdle && !m.Track.IsZero()):
		block = render.PlaceholderLabel(w, h, m.Spinner.View())
	default:
		block = render.Placeholder(w, h)
	}

	return lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, block)
}

// renderMetadata returns exactly MetadataHeight centred rows
func (m Model) renderMetadata() []string {
	if m.MetadataHeight == 0 {
		return nil
	}

	var lines []string
	if m.Track.IsZero() {
		lines = append(lines, styles.DimStyle.Render("Nothing playing"))
	} else {
		lines = append(lines, styles.TitleStyle.Render(m.Info.Title))
		if m.Info.Artist != "" {
			lines = append(lines, styles.AccentStyle.Render(m.Info.Artist))
		}
		if album := m.albumLine(); album != "" {
			lines = append(lines, styles.SubtitleStyle.Render(album))
		}
		if m.Queue != nil && m.Queue.Len() > 0 {
			lines = append(lines, m.queueLine())
		}
	}

	clip := lipgloss.NewStyle().MaxWidth(m.Width)
	out := make([]string, m.MetadataHeight)
	for i := range out {
		if i < len(lines) {
			out[i] = lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, clip.Render(lines[i]))
		}
	}
	return out
}

// queueLine shows the position in the queue as a count and a bar
func (m Model) queueLine() string {
	pos, n := m.Queue.Index()+1, m.Queue.Len()
	count := styles.DimStyle.Render(fmt.Sprintf("%d/%d", pos, n))
	width := min(queueBarWidth, m.Width-lipgloss.Width(count)-1)
	if width <= 0 {
		return count
	}
	return styles.ProgressBar(float64(pos)/float64(n), width) + " " + count
}

func (m Model) albumLine() string {
	switch {
	case m.Info.Album == "":
		return ""
	case m.Info.Year > 0:
		return m.Info.Album + " (" + strconv.Itoa(m.Info.Year) + ")"
	default:
		return m.Info.Album
	}
}

// renderTimeRow shows the elapsed time and either the status or key help
func (m Model) renderTimeRow() string {
	left := styles.SubtitleStyle.Render(formatElapsed(m.elapsed()))

	right := m.Help.ShortHelpView(Keys.ShortHelp())
	if m.StatusMsg != "" {
		right = styles.AccentStyle.Render(m.StatusMsg)
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	body := styles.ModalTitleStyle.Render("Keys") + "\n" +
		m.Help.FullHelpView(Keys.FullHelp()) + "\n\n" +
		styles.DimStyle.Render("Press ? or esc to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}

const queueBarWidth = 16

// formatElapsed renders d as m:ss, or h:mm:ss past an hour
func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}
