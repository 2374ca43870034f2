package tui

import "github.com/mmcdole/sleeve/internal/fit"

// Rows below the art that are not metadata or visualizer
const (
	TimeRowHeight = fit.TimeRowHeight
	MarginHeight  = fit.HeightMargin
)

// reservedVisualizerRows is the visualizer height the layout keeps free
func (m Model) reservedVisualizerRows() int {
	if !m.VisualizerEnabled {
		return 0
	}
	return m.VisualizerHeight
}

// updateLayout recomputes the art size for the current terminal
func (m *Model) updateLayout() {
	f := fit.ComputeFit(m.Width, m.Height, m.reservedVisualizerRows(), m.MetadataHeight)
	if f != m.Fit {
		m.Fit = f
		m.RenderCtx.Fit = f
		m.RenderCtx.Dirty = true
	}
}
