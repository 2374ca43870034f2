// Package fit derives the cover art render size from the terminal geometry.
package fit

import "github.com/mmcdole/sleeve/internal/domain"

// Rows reserved below the art besides the visualizer and metadata block
const (
	TimeRowHeight = 1
	HeightMargin  = 2
)

// ComputeFit returns the largest art size that leaves room for the
// visualizer, the metadata rows, the time row and a margin.
//
// Art is drawn two cells wide per cell tall, so the candidate width is twice
// the free height; when that overflows the terminal the width is clamped and
// the height recomputed from it. The width is always even because the
// renderer consumes two cells per pixel column.
func ComputeFit(terminalWidth, terminalHeight, visualizerHeight, metadataHeight int) domain.SizeFit {
	reserved := visualizerHeight + metadataHeight + TimeRowHeight + HeightMargin

	height := terminalHeight - reserved
	if height <= 0 || terminalWidth <= 0 {
		return domain.SizeFit{}
	}

	width := height * 2
	if width > terminalWidth {
		width = terminalWidth
		height = width / 2
	}
	if width%2 == 1 {
		width--
	}
	if width <= 0 || height <= 0 {
		return domain.SizeFit{}
	}

	return domain.SizeFit{Width: width, Height: height}
}
