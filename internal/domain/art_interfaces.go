package domain

import "context"

// Extractor pulls an embedded picture out of an audio container into destPath.
// A nil error means destPath exists and is readable.
type Extractor interface {
	Extract(ctx context.Context, audioPath, destPath string) error
}

// GeometryProvider reports the terminal size in cells. It is polled, not pushed.
type GeometryProvider interface {
	Size() (columns, rows int, err error)
}

// Renderer turns a resolved image into terminal output.
// Implementations return the drawn frame rather than writing to a terminal.
type Renderer interface {
	BlitBitmapCentered(imagePath string, width, height int) (string, error)
	BlitAnsiArt(imagePath string, height, width int, tint *RGB) (string, error)
}
