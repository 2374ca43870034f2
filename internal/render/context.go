package render

import "github.com/mmcdole/sleeve/internal/domain"

// Context is the render state owned by the view and passed to every draw.
// Dirty forces the next draw to bypass the memo.
type Context struct {
	Fit   domain.SizeFit
	Tint  *domain.RGB
	Ansi  bool
	Dirty bool
}

// Blit draws imagePath for a render context
type Blit func(r domain.Renderer, imagePath string, c Context) (string, error)

// Select picks the drawing primitive for the configured mode
func Select(ansi bool) Blit {
	if ansi {
		return blitAnsi
	}
	return blitBitmap
}

// Area is the drawable cell area of a fit after the layout insets
func Area(fit domain.SizeFit) (width, height int) {
	return max(fit.Width-1, 0), max(fit.Height-2, 0)
}

func blitBitmap(r domain.Renderer, imagePath string, c Context) (string, error) {
	w, h := Area(c.Fit)
	return r.BlitBitmapCentered(imagePath, w, h)
}

func blitAnsi(r domain.Renderer, imagePath string, c Context) (string, error) {
	w, h := Area(c.Fit)
	return r.BlitAnsiArt(imagePath, h, w, c.Tint)
}

// Memo remembers the last frame so redraw ticks do not decode again.
type Memo struct {
	key   memoKey
	frame string
	valid bool
}

type memoKey struct {
	path string
	fit  domain.SizeFit
	ansi bool
	tint domain.RGB
}

// Draw returns the memoized frame for (path, fit, mode, tint), drawing it
// when any of them changed or c.Dirty is set. Failed draws are not kept.
func (m *Memo) Draw(r domain.Renderer, imagePath string, c Context) (string, error) {
	key := memoKey{path: imagePath, fit: c.Fit, ansi: c.Ansi}
	if c.Tint != nil {
		key.tint = *c.Tint
	}
	if m.valid && !c.Dirty && key == m.key {
		return m.frame, nil
	}

	frame, err := Select(c.Ansi)(r, imagePath, c)
	if err != nil {
		m.valid = false
		return "", err
	}
	m.key, m.frame, m.valid = key, frame, true
	return frame, nil
}

// Reset drops the memoized frame
func (m *Memo) Reset() {
	m.valid = false
	m.frame = ""
}
