// Package render draws resolved artwork as terminal text.
//
// Output is returned as strings so the view can compose it; nothing here
// writes to the terminal.
package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/imagefile"
)

// Ramp maps luminance onto glyphs, darkest first
const Ramp = " .:-=+*#%@"

// Blitter draws images with truecolor half blocks or tinted character art.
type Blitter struct{}

// NewBlitter creates a Blitter
func NewBlitter() *Blitter {
	return &Blitter{}
}

// BlitBitmapCentered draws the image at path into width x height cells
// using upper half blocks, two pixels per cell, centred in the area.
func (b *Blitter) BlitBitmapCentered(imagePath string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", nil
	}
	img, err := imagefile.Open(imagePath)
	if err != nil {
		return "", err
	}

	src := img.Bounds()
	pw, ph := fitBox(src.Dx(), src.Dy(), width, height*2)
	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	rows := (ph + 1) / 2
	lines := make([]string, 0, rows)
	var sb strings.Builder
	for y := 0; y < ph; y += 2 {
		sb.Reset()
		for x := 0; x < pw; x++ {
			top := dst.RGBAAt(x, y)
			bot := top
			if y+1 < ph {
				bot = dst.RGBAAt(x, y+1)
			}
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		sb.WriteString("\x1b[0m")
		lines = append(lines, sb.String())
	}

	return center(lines, pw, width, height), nil
}

// BlitAnsiArt draws the image at path as luminance glyphs in the tint
// colour, or the terminal's default colour when tint is nil.
func (b *Blitter) BlitAnsiArt(imagePath string, height, width int, tint *domain.RGB) (string, error) {
	if width <= 0 || height <= 0 {
		return "", nil
	}
	img, err := imagefile.Open(imagePath)
	if err != nil {
		return "", err
	}

	// A cell is about twice as tall as it is wide
	src := img.Bounds()
	cols, ph := fitBox(src.Dx(), src.Dy(), width, height*2)
	rows := max(ph/2, 1)

	gray := image.NewGray(image.Rect(0, 0, cols, rows))
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, src, draw.Src, nil)

	style := lipgloss.NewStyle()
	if tint != nil {
		style = style.Foreground(lipgloss.Color(tint.Hex()))
	}

	lines := make([]string, rows)
	buf := make([]byte, cols)
	for y := range rows {
		for x := range cols {
			buf[x] = glyph(gray.GrayAt(x, y))
		}
		lines[y] = style.Render(string(buf))
	}

	return center(lines, cols, width, height), nil
}

func glyph(c color.Gray) byte {
	return Ramp[int(c.Y)*(len(Ramp)-1)/255]
}

// fitBox scales w x h to fit inside maxW x maxH keeping the aspect ratio.
// Both results are at least one.
func fitBox(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return max(maxW, 1), max(maxH, 1)
	}
	sw, sh := maxW, maxW*h/w
	if sh > maxH {
		sw, sh = maxH*w/h, maxH
	}
	return max(min(sw, maxW), 1), max(min(sh, maxH), 1)
}

// center pads lines of the given visible width into a width x height block
func center(lines []string, lineWidth, width, height int) string {
	left := (width - lineWidth) / 2
	right := width - lineWidth - left
	top := (height - len(lines)) / 2
	blank := strings.Repeat(" ", width)

	out := make([]string, 0, height)
	for range top {
		out = append(out, blank)
	}
	for _, l := range lines {
		out = append(out, strings.Repeat(" ", left)+l+strings.Repeat(" ", right))
	}
	for len(out) < height {
		out = append(out, blank)
	}
	return strings.Join(out, "\n")
}
