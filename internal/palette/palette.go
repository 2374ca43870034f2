// Package palette picks a tint colour for a piece of artwork.
package palette

import (
	"image"
	"image/color"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/disintegration/imaging"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/imagefile"
)

// clusters is the k used for k-means; the largest cluster wins
const clusters = 3

// DominantColor returns the most prominent colour of the image at path.
func DominantColor(path string) (domain.RGB, error) {
	img, err := imagefile.Open(path)
	if err != nil {
		return domain.RGB{}, err
	}
	return Dominant(img), nil
}

// Dominant returns the colour of the largest k-means cluster, falling back
// to the mean colour when clustering is not possible (tiny or flat images).
func Dominant(img image.Image) domain.RGB {
	k := distinctColors(img, clusters)
	if k < 2 {
		return Average(img)
	}
	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping, prominentcolor.DefaultSize, nil)
	if err == nil && len(items) > 0 {
		best := items[0]
		for _, it := range items[1:] {
			if it.Cnt > best.Cnt {
				best = it
			}
		}
		return domain.RGB{R: uint8(best.Color.R), G: uint8(best.Color.G), B: uint8(best.Color.B)}
	}
	return Average(img)
}

// Average returns the mean colour of img
func Average(img image.Image) domain.RGB {
	px := imaging.Resize(img, 1, 1, imaging.Box)
	c := color.NRGBAModel.Convert(px.At(0, 0)).(color.NRGBA)
	return domain.RGB{R: c.R, G: c.G, B: c.B}
}

// distinctColors counts the distinct opaque colours in img, stopping at limit
func distinctColors(img image.Image, limit int) int {
	seen := make(map[color.NRGBA]struct{}, limit)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			seen[c] = struct{}{}
			if len(seen) >= limit {
				return limit
			}
		}
	}
	return len(seen)
}
