// Package imagefile decodes resolved artwork from disk.
package imagefile

import (
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Open decodes the image at path, applying any EXIF orientation so the
// picture is upright.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image %s: empty bounds", path)
	}
	return img, nil
}
