package palette

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -8 && d <= 8
}

func TestAverage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{200, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 0, 100, 255})

	got := Average(img)
	if !near(got.R, 100) || got.G != 0 || !near(got.B, 50) {
		t.Errorf("Average = %+v", got)
	}
}

func TestDominant_LargestRegionWins(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	fill(img, img.Bounds(), color.RGBA{20, 40, 200, 255})
	fill(img, image.Rect(0, 0, 20, 20), color.RGBA{250, 250, 10, 255})

	got := Dominant(img)
	if !near(got.R, 20) || !near(got.G, 40) || !near(got.B, 200) {
		t.Errorf("Dominant = %+v, want about {20 40 200}", got)
	}
}

func TestDominantColor_File(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill(img, img.Bounds(), color.RGBA{10, 180, 60, 255})

	p := filepath.Join(t.TempDir(), "cover.png")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, img)
	f.Close()

	got, err := DominantColor(p)
	if err != nil {
		t.Fatal(err)
	}
	if !near(got.R, 10) || !near(got.G, 180) || !near(got.B, 60) {
		t.Errorf("DominantColor = %+v", got)
	}

	if _, err := DominantColor(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
