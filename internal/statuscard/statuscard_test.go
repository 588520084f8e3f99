package statuscard

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/gogpu/modelo/capability"
)

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "Maximum performance", capability.HighPerf3D, 50); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("bounds = %v, want %dx%d", b, Width, Height)
	}
}

func TestProgressBar(t *testing.T) {
	img, err := Draw("", capability.Accelerated3D, 50)
	if err != nil {
		t.Fatal(err)
	}
	y := barTop + barHeight/2
	if got := img.RGBAAt(barMargin+2, y); got != BarColor(capability.Accelerated3D) {
		t.Errorf("filled bar pixel = %v, want %v", got, BarColor(capability.Accelerated3D))
	}
	if got := img.RGBAAt(Width-barMargin-2, y); got != track {
		t.Errorf("empty bar pixel = %v, want %v", got, track)
	}

	full, err := Draw("", capability.BasicGraphics, 250)
	if err != nil {
		t.Fatal(err)
	}
	if got := full.RGBAAt(Width-barMargin-2, y); got != BarColor(capability.BasicGraphics) {
		t.Errorf("clamped bar end pixel = %v, want filled", got)
	}

	empty, err := Draw("", capability.BasicGraphics, -5)
	if err != nil {
		t.Fatal(err)
	}
	if got := empty.RGBAAt(barMargin+2, y); got != track {
		t.Errorf("negative pct bar pixel = %v, want track", got)
	}
}

func TestLabelIsDrawn(t *testing.T) {
	img, err := Draw("Compatibility", capability.BasicGraphics, 0)
	if err != nil {
		t.Fatal(err)
	}
	inked := 0
	for y := baseline - fontSize; y <= baseline; y++ {
		for x := 0; x < Width; x++ {
			if img.RGBAAt(x, y) != background {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("no label pixels drawn")
	}
}

func TestMeasureMatchesDrawer(t *testing.T) {
	f, err := loadFonts()
	if err != nil {
		t.Fatal(err)
	}
	w := measure(f, "Loading").Ceil()
	if w <= 0 || w >= Width {
		t.Errorf("measure(Loading) = %d px, want within the card", w)
	}
}
