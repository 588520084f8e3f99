// Package statuscard renders a small PNG showing the capability status and
// load progress, for terminals and clients that cannot run the viewer.
package statuscard

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	gtlang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/modelo/capability"
)

// Card dimensions and layout, in pixels.
const (
	Width     = 480
	Height    = 120
	fontSize  = 22
	barMargin = 24
	barHeight = 14
	barTop    = Height - barMargin - barHeight
	baseline  = 56
)

// Colors.
var (
	background = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
	foreground = color.RGBA{0xf5, 0xf5, 0xf5, 0xff}
	track      = color.RGBA{0x33, 0x33, 0x4d, 0xff}
)

// tierColors are the progress bar fill colors.
var tierColors = map[capability.Tier]color.RGBA{
	capability.HighPerf3D:    {0x00, 0xc8, 0x53, 0xff},
	capability.Accelerated3D: {0x29, 0x79, 0xff, 0xff},
	capability.BasicGraphics: {0xff, 0xb3, 0x00, 0xff},
	capability.Unsupported:   {0xe5, 0x39, 0x35, 0xff},
}

// BarColor returns the fill color used for tier.
func BarColor(tier capability.Tier) color.RGBA {
	if c, ok := tierColors[tier]; ok {
		return c
	}
	return tierColors[capability.Unsupported]
}

type fonts struct {
	face   font.Face
	shaped *gtfont.Font
}

var loadFonts = sync.OnceValues(func() (*fonts, error) {
	otf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("statuscard: parse font: %w", err)
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("statuscard: font face: %w", err)
	}
	gt, err := gtfont.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("statuscard: parse font for shaping: %w", err)
	}
	return &fonts{face: face, shaped: gt.Font}, nil
})

// drawMu serializes use of the shared x/image face, which is not safe for
// concurrent use.
var drawMu sync.Mutex

// Render writes a PNG card with label centred above a progress bar filled
// to pct percent in the tier's color. pct is clamped into [0, 100].
func Render(w io.Writer, label string, tier capability.Tier, pct int) error {
	img, err := Draw(label, tier, pct)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("statuscard: encode: %w", err)
	}
	return nil
}

// Draw renders the card into an image.
func Draw(label string, tier capability.Tier, pct int) (*image.RGBA, error) {
	f, err := loadFonts()
	if err != nil {
		return nil, err
	}
	pct = min(max(pct, 0), 100)

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	bar := image.Rect(barMargin, barTop, Width-barMargin, barTop+barHeight)
	draw.Draw(img, bar, image.NewUniform(track), image.Point{}, draw.Src)
	if pct > 0 {
		fill := bar
		fill.Max.X = bar.Min.X + bar.Dx()*pct/100
		draw.Draw(img, fill, image.NewUniform(BarColor(tier)), image.Point{}, draw.Src)
	}

	if label != "" {
		drawMu.Lock()
		defer drawMu.Unlock()
		width := measure(f, label)
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(foreground),
			Face: f.face,
			Dot:  fixed.P((Width-width.Ceil())/2, baseline),
		}
		d.DrawString(label)
	}
	return img, nil
}

// measure returns the shaped advance of s, falling back to the x/image
// advance when shaping yields nothing.
func measure(f *fonts, s string) fixed.Int26_6 {
	runes := []rune(s)
	out := (&shaping.HarfbuzzShaper{}).Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(f.shaped),
		Size:      fixed.I(fontSize),
		Script:    gtlang.Latin,
		Language:  gtlang.NewLanguage("en"),
	})
	if out.Advance > 0 {
		return out.Advance
	}
	return font.MeasureString(f.face, s)
}
