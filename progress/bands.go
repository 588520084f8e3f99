package progress

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/gogpu/modelo/internal/i18n"
)

// Band is one message range: percentages below Below use Key, formatted
// with the percentage.
type Band struct {
	Below int
	Key   string
}

// Bands partitions 0..100 percent into status messages: Zero at 0%, Steps
// for the range in between, Done at 100%.
type Bands struct {
	Zero  string
	Steps []Band
	Done  string
}

// ViewerBands are the bands of the full viewer page.
var ViewerBands = Bands{
	Zero: i18n.KeyConnecting,
	Steps: []Band{
		{Below: 30, Key: i18n.KeyDownloadingPct},
		{Below: 70, Key: i18n.KeyProcessingPct},
		{Below: 100, Key: i18n.KeyApplyMaterialsPct},
	},
	Done: i18n.KeyFinalizing,
}

// CompactBands are the bands of the embedded viewer.
var CompactBands = Bands{
	Zero: i18n.KeyInitializing,
	Steps: []Band{
		{Below: 50, Key: i18n.KeyLoadingGeometryPct},
		{Below: 100, Key: i18n.KeyApplyTexturesPct},
	},
	Done: i18n.KeyFinalizing,
}

// BandsByName returns the preset called name: "viewer" or "compact".
func BandsByName(name string) (Bands, bool) {
	switch name {
	case "viewer":
		return ViewerBands, true
	case "compact":
		return CompactBands, true
	}
	return Bands{}, false
}

// Validate checks that b is a monotonic partition into at most five bands:
// between one and three steps with strictly increasing bounds in (0, 100],
// the last one being 100.
func (b Bands) Validate() error {
	if b.Zero == "" || b.Done == "" {
		return fmt.Errorf("%w: zero and done keys are required", ErrInvalidBands)
	}
	if len(b.Steps) == 0 || len(b.Steps) > 3 {
		return fmt.Errorf("%w: %d steps, want 1 to 3", ErrInvalidBands, len(b.Steps))
	}
	prev := 0
	for i, s := range b.Steps {
		if s.Key == "" {
			return fmt.Errorf("%w: step %d has no key", ErrInvalidBands, i)
		}
		if s.Below <= prev || s.Below > 100 {
			return fmt.Errorf("%w: step %d bound %d out of order", ErrInvalidBands, i, s.Below)
		}
		prev = s.Below
	}
	if prev != 100 {
		return fmt.Errorf("%w: last bound is %d, want 100", ErrInvalidBands, prev)
	}
	return nil
}

// Message returns the localized message for pct.
func (b Bands) Message(tag language.Tag, pct int) string {
	switch {
	case pct <= 0:
		return i18n.Sprintf(tag, b.Zero)
	case pct >= 100:
		return i18n.Sprintf(tag, b.Done)
	}
	for _, s := range b.Steps {
		if pct < s.Below {
			return i18n.Sprintf(tag, s.Key, pct)
		}
	}
	return i18n.Sprintf(tag, b.Done)
}

// Messages returns the localized message for every percentage from 0 to
// 100, indexed by percentage.
func (b Bands) Messages(tag language.Tag) []string {
	out := make([]string, 101)
	for pct := range out {
		out[pct] = b.Message(tag, pct)
	}
	return out
}
