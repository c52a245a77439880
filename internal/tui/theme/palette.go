package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/slotify/internal/activity"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	Fg          lipgloss.Color
	Card        lipgloss.Color
	Primary     lipgloss.Color
	Secondary   lipgloss.Color
	Muted       lipgloss.Color
	MutedFg     lipgloss.Color
	Accent      lipgloss.Color
	Destructive lipgloss.Color
	Border      lipgloss.Color

	TextOnPrimary     lipgloss.Color
	TextOnDestructive lipgloss.Color

	isLight bool
	bgHex   string
	fgHex   string
	blocks  map[activity.Type]BlockColors
}

// BlockColors are the colors of one activity block on the grid.
type BlockColors struct {
	Bg     lipgloss.Color // Upcoming block
	BgAlt  lipgloss.Color // Adjacent block of the same color
	PastBg lipgloss.Color // Block that already ended, or is done or skipped
	Fg     lipgloss.Color // Text on Bg
	PastFg lipgloss.Color // Text on PastBg
	Edge   lipgloss.Color // Resize handle and left accent
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	p := &Palette{
		Bg:          lipgloss.Color(t.Bg),
		Fg:          lipgloss.Color(t.Fg),
		Card:        lipgloss.Color(t.Card),
		Primary:     lipgloss.Color(t.Primary),
		Secondary:   lipgloss.Color(t.Secondary),
		Muted:       lipgloss.Color(t.Muted),
		MutedFg:     lipgloss.Color(t.MutedFg),
		Accent:      lipgloss.Color(t.Accent),
		Destructive: lipgloss.Color(t.Destructive),
		Border:      lipgloss.Color(t.Border),

		TextOnPrimary:     lipgloss.Color(chooseTextColor(t.Primary, t.Bg, t.Fg)),
		TextOnDestructive: lipgloss.Color(chooseTextColor(t.Destructive, "#FFFFFF", t.Fg)),

		isLight: isLightTheme(t.Bg),
		bgHex:   t.Bg,
		fgHex:   t.Fg,
		blocks:  make(map[activity.Type]BlockColors, len(activity.Types)),
	}
	for _, typ := range activity.Types {
		p.blocks[typ] = p.derive(t.TypeColor(typ))
	}
	return p
}

// IsLight reports whether the theme has a light background.
func (p *Palette) IsLight() bool {
	return p.isLight
}

// Block returns the block colors of an activity: its color override when set, otherwise the
// colors of its type.
func (p *Palette) Block(a activity.Activity) BlockColors {
	if a.Color != "" {
		return p.derive(a.Color)
	}
	if c, ok := p.blocks[a.Type]; ok {
		return c
	}
	return p.blocks[activity.TypeTask]
}

func (p *Palette) derive(base string) BlockColors {
	bg := base
	past := blendColors(base, p.bgHex, 0.65)
	alt := blendColors(base, "#000000", 0.12)
	if !p.isLight {
		bg = blendColors(base, p.bgHex, 0.35)
		past = blendColors(base, p.bgHex, 0.75)
		alt = blendColors(bg, "#FFFFFF", 0.12)
	}
	return BlockColors{
		Bg:     lipgloss.Color(bg),
		BgAlt:  lipgloss.Color(alt),
		PastBg: lipgloss.Color(past),
		Fg:     lipgloss.Color(chooseTextColor(bg, "#FFFFFF", p.fgHex)),
		PastFg: lipgloss.Color(chooseTextColor(past, p.bgHex, p.fgHex)),
		Edge:   lipgloss.Color(base),
	}
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// rgb splits a #RRGGBB color. ok is false for anything else.
func rgb(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func formatHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(v int) int {
	return max(0, min(255, v))
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := rgb(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// blendColors mixes b into a; ratio 0 returns a and 1 returns b.
func blendColors(a, b string, ratio float64) string {
	ar, ag, ab, okA := rgb(a)
	br, bg, bb, okB := rgb(b)
	if !okA || !okB {
		return a
	}
	ratio = math.Max(0, math.Min(1, ratio))
	mix := func(x, y int) int {
		return int(math.Round(float64(x)*(1-ratio) + float64(y)*ratio))
	}
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
