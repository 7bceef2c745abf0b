// Package color handles habit colours: "#RRGGBB" strings, the preset
// palette, and blending used to draw intensity tiers.
package color

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultHex is the accent colour used when a stored colour is missing or
// malformed.
const DefaultHex = "#FF5A5F"

// Preset is a named palette entry offered when creating a habit.
type Preset struct {
	Name string
	Hex  string
}

// Presets is the palette offered in the habit form, in display order.
var Presets = []Preset{
	{Name: "coral", Hex: "#FF5A5F"},
	{Name: "emerald", Hex: "#00A699"},
	{Name: "sunflower", Hex: "#FFB400"},
	{Name: "lavender", Hex: "#914669"},
	{Name: "ocean", Hex: "#007AFF"},
	{Name: "mint", Hex: "#34C759"},
	{Name: "peach", Hex: "#FF9500"},
	{Name: "berry", Hex: "#AF52DE"},
}

// Parse parses a six-digit hex colour. A leading '#' and surrounding
// whitespace are optional and letter case is ignored.
func Parse(s string) (colorful.Color, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return colorful.Color{}, false
	}
	for _, r := range hex {
		if !isHexDigit(r) {
			return colorful.Color{}, false
		}
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// Normalize returns the canonical uppercase "#RRGGBB" form of s, or
// DefaultHex when s cannot be parsed. Preset names are accepted too.
func Normalize(s string) string {
	if p, ok := lookupPreset(s); ok {
		return p.Hex
	}
	c, ok := Parse(s)
	if !ok {
		return DefaultHex
	}
	return strings.ToUpper(c.Hex())
}

// Resolve parses s, falling back to the default accent colour.
func Resolve(s string) colorful.Color {
	if c, ok := Parse(Normalize(s)); ok {
		return c
	}
	c, _ := Parse(DefaultHex)
	return c
}

// Valid reports whether s is a parseable hex colour or preset name.
func Valid(s string) bool {
	if _, ok := lookupPreset(s); ok {
		return true
	}
	_, ok := Parse(s)
	return ok
}

// WithOpacity composites c over background at the given alpha and returns
// the result as "#RRGGBB". Terminals have no alpha channel, so opacity is
// flattened here.
func WithOpacity(c, background colorful.Color, alpha float64) string {
	if alpha <= 0 {
		return strings.ToUpper(background.Hex())
	}
	if alpha > 1 {
		alpha = 1
	}
	return strings.ToUpper(background.BlendRgb(c, alpha).Clamped().Hex())
}

func lookupPreset(s string) (Preset, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
