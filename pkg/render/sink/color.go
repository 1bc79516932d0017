package sink

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor resolves "#rgb", "#rrggbb", "#rrggbbaa" and SVG color
// keywords. Anything else yields fallback.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c
	}
	if strings.EqualFold(s, "transparent") || strings.EqualFold(s, "none") {
		return color.Transparent
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return fallback
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}
