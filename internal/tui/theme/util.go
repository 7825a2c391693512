package theme

import (
	"image/color"
	"strconv"
	"strings"
)

// Gradient returns n colors stepping evenly from the hex color from to
// the hex color to. Malformed hex values read as black.
func Gradient(from, to string, n int) []color.Color {
	if n <= 0 {
		return nil
	}
	a, b := hexRGB(from), hexRGB(to)
	out := make([]color.Color, n)
	for i := range out {
		var pos float64
		if n > 1 {
			pos = float64(i) / float64(n-1)
		}
		out[i] = color.RGBA{
			R: mix(a.R, b.R, pos),
			G: mix(a.G, b.G, pos),
			B: mix(a.B, b.B, pos),
			A: 0xff,
		}
	}
	return out
}

func mix(a, b uint8, pos float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*pos)
}

func hexRGB(hex string) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
