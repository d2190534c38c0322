package colour

import (
	"fmt"
	"image/color"
	"math"
)

// HSL is a colour in HSL space.
// H is in degrees [0, 360); S and L are on the 0.0-1.0 scale.
// Use Percent to get the 0-100 form for display.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Rotate returns the colour with its hue shifted by degrees, wrapped into [0, 360).
func (c HSL) Rotate(degrees float64) HSL {
	h := math.Mod(c.H+degrees, 360)
	if h < 0 {
		h += 360
	}
	return HSL{H: h, S: c.S, L: c.L}
}

// Percent returns hue in whole degrees and saturation/lightness as 0-100 percentages.
func (c HSL) Percent() (h, s, l int) {
	return int(math.Round(c.H)) % 360, int(math.Round(c.S * 100)), int(math.Round(c.L * 100))
}

// String returns the colour in CSS notation, e.g. "hsl(210, 50%, 40%)".
func (c HSL) String() string {
	h, s, l := c.Percent()
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", h, s, l)
}

// Luminance calculates the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	// Convert from 16-bit to 8-bit.
	rf := gammaCorrect(float64(r>>8) / 255.0)
	gf := gammaCorrect(float64(g>>8) / 255.0)
	bf := gammaCorrect(float64(b>>8) / 255.0)

	return 0.2126*rf + 0.7152*gf + 0.0722*bf
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is maximum contrast (black vs white).
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(c1, c2 color.Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// RGBToHSL converts RGB to HSL colour space.
func RGBToHSL(rgb RGB) HSL {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	l := (maxVal + minVal) / 2.0
	if delta == 0 {
		// Achromatic (grey).
		return HSL{L: l}
	}

	var s float64
	if l < 0.5 {
		s = delta / (maxVal + minVal)
	} else {
		s = delta / (2.0 - maxVal - minVal)
	}

	var h float64
	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}

	return HSL{H: h * 60, S: s, L: l}
}

// HSLToRGB converts HSL to RGB colour space, rounding each channel to nearest.
func HSLToRGB(c HSL) RGB {
	if c.S == 0 {
		v := unitToChannel(c.L)
		return RGB{R: v, G: v, B: v}
	}

	var q float64
	if c.L < 0.5 {
		q = c.L * (1 + c.S)
	} else {
		q = c.L + c.S - c.L*c.S
	}
	p := 2*c.L - q

	return RGB{
		R: unitToChannel(hueToRGB(p, q, c.H+120)),
		G: unitToChannel(hueToRGB(p, q, c.H)),
		B: unitToChannel(hueToRGB(p, q, c.H-120)),
	}
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	// Normalize t to 0-360 range.
	for t < 0 {
		t += 360
	}
	for t >= 360 {
		t -= 360
	}

	if t < 60 {
		return p + (q-p)*t/60
	}
	if t < 180 {
		return q
	}
	if t < 240 {
		return p + (q-p)*(240-t)/60
	}
	return p
}

func unitToChannel(v float64) uint8 {
	return clampChannel(int(math.Round(v * 255)))
}
