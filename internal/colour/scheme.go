package colour

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Scheme colours used when nothing could be extracted.
const (
	DefaultPrimary    = "#2563eb"
	DefaultSecondary  = "#64748b"
	DefaultAccent     = "#f59e0b"
	DefaultText       = "#1f2937"
	DefaultBackground = "#ffffff"
)

// Text and background pairs chosen from the primary colour's lightness.
const (
	LightPrimaryText       = "#1f2937"
	LightPrimaryBackground = "#ffffff"
	DarkPrimaryText        = "#f9fafb"
	DarkPrimaryBackground  = "#f8fafc"
)

const (
	// SecondaryDarken is subtracted from each primary channel to derive a missing secondary.
	SecondaryDarken = 20

	// AccentHueShift is the hue rotation in degrees used to derive a missing accent.
	AccentHueShift = 60.0

	// LightPrimaryThreshold splits light and dark primaries on the 0-1 lightness scale.
	LightPrimaryThreshold = 0.5
)

// Scheme is the five-colour branding scheme bound to the widget's colour pickers.
// Every field is a "#rrggbb" string.
type Scheme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// DefaultScheme returns the designer-chosen fallback scheme.
func DefaultScheme() Scheme {
	return Scheme{
		Primary:    DefaultPrimary,
		Secondary:  DefaultSecondary,
		Accent:     DefaultAccent,
		Text:       DefaultText,
		Background: DefaultBackground,
	}
}

// Synthesize fills a complete scheme from up to three ranked colours.
// Missing or malformed entries are derived from the primary colour.
func Synthesize(ranked []string) Scheme {
	primary, ok := rankedAt(ranked, 0)
	if !ok {
		primary, _ = ParseHex(DefaultPrimary)
	}

	secondary, ok := rankedAt(ranked, 1)
	if !ok {
		secondary = primary.Darken(SecondaryDarken)
	}

	primaryHSL := RGBToHSL(primary)

	accent, ok := rankedAt(ranked, 2)
	if !ok {
		accent = HSLToRGB(primaryHSL.Rotate(AccentHueShift))
	}

	scheme := Scheme{
		Primary:   primary.Hex(),
		Secondary: secondary.Hex(),
		Accent:    accent.Hex(),
	}
	// Keyed off the primary, not the chosen background.
	if primaryHSL.L > LightPrimaryThreshold {
		scheme.Text = LightPrimaryText
		scheme.Background = LightPrimaryBackground
	} else {
		scheme.Text = DarkPrimaryText
		scheme.Background = DarkPrimaryBackground
	}
	return scheme
}

func rankedAt(ranked []string, i int) (RGB, bool) {
	if i >= len(ranked) {
		return RGB{}, false
	}
	c, err := ParseHex(ranked[i])
	if err != nil {
		return RGB{}, false
	}
	return c, true
}

// Fields returns the scheme as ordered name/value pairs.
func (s Scheme) Fields() [][2]string {
	return [][2]string{
		{"primary", s.Primary},
		{"secondary", s.Secondary},
		{"accent", s.Accent},
		{"text", s.Text},
		{"background", s.Background},
	}
}

// Validate checks that every field is a "#rrggbb" string.
func (s Scheme) Validate() error {
	var errs []error
	for _, f := range s.Fields() {
		if !IsHex(f[1]) {
			errs = append(errs, fmt.Errorf("%s: invalid hex colour %q", f[0], f[1]))
		}
	}
	return errors.Join(errs...)
}

// ToJSON converts the scheme to indented JSON.
func (s Scheme) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
