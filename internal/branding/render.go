package branding

import (
	"fmt"
	"slices"
	"strings"

	"github.com/serviceplanpro/brandcolour/internal/colour"
)

// Format is an output representation of a scheme.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSS  Format = "css"
)

// CSSVariablePrefix prefixes every custom property emitted by RenderCSS.
const CSSVariablePrefix = "--sp-color-"

// ValidFormats returns a list of valid format names.
func ValidFormats() []Format {
	return []Format{FormatText, FormatJSON, FormatCSS}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if !slices.Contains(ValidFormats(), f) {
		return "", fmt.Errorf("unsupported format: %s (supported: text, json, css)", s)
	}
	return f, nil
}

// Render formats the scheme. Preview adds ANSI swatches to text output only.
func Render(s colour.Scheme, format Format, preview bool) (string, error) {
	switch format {
	case FormatText, "":
		return s.StringWithPreview(preview), nil
	case FormatJSON:
		data, err := s.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	case FormatCSS:
		return RenderCSS(s, ":root"), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: text, json, css)", format)
	}
}

// RenderCSS emits the scheme as custom properties on selector, ready to be
// included by the widget page.
func RenderCSS(s colour.Scheme, selector string) string {
	var sb strings.Builder
	sb.WriteString(selector)
	sb.WriteString(" {\n")
	for _, f := range s.Fields() {
		fmt.Fprintf(&sb, "  %s%s: %s;\n", CSSVariablePrefix, f[0], f[1])
	}
	sb.WriteString("}\n")
	return sb.String()
}
