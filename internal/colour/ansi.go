package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 9
)

// SampleText is the call to action shown in scheme previews.
const SampleText = "Book a service"

// ColourPreviewWithText returns a colour block with centred text overlaid.
// Black or white text is picked, whichever contrasts more with the block.
func ColourPreviewWithText(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	fg := RGB{R: 255, G: 255, B: 255}
	black := RGB{}
	if ContrastRatio(c.Color(), black.Color()) > ContrastRatio(c.Color(), fg.Color()) {
		fg = black
	}

	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	bgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	fgColour := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix)
	return bgColour + fgColour + displayText + ansiReset
}

// FormatColourWithLabel formats a colour swatch carrying its hex code, followed by a label.
func FormatColourWithLabel(rgb RGB, label string, width int) string {
	return fmt.Sprintf("%s  %s", ColourPreviewWithText(rgb, rgb.Hex(), width), label)
}

// StringWithPreview renders the scheme one role per line.
// With preview set each line is prefixed by an ANSI swatch.
func (s Scheme) StringWithPreview(preview bool) string {
	var sb strings.Builder
	for _, f := range s.Fields() {
		rgb, err := ParseHex(f[1])
		if preview && err == nil {
			sb.WriteString(FormatColourWithLabel(rgb, f[0], defaultWidth))
		} else {
			fmt.Fprintf(&sb, "%-12s %s", f[0], f[1])
		}
		sb.WriteByte('\n')
	}
	if preview {
		fmt.Fprintf(&sb, "%-12s %s\n", "sample", s.Sample(SampleText))
	}
	return sb.String()
}

// Sample renders text in the scheme's Text colour on its Background colour.
func (s Scheme) Sample(text string) string {
	bg, err := ParseHex(s.Background)
	if err != nil {
		return text
	}
	fg, err := ParseHex(s.Text)
	if err != nil {
		return text
	}
	return fmt.Sprintf("%s%d;%d;%d%s%s%d;%d;%d%s %s %s",
		ansiBgPrefix, bg.R, bg.G, bg.B, ansiSuffix,
		ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix,
		text, ansiReset)
}
