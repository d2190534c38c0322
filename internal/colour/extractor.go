package colour

import "fmt"

// ExtractorConfig holds the tunables of the dominant-colour extraction.
type ExtractorConfig struct {
	// SampleStride inspects one pixel in every SampleStride.
	SampleStride int
	// MaxColours caps the ranked candidate list.
	MaxColours int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		SampleStride: DefaultSampleStride,
		MaxColours:   MaxRankedColours,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if c.SampleStride < 1 {
		return fmt.Errorf("sample stride must be at least 1, got %d", c.SampleStride)
	}
	if c.SampleStride > 64 {
		return fmt.Errorf("sample stride too large: %d (maximum: 64)", c.SampleStride)
	}
	if c.MaxColours < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", c.MaxColours)
	}
	if c.MaxColours > MaxRankedColours {
		return fmt.Errorf("colour count too large: %d (maximum: %d)", c.MaxColours, MaxRankedColours)
	}
	return nil
}

// Dominant returns the ranked candidate colours of a flat RGBA buffer.
func (c ExtractorConfig) Dominant(pix []uint8) []string {
	return Rank(Quantize(pix, c.SampleStride), c.MaxColours)
}

// SchemeFromPixels runs quantisation, ranking and synthesis over a flat RGBA buffer.
func (c ExtractorConfig) SchemeFromPixels(pix []uint8) Scheme {
	return Synthesize(c.Dominant(pix))
}
