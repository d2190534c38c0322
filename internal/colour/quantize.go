package colour

const (
	// QuantizeStep is the bucket width applied to every channel.
	QuantizeStep = 32

	// DefaultSampleStride inspects one pixel in every four.
	DefaultSampleStride = 4

	// MinAlpha is the lowest alpha a pixel may have and still count as visible.
	MinAlpha = 128

	// MinBrightness and MaxBrightness bound the mean channel value of a kept pixel.
	// Pixels darker than MinBrightness or brighter than MaxBrightness are dropped.
	MinBrightness = 30.0
	MaxBrightness = 225.0

	bytesPerPixel = 4
)

// FrequencyTable counts quantised colours and remembers the order in which
// each distinct colour was first seen.
type FrequencyTable struct {
	order  []RGB
	counts map[RGB]int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[RGB]int)}
}

// Add increments the counter for c.
func (t *FrequencyTable) Add(c RGB) {
	if _, ok := t.counts[c]; !ok {
		t.order = append(t.order, c)
	}
	t.counts[c]++
}

// Count returns the number of times c was added.
func (t *FrequencyTable) Count(c RGB) int {
	return t.counts[c]
}

// Len returns the number of distinct colours.
func (t *FrequencyTable) Len() int {
	return len(t.order)
}

// Keys returns the distinct colours in first-insertion order.
func (t *FrequencyTable) Keys() []RGB {
	keys := make([]RGB, len(t.order))
	copy(keys, t.order)
	return keys
}

// QuantizeChannel rounds v to the nearest multiple of QuantizeStep, halves rounding up.
// The top bucket (256) is clamped to 255.
func QuantizeChannel(v uint8) uint8 {
	return clampChannel((int(v) + QuantizeStep/2) / QuantizeStep * QuantizeStep)
}

// QuantizeRGB quantises every channel of c.
func QuantizeRGB(c RGB) RGB {
	return RGB{R: QuantizeChannel(c.R), G: QuantizeChannel(c.G), B: QuantizeChannel(c.B)}
}

// Brightness returns the mean of the three channels.
func Brightness(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3
}

// Keep reports whether a pixel survives the alpha and brightness filters.
func Keep(r, g, b, a uint8) bool {
	if a < MinAlpha {
		return false
	}
	br := Brightness(r, g, b)
	return br >= MinBrightness && br <= MaxBrightness
}

// Quantize builds a frequency table from a flat non-premultiplied RGBA buffer.
// Only pixel 0 and every stride-th pixel after it are inspected; a stride
// below 1 selects DefaultSampleStride. A trailing partial pixel is ignored.
func Quantize(pix []uint8, stride int) *FrequencyTable {
	if stride < 1 {
		stride = DefaultSampleStride
	}

	table := NewFrequencyTable()
	step := stride * bytesPerPixel
	for i := 0; i+bytesPerPixel <= len(pix); i += step {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if !Keep(r, g, b, a) {
			continue
		}
		table.Add(QuantizeRGB(RGB{R: r, G: g, B: b}))
	}
	return table
}
