package branding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/serviceplanpro/brandcolour/internal/colour"
	"github.com/serviceplanpro/brandcolour/internal/image"
)

// stubDecoder returns a fixed buffer, or a LoadError when buf is nil.
type stubDecoder struct {
	buf *image.PixelBuffer
}

func (d *stubDecoder) Decode(ctx context.Context, ref string) (*image.PixelBuffer, error) {
	if d.buf == nil {
		return nil, &image.LoadError{Ref: ref, Err: fmt.Errorf("HTTP 404: 404 Not Found")}
	}
	return d.buf, nil
}

// blockingDecoder waits for the context to end.
type blockingDecoder struct{}

func (blockingDecoder) Decode(ctx context.Context, ref string) (*image.PixelBuffer, error) {
	<-ctx.Done()
	return nil, &image.LoadError{Ref: ref, Err: ctx.Err()}
}

func blueLogo() *image.PixelBuffer {
	px := []uint8{
		0x30, 0x50, 0xa0, 255, 0x30, 0x50, 0xa0, 255,
		0xff, 0xff, 0xff, 255, 0x00, 0x00, 0x00, 255,
	}
	return &image.PixelBuffer{Width: 2, Height: 2, Pix: px}
}

var blueScheme = colour.Scheme{
	Primary:    "#4060a0",
	Secondary:  "#2c4c8c",
	Accent:     "#8040a0",
	Text:       "#f9fafb",
	Background: "#f8fafc",
}

func TestNewExtractorValidation(t *testing.T) {
	if _, err := NewExtractor(nil); err == nil {
		t.Error("NewExtractor(nil) expected error")
	}
	_, err := NewExtractor(&stubDecoder{}, WithConfig(colour.ExtractorConfig{SampleStride: 0, MaxColours: 5}))
	if err == nil {
		t.Error("NewExtractor() expected error for invalid config")
	}
}

func TestExtract(t *testing.T) {
	e, err := NewExtractor(&stubDecoder{buf: blueLogo()})
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	got, err := e.Extract(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != blueScheme {
		t.Errorf("Extract() = %+v, want %+v", got, blueScheme)
	}

	again, _ := e.Extract(context.Background(), "logo.png")
	if again != got {
		t.Errorf("second Extract() = %+v, want %+v", again, got)
	}
}

func TestExtractPropagatesLoadFailure(t *testing.T) {
	e, err := NewExtractor(&stubDecoder{})
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	_, err = e.Extract(context.Background(), "https://example.com/missing.png")
	if !errors.Is(err, image.ErrLoadFailure) {
		t.Errorf("Extract() error = %v, want ErrLoadFailure", err)
	}
}

func TestFromPixelsNil(t *testing.T) {
	e, _ := NewExtractor(&stubDecoder{})
	if got := e.FromPixels(nil); got.Primary != colour.DefaultPrimary {
		t.Errorf("FromPixels(nil).Primary = %s, want %s", got.Primary, colour.DefaultPrimary)
	}
}

func TestExtractOrDefault(t *testing.T) {
	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Warn})

	e, err := NewExtractor(&stubDecoder{}, WithLogger(logger))
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	res := e.ExtractOrDefault(context.Background(), "https://example.com/missing.png")
	if !res.Fallback {
		t.Error("expected Fallback to be set")
	}
	if res.Scheme != colour.DefaultScheme() {
		t.Errorf("Scheme = %+v, want default", res.Scheme)
	}
	if !errors.Is(res.Err, image.ErrLoadFailure) {
		t.Errorf("Err = %v, want ErrLoadFailure", res.Err)
	}
	if res.Warning() == "" {
		t.Error("expected a warning message")
	}
	if !strings.Contains(logs.String(), "applying default scheme") {
		t.Errorf("expected warning in logs, got %q", logs.String())
	}
}

func TestExtractOrDefaultSuccess(t *testing.T) {
	e, _ := NewExtractor(&stubDecoder{buf: blueLogo()})

	res := e.ExtractOrDefault(context.Background(), "logo.png")
	if res.Fallback || res.Err != nil {
		t.Errorf("unexpected fallback: %+v", res)
	}
	if res.Scheme != blueScheme {
		t.Errorf("Scheme = %+v, want %+v", res.Scheme, blueScheme)
	}
	if res.Warning() != "" {
		t.Errorf("Warning() = %q, want empty", res.Warning())
	}
}

func TestExtractOrDefaultTimeout(t *testing.T) {
	e, err := NewExtractor(blockingDecoder{}, WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	start := time.Now()
	res := e.ExtractOrDefault(context.Background(), "https://slow.example.com/logo.png")
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("ExtractOrDefault() took %v", elapsed)
	}
	if !res.Fallback || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("result = %+v, want timeout fallback", res)
	}
	if !strings.Contains(res.Warning(), "too long") {
		t.Errorf("Warning() = %q, want timeout message", res.Warning())
	}
}

func TestWithDecoder(t *testing.T) {
	base, err := NewExtractor(&stubDecoder{})
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	upload := base.WithDecoder(&stubDecoder{buf: blueLogo()})

	if got := upload.ExtractOrDefault(context.Background(), "upload.png"); got.Fallback || got.Scheme != blueScheme {
		t.Errorf("copy ExtractOrDefault() = %+v, want %+v", got, blueScheme)
	}
	if got := base.ExtractOrDefault(context.Background(), "logo.png"); !got.Fallback {
		t.Error("original extractor should still use its own decoder")
	}
}

func TestResultWarning(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &image.LoadError{Ref: "x", Err: context.DeadlineExceeded}, "too long"},
		{"too many pixels", &image.LoadError{Ref: "x", Err: fmt.Errorf("png image is 20000x20000: %w", image.ErrTooManyPixels)}, "dimensions"},
		{"other", &image.LoadError{Ref: "x", Err: errors.New("HTTP 404")}, "could not be loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Result{Scheme: colour.DefaultScheme(), Fallback: true, Err: tt.err}
			if got := res.Warning(); !strings.Contains(got, tt.want) {
				t.Errorf("Warning() = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}
