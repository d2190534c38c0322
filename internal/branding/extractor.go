// Package branding turns a logo reference into a widget colour scheme.
//
// The pipeline is Decoder -> Quantize -> Rank -> Synthesize. Only the decode
// step can fail; everything after it is total. Extractors hold no mutable
// state, so concurrent calls are independent.
package branding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/serviceplanpro/brandcolour/internal/colour"
	"github.com/serviceplanpro/brandcolour/internal/image"
	"github.com/serviceplanpro/brandcolour/internal/logging"
)

// DefaultLoadTimeout bounds the decode step in ExtractOrDefault.
const DefaultLoadTimeout = 15 * time.Second

// Result is the outcome of ExtractOrDefault.
type Result struct {
	Scheme colour.Scheme `json:"scheme"`
	// Fallback is set when the default scheme was substituted.
	Fallback bool `json:"fallback"`
	// Err holds the load failure that caused the fallback.
	Err error `json:"-"`
}

// Warning returns a user-facing message for a fallback result.
func (r Result) Warning() string {
	if !r.Fallback || r.Err == nil {
		return ""
	}
	if errors.Is(r.Err, context.DeadlineExceeded) {
		return "The logo took too long to load; default colours were applied."
	}
	if errors.Is(r.Err, image.ErrTooManyPixels) {
		return "The logo's dimensions are too large; default colours were applied."
	}
	return "The logo could not be loaded; default colours were applied."
}

// Extractor runs the colour pipeline against images resolved by a Decoder.
type Extractor struct {
	decoder image.Decoder
	config  colour.ExtractorConfig
	timeout time.Duration
	logger  hclog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConfig overrides the sampling stride and candidate count.
func WithConfig(cfg colour.ExtractorConfig) Option {
	return func(e *Extractor) { e.config = cfg }
}

// WithTimeout bounds the decode step in ExtractOrDefault. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l hclog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor creates an Extractor reading images through decoder.
func NewExtractor(decoder image.Decoder, opts ...Option) (*Extractor, error) {
	if decoder == nil {
		return nil, fmt.Errorf("decoder cannot be nil")
	}
	e := &Extractor{
		decoder: decoder,
		config:  colour.DefaultExtractorConfig(),
		timeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor configuration: %w", err)
	}
	e.logger = logging.OrNull(e.logger)
	return e, nil
}

// WithDecoder returns a copy of e that reads images through d.
func (e *Extractor) WithDecoder(d image.Decoder) *Extractor {
	c := *e
	c.decoder = d
	return &c
}

// Extract decodes ref and synthesises its scheme.
// Load failures are returned unchanged and match image.ErrLoadFailure.
func (e *Extractor) Extract(ctx context.Context, ref string) (colour.Scheme, error) {
	buf, err := e.decoder.Decode(ctx, ref)
	if err != nil {
		return colour.Scheme{}, err
	}
	e.logger.Debug("image decoded", "ref", ref, "width", buf.Width, "height", buf.Height)
	return e.FromPixels(buf), nil
}

// FromPixels synthesises the scheme of an already decoded image.
func (e *Extractor) FromPixels(buf *image.PixelBuffer) colour.Scheme {
	if buf == nil {
		return colour.Synthesize(nil)
	}
	ranked := e.config.Dominant(buf.Pix)
	e.logger.Debug("dominant colours ranked", "count", len(ranked), "colours", ranked)
	return colour.Synthesize(ranked)
}

// ExtractOrDefault is Extract with the decode step bounded by the configured
// timeout. On any load failure it logs a warning and returns the default scheme.
func (e *Extractor) ExtractOrDefault(ctx context.Context, ref string) Result {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	scheme, err := e.Extract(ctx, ref)
	if err != nil {
		e.logger.Warn("logo could not be loaded, applying default scheme", "ref", ref, "error", err)
		return Result{Scheme: colour.DefaultScheme(), Fallback: true, Err: err}
	}
	return Result{Scheme: scheme}
}
