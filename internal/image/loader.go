// Package image decodes logo images into raw RGBA pixel buffers.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "github.com/gen2brain/avif" // Register AVIF format
	_ "golang.org/x/image/bmp"    // Register BMP format
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/serviceplanpro/brandcolour/internal/security"
	httputil "github.com/serviceplanpro/brandcolour/internal/util/http"
)

// ErrLoadFailure is matched by every error a Decoder returns.
var ErrLoadFailure = errors.New("image load failure")

// LoadError reports that an image reference could not be fetched or decoded.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %q: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports ErrLoadFailure as a match so callers need not know the concrete type.
func (e *LoadError) Is(target error) bool { return target == ErrLoadFailure }

func loadFailure(ref string, err error) error {
	return &LoadError{Ref: ref, Err: err}
}

// PixelBuffer is a decoded image as row-major, non-premultiplied RGBA bytes.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer converts any decoded image to a PixelBuffer.
// Tightly packed NRGBA images anchored at the origin are used without copying.
func NewPixelBuffer(img image.Image) *PixelBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*w {
		return &PixelBuffer{Width: w, Height: h, Pix: n.Pix[:4*w*h]}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &PixelBuffer{Width: w, Height: h, Pix: dst.Pix}
}

// Decoder resolves an image reference to pixels.
// Every error it returns matches ErrLoadFailure.
type Decoder interface {
	Decode(ctx context.Context, ref string) (*PixelBuffer, error)
}

// DefaultMaxPixels caps the decoded area of a logo (4096x4096).
const DefaultMaxPixels int64 = 4096 * 4096

// ErrTooManyPixels is returned when an image's declared dimensions exceed
// the pixel limit.
var ErrTooManyPixels = errors.New("image exceeds the pixel limit")

// DecodeReader decodes any registered format from r.
// Supported formats: PNG, JPEG, GIF, WebP, BMP, TIFF, AVIF.
//
// The header is read first and images declaring more than maxPixels pixels
// are rejected before any pixel data is decoded; maxPixels <= 0 selects
// DefaultMaxPixels. DecodeReader returns as soon as ctx ends, abandoning the
// bounded decode still in flight.
func DecodeReader(ctx context.Context, r io.Reader, maxPixels int64) (*PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	var header bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%s image is %dx%d, limit %d pixels: %w", format, cfg.Width, cfg.Height, maxPixels, ErrTooManyPixels)
	}

	type decoded struct {
		buf *PixelBuffer
		err error
	}
	done := make(chan decoded, 1)
	go func() {
		img, format, err := image.Decode(io.MultiReader(&header, r))
		switch {
		case err != nil:
			done <- decoded{err: fmt.Errorf("failed to decode image (format: %s): %w", format, err)}
		case img.Bounds().Empty():
			done <- decoded{err: fmt.Errorf("image has no pixels")}
		case ctx.Err() != nil:
			done <- decoded{err: ctx.Err()}
		default:
			done <- decoded{buf: NewPixelBuffer(img)}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case d := <-done:
		return d.buf, d.err
	}
}

// FileLoader loads images from the local filesystem.
type FileLoader struct {
	// MaxPixels caps the decoded area; zero selects DefaultMaxPixels.
	MaxPixels int64
}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Decode loads an image from a file path.
func (l *FileLoader) Decode(ctx context.Context, path string) (*PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadFailure(path, err)
	}
	if path == "" {
		return nil, loadFailure(path, fmt.Errorf("image path cannot be empty"))
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, loadFailure(path, fmt.Errorf("image file not found: %w", err))
		}
		return nil, loadFailure(path, fmt.Errorf("failed to stat image file: %w", err))
	}
	if info.IsDir() {
		return nil, loadFailure(path, fmt.Errorf("path is a directory, not a file"))
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, loadFailure(path, fmt.Errorf("failed to open image file: %w", err))
	}
	defer file.Close()

	buf, err := DecodeReader(ctx, file, l.MaxPixels)
	if err != nil {
		return nil, loadFailure(path, err)
	}
	return buf, nil
}

// URLLoader fetches images over HTTP(S).
type URLLoader struct {
	Options httputil.FetchOptions
	// MaxPixels caps the decoded area; zero selects DefaultMaxPixels.
	MaxPixels int64

	policy *security.LogoURLPolicy
}

// NewURLLoader creates a URLLoader with the given fetch timeout and size cap.
// Zero values select the httputil defaults.
func NewURLLoader(timeout time.Duration, maxBytes int64) *URLLoader {
	return &URLLoader{Options: httputil.FetchOptions{
		Timeout:  timeout,
		MaxBytes: maxBytes,
		Headers:  map[string]string{"Accept": "image/*"},
	}}
}

// WithPolicy restricts the loader to URLs accepted by p. The policy is
// checked before the request, on every redirect, and against each address
// the connection dials, so hostnames resolving to private addresses fail too.
func (l *URLLoader) WithPolicy(p security.LogoURLPolicy) *URLLoader {
	l.policy = &p
	l.Options.CheckRedirect = p.CheckRedirect
	l.Options.DialControl = p.DialControl
	return l
}

// Decode fetches and decodes an image from an HTTP(S) URL.
func (l *URLLoader) Decode(ctx context.Context, url string) (*PixelBuffer, error) {
	if !IsURL(url) {
		return nil, loadFailure(url, fmt.Errorf("not an HTTP(S) URL"))
	}
	if l.policy != nil {
		if err := l.policy.ValidateLogoURL(url); err != nil {
			return nil, loadFailure(url, err)
		}
	}
	data, err := httputil.Fetch(ctx, url, l.Options)
	if err != nil {
		return nil, loadFailure(url, fmt.Errorf("failed to fetch image from URL: %w", err))
	}
	buf, err := DecodeReader(ctx, bytes.NewReader(data), l.MaxPixels)
	if err != nil {
		return nil, loadFailure(url, err)
	}
	return buf, nil
}

// BytesDecoder decodes images already held in memory, such as uploads.
// The reference passed to Decode is only used in error messages.
type BytesDecoder struct {
	Data []byte
	// MaxPixels caps the decoded area; zero selects DefaultMaxPixels.
	MaxPixels int64
}

// Decode decodes the held bytes.
func (d BytesDecoder) Decode(ctx context.Context, ref string) (*PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadFailure(ref, err)
	}
	if len(d.Data) == 0 {
		return nil, loadFailure(ref, fmt.Errorf("empty image data"))
	}
	buf, err := DecodeReader(ctx, bytes.NewReader(d.Data), d.MaxPixels)
	if err != nil {
		return nil, loadFailure(ref, err)
	}
	return buf, nil
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	urlLoader  *URLLoader
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(urlLoader *URLLoader) *SmartLoader {
	if urlLoader == nil {
		urlLoader = NewURLLoader(0, 0)
	}
	return &SmartLoader{
		fileLoader: &FileLoader{MaxPixels: urlLoader.MaxPixels},
		urlLoader:  urlLoader,
	}
}

// Decode loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Decode(ctx context.Context, ref string) (*PixelBuffer, error) {
	if IsURL(ref) {
		return l.urlLoader.Decode(ctx, ref)
	}
	return l.fileLoader.Decode(ctx, ref)
}

// IsURL reports whether ref is an HTTP(S) URL.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".avif"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ValidateImageRef checks that ref is an HTTP(S) URL or an existing regular file.
// URLs are not fetched here to avoid double-fetching.
func ValidateImageRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	if IsURL(ref) {
		return nil
	}

	info, err := os.Stat(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", ref)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", ref)
	}
	return nil
}
