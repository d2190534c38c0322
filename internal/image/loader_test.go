package image

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serviceplanpro/brandcolour/internal/security"
)

// encodeTestPNG builds a 2x2 PNG: two blues, one white, one black.
func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 0x30, G: 0x50, B: 0xa0, A: 255})
	img.Set(1, 0, color.NRGBA{R: 0x30, G: 0x50, B: 0xa0, A: 255})
	img.Set(0, 1, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 255})
	img.Set(1, 1, color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// pngChunk frames data as a PNG chunk with its CRC.
func pngChunk(kind string, data []byte) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, uint32(len(data)))
	b.WriteString(kind)
	b.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	binary.Write(&b, binary.BigEndian, crc.Sum32())
	return b.Bytes()
}

// pngHeader returns the PNG signature and an 8-bit greyscale IHDR declaring
// w x h pixels, with no image data after it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth; colour type, compression, filter and interlace stay 0
	b := []byte("\x89PNG\r\n\x1a\n")
	return append(b, pngChunk("IHDR", ihdr)...)
}

func checkTestPixels(t *testing.T, buf *PixelBuffer) {
	t.Helper()
	if buf.Width != 2 || buf.Height != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", buf.Width, buf.Height)
	}
	if len(buf.Pix) != 16 {
		t.Fatalf("len(Pix) = %d, want 16", len(buf.Pix))
	}
	want := []uint8{
		0x30, 0x50, 0xa0, 255, 0x30, 0x50, 0xa0, 255,
		0xff, 0xff, 0xff, 255, 0x00, 0x00, 0x00, 255,
	}
	if !bytes.Equal(buf.Pix, want) {
		t.Errorf("Pix = %v, want %v", buf.Pix, want)
	}
}

func TestFileLoaderDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, encodeTestPNG(t), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	buf, err := NewFileLoader().Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	checkTestPixels(t, buf)
}

func TestFileLoaderFailures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(dir, "missing.png")},
		{"directory", dir},
		{"undecodable", garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileLoader().Decode(context.Background(), tt.path)
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if !errors.Is(err, ErrLoadFailure) {
				t.Errorf("error %v does not match ErrLoadFailure", err)
			}
			var loadErr *LoadError
			if !errors.As(err, &loadErr) || loadErr.Ref != tt.path {
				t.Errorf("error %v is not a LoadError for %q", err, tt.path)
			}
		})
	}
}

func TestURLLoaderDecode(t *testing.T) {
	data := encodeTestPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			if ua := r.Header.Get("User-Agent"); ua == "" {
				t.Error("missing User-Agent header")
			}
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		case "/text":
			w.Write([]byte("hello"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader := NewURLLoader(0, 0)

	buf, err := loader.Decode(context.Background(), server.URL+"/logo.png")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	checkTestPixels(t, buf)

	for _, path := range []string{"/missing.png", "/text"} {
		_, err := loader.Decode(context.Background(), server.URL+path)
		if !errors.Is(err, ErrLoadFailure) {
			t.Errorf("Decode(%s) error = %v, want ErrLoadFailure", path, err)
		}
	}
}

func TestURLLoaderMaxBytes(t *testing.T) {
	data := encodeTestPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	_, err := NewURLLoader(0, 8).Decode(context.Background(), server.URL)
	if !errors.Is(err, ErrLoadFailure) {
		t.Errorf("Decode() error = %v, want ErrLoadFailure", err)
	}
}

func TestURLLoaderCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewURLLoader(0, 0).Decode(ctx, server.URL)
	if !errors.Is(err, ErrLoadFailure) || !errors.Is(err, context.Canceled) {
		t.Errorf("Decode() error = %v, want ErrLoadFailure wrapping context.Canceled", err)
	}
}

func TestSmartLoaderDispatch(t *testing.T) {
	data := encodeTestPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := NewSmartLoader(nil)
	for _, ref := range []string{server.URL + "/logo.png", path} {
		buf, err := loader.Decode(context.Background(), ref)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", ref, err)
		}
		checkTestPixels(t, buf)
	}
}

func TestBytesDecoder(t *testing.T) {
	buf, err := BytesDecoder{Data: encodeTestPNG(t)}.Decode(context.Background(), "upload")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	checkTestPixels(t, buf)

	_, err = BytesDecoder{}.Decode(context.Background(), "upload")
	if !errors.Is(err, ErrLoadFailure) {
		t.Errorf("Decode() of empty data error = %v, want ErrLoadFailure", err)
	}
}

func TestDecodeRejectsOversizedDimensions(t *testing.T) {
	// A few dozen bytes that claim 400 megapixels.
	bomb := append(pngHeader(20000, 20000), pngChunk("IEND", nil)...)

	_, err := BytesDecoder{Data: bomb}.Decode(context.Background(), "upload")
	if !errors.Is(err, ErrLoadFailure) || !errors.Is(err, ErrTooManyPixels) {
		t.Errorf("Decode() error = %v, want ErrLoadFailure wrapping ErrTooManyPixels", err)
	}

	path := filepath.Join(t.TempDir(), "bomb.png")
	if err := os.WriteFile(path, bomb, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := NewFileLoader().Decode(context.Background(), path); !errors.Is(err, ErrTooManyPixels) {
		t.Errorf("FileLoader.Decode() error = %v, want ErrTooManyPixels", err)
	}
}

func TestDecodeMaxPixels(t *testing.T) {
	data := encodeTestPNG(t)

	tests := []struct {
		name      string
		maxPixels int64
		wantErr   bool
	}{
		{"default", 0, false},
		{"exact", 4, false},
		{"one short", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := BytesDecoder{Data: data, MaxPixels: tt.maxPixels}.Decode(context.Background(), "upload")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrTooManyPixels) {
				t.Errorf("Decode() error = %v, want ErrTooManyPixels", err)
			}
			if !tt.wantErr {
				checkTestPixels(t, buf)
			}
		})
	}
}

// stallingReader blocks until release is closed.
type stallingReader struct {
	release chan struct{}
}

func (r stallingReader) Read([]byte) (int, error) {
	<-r.release
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeReaderStopsOnCancel(t *testing.T) {
	stall := stallingReader{release: make(chan struct{})}
	defer close(stall.release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	// The header is valid, so decoding proceeds and then waits on the body.
	r := io.MultiReader(bytes.NewReader(pngHeader(2, 2)), stall)
	done := make(chan error, 1)
	go func() {
		_, err := DecodeReader(ctx, r, 0)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("DecodeReader() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DecodeReader() did not return after cancellation")
	}
}

func TestURLLoaderWithPolicy(t *testing.T) {
	var hits atomic.Int32
	data := encodeTestPNG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(data)
	}))
	defer server.Close()

	_, err := NewURLLoader(0, 0).WithPolicy(security.ProductionPolicy()).Decode(context.Background(), server.URL)
	if !errors.Is(err, ErrLoadFailure) {
		t.Errorf("Decode() under production policy error = %v, want ErrLoadFailure", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server was requested %d times under production policy, want 0", n)
	}

	buf, err := NewURLLoader(0, 0).WithPolicy(security.DevelopmentPolicy()).Decode(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Decode() under development policy error = %v", err)
	}
	checkTestPixels(t, buf)
}

func TestNewPixelBufferSharesPackedNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	buf := NewPixelBuffer(src)
	if &buf.Pix[0] != &src.Pix[0] {
		t.Error("packed NRGBA pixels were copied")
	}
	if !bytes.Equal(buf.Pix[4:], []uint8{1, 2, 3, 4}) {
		t.Errorf("Pix = %v", buf.Pix)
	}
}

func TestNewPixelBufferSubImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	buf := NewPixelBuffer(sub)
	if buf.Width != 2 || buf.Height != 2 {
		t.Fatalf("dimensions = %dx%d, want 2x2", buf.Width, buf.Height)
	}
	if got := buf.Pix[:4]; !bytes.Equal(got, []uint8{10, 20, 30, 255}) {
		t.Errorf("first pixel = %v, want [10 20 30 255]", got)
	}
}

func TestNewPixelBufferKeepsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 0})

	buf := NewPixelBuffer(src)
	if buf.Pix[3] != 0 {
		t.Errorf("alpha = %d, want 0", buf.Pix[3])
	}
}

func TestValidateImageRef(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		ref     string
		wantErr bool
	}{
		{"https://example.com/logo.png", false},
		{path, false},
		{"", true},
		{dir, true},
		{filepath.Join(dir, "nope.png"), true},
	}

	for _, tt := range tests {
		if err := ValidateImageRef(tt.ref); (err != nil) != tt.wantErr {
			t.Errorf("ValidateImageRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for path, want := range map[string]bool{
		"logo.PNG":  true,
		"logo.avif": true,
		"logo.webp": true,
		"logo.svg":  false,
		"logo":      false,
	} {
		if got := IsImageFile(path); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", path, got, want)
		}
	}
}
