package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/serviceplanpro/brandcolour/internal/branding"
	"github.com/serviceplanpro/brandcolour/internal/colour"
	"github.com/serviceplanpro/brandcolour/internal/image"
	httputil "github.com/serviceplanpro/brandcolour/internal/util/http"
)

// extractionFlags configure how a logo is loaded and sampled.
type extractionFlags struct {
	stride    int
	timeout   time.Duration
	maxBytes  int64
	maxPixels int64
}

func (f *extractionFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.stride, "stride", colour.DefaultSampleStride, "sample every Nth pixel (1-64)")
	fs.DurationVar(&f.timeout, "timeout", branding.DefaultLoadTimeout, "maximum time allowed to load the logo")
	fs.Int64Var(&f.maxBytes, "max-bytes", httputil.DefaultMaxBytes, "maximum size of a logo fetched from a URL")
	fs.Int64Var(&f.maxPixels, "max-pixels", image.DefaultMaxPixels, "maximum width times height of a decoded logo")
}

// newExtractor builds an extractor over local files and URLs.
func (f *extractionFlags) newExtractor(logger hclog.Logger) (*branding.Extractor, error) {
	urlLoader := image.NewURLLoader(f.timeout, f.maxBytes)
	urlLoader.MaxPixels = f.maxPixels
	loader := image.NewSmartLoader(urlLoader)
	return branding.NewExtractor(loader,
		branding.WithConfig(colour.ExtractorConfig{SampleStride: f.stride, MaxColours: colour.MaxRankedColours}),
		branding.WithTimeout(f.timeout),
		branding.WithLogger(logger),
	)
}

// outputFlags select how a scheme is rendered and where it goes.
type outputFlags struct {
	format  string
	output  string
	preview bool
}

func (f *outputFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.format, "format", "f", string(branding.FormatText), "output format (text, json, css)")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.BoolVar(&f.preview, "preview", false, "always show colour swatches in text output")
}

// render formats the scheme. Swatches are shown when forced, or when text
// goes straight to a terminal.
func (f *outputFlags) render(cmd *cobra.Command, s colour.Scheme) (string, error) {
	format, err := branding.ParseFormat(f.format)
	if err != nil {
		return "", err
	}
	preview := f.preview || (f.output == "" && isTerminal(cmd))
	return branding.Render(s, format, preview)
}

// write sends rendered output to the output file or the command's stdout.
func (f *outputFlags) write(cmd *cobra.Command, out string) error {
	if f.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(f.output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func isTerminal(cmd *cobra.Command) bool {
	file, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
