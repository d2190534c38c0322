package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serviceplanpro/brandcolour/internal/colour"
	"github.com/serviceplanpro/brandcolour/internal/image"
)

type extractOptions struct {
	extraction extractionFlags
	out        outputFlags
	fallback   bool
}

func newExtractCmd(g *globalOptions) *cobra.Command {
	o := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <image|url>",
		Short: "Extract a widget colour scheme from a logo",
		Long: `Extract the widget colour scheme from a logo file or HTTP(S) URL.

The logo is sampled, its pixels are bucketed into a coarse palette, and the
five most frequent buckets drive the primary, secondary and accent colours.
Text and background colours follow from the primary's lightness.

Supported image formats: JPEG, PNG, GIF, WebP, BMP, TIFF, AVIF

Examples:
  # Print the scheme for a local logo
  brandcolour extract logo.png

  # Fetch a logo and emit CSS custom properties
  brandcolour extract --format css https://acme-hvac.example/logo.png

  # Never fail: use the default scheme when the logo cannot be loaded
  brandcolour extract --fallback --format json logo.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], g, o)
		},
	}

	o.extraction.register(cmd.Flags())
	o.out.register(cmd.Flags())
	cmd.Flags().BoolVar(&o.fallback, "fallback", false, "use the default scheme when the logo cannot be loaded")
	return cmd
}

func runExtract(cmd *cobra.Command, ref string, g *globalOptions, o *extractOptions) error {
	logger := g.logger(cmd, "extract")

	if !o.fallback {
		if err := image.ValidateImageRef(ref); err != nil {
			return fmt.Errorf("invalid image reference: %w", err)
		}
	}

	extractor, err := o.extraction.newExtractor(logger)
	if err != nil {
		return err
	}

	logger.Debug("extracting scheme", "ref", ref, "stride", o.extraction.stride)

	var scheme colour.Scheme
	if o.fallback {
		scheme = extractor.ExtractOrDefault(cmd.Context(), ref).Scheme
	} else {
		ctx, cancel := context.WithTimeout(cmd.Context(), o.extraction.timeout)
		defer cancel()
		scheme, err = extractor.Extract(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to extract colours: %w", err)
		}
	}

	out, err := o.out.render(cmd, scheme)
	if err != nil {
		return err
	}
	if err := o.out.write(cmd, out); err != nil {
		return err
	}
	if o.out.output != "" {
		logger.Info("wrote scheme", "path", o.out.output)
	}
	return nil
}
