package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/serviceplanpro/brandcolour/internal/api"
	"github.com/serviceplanpro/brandcolour/internal/branding"
	"github.com/serviceplanpro/brandcolour/internal/colour"
	"github.com/serviceplanpro/brandcolour/internal/config"
	"github.com/serviceplanpro/brandcolour/internal/datastore"
	"github.com/serviceplanpro/brandcolour/internal/image"
	"github.com/serviceplanpro/brandcolour/internal/logging"
	"github.com/serviceplanpro/brandcolour/internal/security"
)

type serveOptions struct {
	envFile string
	addr    string
}

func newServeCmd(g *globalOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the branding HTTP API",
		Long: `Run the HTTP API used by the branding settings page.

Settings are read from the environment, optionally seeded from an env file:
HTTP_PORT, DB_TYPE (sqlite or postgres), DB_DSN, SQLITE_PATH,
FETCH_TIMEOUT_SECONDS, LOAD_TIMEOUT_SECONDS, MAX_IMAGE_BYTES, MAX_IMAGE_PIXELS,
SAMPLE_STRIDE, ALLOWED_ORIGINS and DEV_MODE. DEV_MODE=true allows plain http
and private-network logo URLs and should only be set for local development.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, o)
		},
	}

	cmd.Flags().StringVar(&o.envFile, "env-file", ".env", "env file to load before reading the environment")
	cmd.Flags().StringVar(&o.addr, "addr", "", "listen address (overrides HTTP_PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, g *globalOptions, o *serveOptions) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if o.addr != "" {
		cfg.HTTPPort = o.addr
	}

	logger := logging.New(logging.Options{
		Name:    "brandcolour-api",
		Verbose: g.verbose,
		Quiet:   g.quiet,
		JSON:    g.logJSON || cfg.LogJSON,
		Output:  cmd.ErrOrStderr(),
	})

	db, err := datastore.Open(cfg.DatabaseType, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	loader := image.NewURLLoader(cfg.FetchTimeout, cfg.MaxImageBytes).WithPolicy(security.PolicyFor(cfg.DevMode))
	loader.MaxPixels = cfg.MaxImagePixels

	extractor, err := branding.NewExtractor(
		loader,
		branding.WithConfig(colour.ExtractorConfig{SampleStride: cfg.SampleStride, MaxColours: colour.MaxRankedColours}),
		branding.WithTimeout(cfg.LoadTimeout),
		branding.WithLogger(logger.Named("extractor")),
	)
	if err != nil {
		return err
	}

	app := &api.Application{
		Config:       cfg,
		Extractor:    extractor,
		BrandingRepo: datastore.NewBrandingDatabase(db),
		Logger:       logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Serve(ctx)
}
