// Package cli provides the command-line interface for brandcolour.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/serviceplanpro/brandcolour/internal/logging"
	"github.com/serviceplanpro/brandcolour/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose bool
	quiet   bool
	logJSON bool
}

// logger builds a logger writing to the command's stderr.
func (g *globalOptions) logger(cmd *cobra.Command, name string) hclog.Logger {
	return logging.New(logging.Options{
		Name:    name,
		Verbose: g.verbose,
		Quiet:   g.quiet,
		JSON:    g.logJSON,
		Output:  cmd.ErrOrStderr(),
	})
}

// NewRootCmd builds the command tree. Each call returns independent flag state.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "brandcolour",
		Short: "Derive a widget colour scheme from a company logo",
		Long: `brandcolour samples a company logo, finds its dominant colours and
synthesises the five-colour scheme used to theme the booking widget.

When a logo cannot be loaded the default ServicePlan Pro scheme is used
instead, so a company can always preview and save its branding.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "write logs as JSON")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newExtractCmd(g),
		newDefaultCmd(),
		newWatchCmd(g),
		newServeCmd(g),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
