// Package logging builds the hclog loggers shared by the CLI and the API server.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options configures a logger.
type Options struct {
	Name    string
	Verbose bool
	Quiet   bool
	JSON    bool
	Output  io.Writer
}

// New creates a logger. Verbose selects Debug, Quiet selects Error, otherwise Info.
// Output defaults to stderr so stdout stays clean for scheme output.
func New(opts Options) hclog.Logger {
	level := hclog.Info
	switch {
	case opts.Verbose:
		level = hclog.Debug
	case opts.Quiet:
		level = hclog.Error
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            opts.Name,
		Output:          output,
		Level:           level,
		JSONFormat:      opts.JSON,
		IncludeLocation: opts.Verbose,
	})
}

// OrNull returns l, or a logger that discards everything when l is nil.
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
