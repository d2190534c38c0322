package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/serviceplanpro/brandcolour/internal/branding"
	"github.com/serviceplanpro/brandcolour/internal/image"
)

// DefaultDebounce coalesces the burst of events an editor emits per save.
const DefaultDebounce = 200 * time.Millisecond

type watchOptions struct {
	extraction extractionFlags
	out        outputFlags
	debounce   time.Duration
}

func newWatchCmd(g *globalOptions) *cobra.Command {
	o := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <image>",
		Short: "Re-extract the scheme whenever a logo file changes",
		Long: `Watch a logo file and print a fresh scheme after every change.

Each change starts a new extraction. If an older extraction finishes after
a newer one was started, its result is discarded, so the printed scheme
always belongs to the latest version of the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], g, o)
		},
	}

	o.extraction.register(cmd.Flags())
	o.out.register(cmd.Flags())
	cmd.Flags().DurationVar(&o.debounce, "debounce", DefaultDebounce, "delay between a change and the extraction it triggers")
	return cmd
}

func runWatch(cmd *cobra.Command, path string, g *globalOptions, o *watchOptions) error {
	logger := g.logger(cmd, "watch")
	if !image.IsImageFile(path) {
		logger.Warn("file extension is not a recognised image format", "path", path, "supported", image.SupportedImageExtensions())
	}

	extractor, err := o.extraction.newExtractor(logger)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file on save are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching logo", "path", path)

	w := &logoWatcher{
		path:      filepath.Clean(path),
		debounce:  o.debounce,
		extractor: extractor,
		logger:    logger,
		emit: func(r branding.Result) error {
			out, err := o.out.render(cmd, r.Scheme)
			if err != nil {
				return err
			}
			return o.out.write(cmd, out)
		},
	}
	return w.run(ctx, watcher.Events, watcher.Errors)
}

// logoWatcher re-runs extraction for one file and emits only the newest result.
type logoWatcher struct {
	path      string
	debounce  time.Duration
	extractor *branding.Extractor
	logger    hclog.Logger
	session   branding.Session
	emit      func(branding.Result) error
}

type watchResult struct {
	seq    uint64
	result branding.Result
}

func (w *logoWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	results := make(chan watchResult)
	start := func() {
		seq := w.session.Begin()
		go func() {
			r := w.extractor.ExtractOrDefault(ctx, w.path)
			select {
			case results <- watchResult{seq: seq, result: r}:
			case <-ctx.Done():
			}
		}()
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	start()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.logger.Debug("logo changed", "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timer.C:
			start()

		case r := <-results:
			if !w.session.Apply(r.seq, r.result) {
				w.logger.Debug("discarding stale result", "seq", r.seq)
				continue
			}
			if err := w.emit(r.result); err != nil {
				return err
			}
		}
	}
}
