package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ShutdownTimeout bounds graceful shutdown once ctx is cancelled.
const ShutdownTimeout = 5 * time.Second

// Serve listens on the configured port until ctx is cancelled, then drains
// in-flight requests.
func (app *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         app.Config.HTTPPort,
		Handler:      app.BuildRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: app.Config.LoadTimeout + 15*time.Second,
	}
	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()
		app.Logger.Info("shutting down server", "reason", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	app.Logger.Info("starting server", "addr", app.Config.HTTPPort, "database", app.Config.DatabaseType)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	app.Logger.Info("stopped server", "addr", app.Config.HTTPPort)
	return nil
}
