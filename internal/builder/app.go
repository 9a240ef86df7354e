package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App is the HTTP API process: server, background turns and the resources
// released after them.
type App struct {
	server  *http.Server
	drain   func()
	closers []func()
	logger  *zap.Logger
}

// Run serves until SIGINT/SIGTERM or a listener failure, then shuts down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errChan:
		a.logger.Error("Server error", zap.Error(serveErr))
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	return errors.Join(serveErr, a.shutdown())
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")
	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
	}

	a.logger.Info("Waiting for background turns")
	a.drain()

	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	a.logger.Info("Application stopped")
	_ = a.logger.Sync()
	return err
}
