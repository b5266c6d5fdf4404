package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebAPI owns the HTTP server for the web UI.
type WebAPI struct {
	logger          *zap.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewWebAPI wires the handler into an http.Server using cfg.
func NewWebAPI(logger *zap.Logger, cfg *Config, version string) *WebAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &WebAPI{
		logger: logger,
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           NewHandler(logger, cfg.UploadSizeBytes(), version),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Start serves until ctx is cancelled, then drains outstanding requests.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info("starting server",
			zap.String("op", "server.Start"),
			zap.String("addr", w.server.Addr),
		)
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info("shutdown initiated", zap.String("op", "server.Start"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error("graceful shutdown failed",
				zap.String("op", "server.Start"),
				zap.Error(err),
			)
			return w.server.Close()
		}
	}

	return nil
}
