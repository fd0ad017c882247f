// Package server runs the HTTP API until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"vram-calculator/api/rest/routes"
	"vram-calculator/config"
	"vram-calculator/core/estimator"
	"vram-calculator/core/monitoring"
	"vram-calculator/core/optimizer"
	"vram-calculator/providers/aws"
)

// NewRouter builds the API router from configuration
func NewRouter(ctx context.Context, cfg config.Config) (*mux.Router, error) {
	opts := routes.Options{
		Estimator: estimator.New(nil),
		Metrics:   monitoring.NewMetricsExporter(),
		Language:  cfg.Language(),
	}

	// Initialize AWS instance lookup
	if cfg.AWSLookupEnabled {
		awsClient, err := aws.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS client: %w", err)
		}
		opts.Instances = optimizer.NewPricingFetcher(awsClient)
		log.Info().Str("region", cfg.AWSRegion).Msg("AWS instance lookup enabled")
	}

	r := mux.NewRouter()
	routes.SetupRoutes(r, opts)
	return r, nil
}

// Run serves the API on cfg.ServerPort and shuts down gracefully once ctx is done
func Run(ctx context.Context, cfg config.Config) error {
	r, err := NewRouter(ctx, cfg)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.ServerPort, err)
	}
	return Serve(ctx, listener, r, cfg)
}

// Serve serves handler on listener until ctx is done
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, cfg config.Config) error {
	server := &http.Server{Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("Starting server")
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server exited")
	return nil
}
