package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bkarpinos/linkvault/internal/server"
)

// Serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with the JSON API and go/<id> redirects",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg := cfg.Server
		if cmd.Flags().Changed("port") {
			serverCfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("not-found") {
			serverCfg.NotFoundURL, _ = cmd.Flags().GetString("not-found")
		}
		if err := serverCfg.Validate(); err != nil {
			return err
		}

		// Create the server
		srv := server.NewServer(lib, xfer, serverCfg, cfg.Backend, log.Logger.With().Str("component", "server").Logger())

		// Handle graceful shutdown
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		errs := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()

		log.Info().Int("port", serverCfg.Port).Str("backend", cfg.Backend).Msg("server started")

		select {
		case err := <-errs:
			return fmt.Errorf("server error: %w", err)
		case <-stop:
		}

		// Shutdown gracefully with timeout
		log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error during server shutdown")
		}

		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	// Add flags for the serve command
	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on (overrides server.port)")
	serveCmd.Flags().String("not-found", "", "URL to redirect to when a go link is not found (optional)")
}
