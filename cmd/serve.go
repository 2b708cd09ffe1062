package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/recordroom/vinyl-lister/internal/batch"
	"github.com/recordroom/vinyl-lister/internal/cataloging"
	"github.com/recordroom/vinyl-lister/internal/config"
	"github.com/recordroom/vinyl-lister/internal/csvexport"
	"github.com/recordroom/vinyl-lister/internal/drive"
	"github.com/recordroom/vinyl-lister/internal/handlers"
	"github.com/recordroom/vinyl-lister/internal/imagehost"
	"github.com/recordroom/vinyl-lister/internal/listing"
	"github.com/recordroom/vinyl-lister/internal/sheets"
	"github.com/recordroom/vinyl-lister/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var profilePath string
	var staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the listing web server",
		Long: `Starts the vinyl-lister web interface on the specified port.

Submit a Google Drive folder with one subfolder of photos per record. Each
record is identified in the background, then confirmed in the browser and
exported as a bulk-upload CSV.`,
		Example: `  # Start server on default port 3000
  vinyl-lister serve

  # Start server with a custom listing profile
  vinyl-lister serve --port 8080 --profile ./profile.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromEnv()
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

			if profilePath == "" {
				profilePath = cfg.ProfilePath
			}
			profile, err := config.LoadProfile(profilePath)
			if err != nil {
				return err
			}

			files, err := drive.New(ctx, cfg.CredentialsFile, cfg.ProcessedMarker)
			if err != nil {
				return err
			}

			var source batch.ConfigSource = config.StaticSource{Profile: profile}
			if cfg.SpreadsheetID != "" {
				source, err = sheets.New(ctx, cfg.CredentialsFile, cfg.SpreadsheetID, cfg.CategoriesRange, cfg.ShippingRange)
				if err != nil {
					return err
				}
			}

			host, err := imagehost.FromConfig(ctx, cfg)
			if err != nil {
				return err
			}

			publicBaseURL := cfg.PublicBaseURL
			if publicBaseURL == "" {
				publicBaseURL = "http://localhost:" + port
			}

			store := storage.New()
			analyzer := cataloging.NewService(cfg.AnalyzerProvider, cfg.AnalyzerModel)
			proc := batch.New(store, files, source, analyzer, host, batch.Options{
				PublicBaseURL: publicBaseURL,
				MaxConcurrent: cfg.MaxConcurrentRecords,
			})

			handler := handlers.New(handlers.Options{
				Store:     store,
				Processor: proc,
				Saver:     listing.NewGateway(store, files, cfg.ProcessedMarker),
				Images:    files,
				Exporter:  csvexport.New(profile),
				StaticDir: staticDir,
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("vinyl-lister interface available",
					"addr", addr,
					"url", publicBaseURL,
					"provider", analyzer.Provider(),
					"model", analyzer.Model(),
					"image_host", cfg.ImageHost)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return fmt.Errorf("server failed: %w", err)
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", envOr("PORT", "3000"), "Port to listen on")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Listing profile YAML (defaults to LISTING_PROFILE)")
	cmd.Flags().StringVar(&staticDir, "static", "static", "Directory holding the browser UI")

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
