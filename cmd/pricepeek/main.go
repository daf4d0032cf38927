package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wishlens/pricepeek/internal/api"
	"github.com/wishlens/pricepeek/internal/config"
	"github.com/wishlens/pricepeek/internal/extract"
	"github.com/wishlens/pricepeek/internal/fetcher"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "pricepeek",
		Short: "pricepeek — product metadata extraction for wishlists",
		Long: `pricepeek fetches an arbitrary product URL and derives a best-effort
title, representative image, and numeric price, tolerant of inconsistent,
redundant, or missing markup across e-commerce sites.

Features:
  • JSON-LD structured-data traversal at arbitrary nesting depth
  • Open Graph / Twitter card / itemprop fallback chains
  • Heuristic image scoring (product shots over logos and icons)
  • Locale-ambiguous price normalization ("1.234,56" and "1,234.56" both work)
  • One-shot CLI extraction or an HTTP API for the wishlist frontend`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// extractCmd runs a single extraction and prints the result as JSON.
func extractCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "extract [url]",
		Short: "Extract product metadata from a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			f := fetcher.New(&cfg.Fetcher, logger)
			defer f.Close()
			extractor := extract.New(f, logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			meta, err := extractor.ProductData(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "overall extraction timeout")
	return cmd
}

// serveCmd starts the HTTP API.
func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			f := fetcher.New(&cfg.Fetcher, logger)
			defer f.Close()
			extractor := extract.New(f, logger)
			srv := api.NewServer(&cfg.Server, extractor, logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("shutting down", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pricepeek", config.Version)
		},
	}
}

// configCmd prints the effective configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

// setup loads config and builds the root logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	level := parseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return cfg, slog.New(handler), nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
