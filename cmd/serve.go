// =============================================================================
// Payhawk Bundle Converter - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes the converter over
// HTTP (see internal/api for the routes).
//
// COMMAND USAGE:
//   converter serve [--addr :8080]
//
// The configured schema template, when present, is the default for requests
// that do not upload one. Converted archives are kept for server.result_ttl.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/api"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default: server.listen_addr)")
}

func runServe(cmd *cobra.Command) error {
	rt, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	template, err := rt.converter.LoadTemplate("")
	if err != nil {
		rt.logger.Warn("No default schema template (%v); requests must upload one", err)
		template = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := api.NewResultCache(rt.cfg.Server.ResultTTL)
	cache.StartJanitor(ctx, time.Minute)

	server := api.NewServer(rt.converter, template, cache, rt.logger, Version)
	app := server.App(rt.cfg.Server.MaxUploadMB)

	addr := rt.cfg.Server.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	errs := make(chan error, 1)
	go func() {
		rt.logger.Info("Listening on %s", addr)
		errs <- app.Listen(addr)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		rt.logger.Info("Shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
