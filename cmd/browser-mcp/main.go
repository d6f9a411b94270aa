package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"browser-mcp/internal/adapter/httpapi"
	"browser-mcp/internal/di"
	"browser-mcp/internal/infrastructure/env"
	"browser-mcp/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var flagEnvDir string

func main() {
	root := &cobra.Command{
		Use:   "browser-mcp",
		Short: "Headless browser automation over MCP",
		Long: `browser-mcp exposes a single headless browser page as MCP tools on stdio.

Screenshots are kept by the artifact store chosen with ARTIFACT_STORE:
  local   files under SCREENSHOTS_DIR, served by an embedded HTTP server
  remote  uploaded to IMAGE_SERVER (see the image-server command)
  memory  returned inline in the tool result`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVar(&flagEnvDir, "env-dir", ".", "directory holding .env files")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio (default)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "image-server",
		Short: "Run the standalone image upload server used by the remote store",
		RunE:  runImageServer,
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	envService := env.NewEnvServiceFrom(flagEnvDir)

	container, err := di.NewContainer(di.ConfigFromEnv(envService))
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		container.Close(ctx)
	}()
	for _, note := range envService.Notes {
		container.Logger.Debug(note)
	}

	ctx, stop := signalContext()
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return container.ServeMCP(gctx)
	})
	g.Go(func() error {
		return container.ServeArtifacts(gctx)
	})

	if err := g.Wait(); err != nil {
		container.Logger.Error("server stopped", "error", err)
		return err
	}
	container.Logger.Info("server stopped")
	return nil
}

func runImageServer(cmd *cobra.Command, args []string) error {
	envService := env.NewEnvServiceFrom(flagEnvDir)
	srvCfg, logCfg := di.ImageServerConfigFromEnv(envService)

	log, err := logger.NewLoggerAdapter("image-server", logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()
	if srvCfg.Token == "" {
		log.Warn("IMAGE_SERVER_TOKEN not set, upload and delete routes are unauthenticated")
	}

	ctx, stop := signalContext()
	defer stop()

	return httpapi.NewServer(srvCfg, log).Serve(ctx, nil)
}
