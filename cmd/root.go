package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"docs-server/core/config"
	"docs-server/core/loader"
	"docs-server/core/logger"
	"docs-server/core/server"
	"docs-server/feature/assets"
	"docs-server/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// NewRootCmd builds the docs-server command tree. Running the root command
// starts the static asset server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs-server",
		Short: "Static documentation server",
		Long: `docs-server serves a directory of pre-built API documentation assets
(a Swagger UI bundle and its OpenAPI documents) under a configurable URL prefix.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}

	cmd.Flags().StringP("mount-path", "m", server.DefaultMountPath,
		`The root mount path to listen on, ex: --mount-path=/docs would mount the "public" directory on https://example.com/docs`)
	cmd.Flags().IntP("port", "p", server.DefaultPort, "The port to bind to and listen on")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln(c.UsageString())
		return fmt.Errorf("%w: %w", server.ErrInvalidArgument, err)
	})

	cmd.AddCommand(newIntegrityCmd(), newMirrorCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		// Console format with the debug config gives ISO8601 timestamps on the CLI
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".", cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg, err := cfg.Server.Normalize()
	if err != nil {
		if errors.Is(err, server.ErrInvalidArgument) {
			cmd.PrintErrln(cmd.UsageString())
		}
		return err
	}

	// 2. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("%w: failed to create logger: %w", server.ErrInvalidArgument, err)
	}
	defer logg.Sync()
	logg = logger.WithInstance(logg)
	zap.ReplaceGlobals(logg)

	if _, err := maxprocs.Set(maxprocs.Logger(logg.Sugar().Infof)); err != nil {
		logg.Warn("Failed to set GOMAXPROCS", zap.Error(err))
	}

	// A missing bundle is not fatal: requests answer 404 until it appears.
	if err := checks.CheckDirectory(serverCfg.AssetDir); err != nil {
		logg.Warn("Static asset directory is not usable", zap.String("dir", serverCfg.AssetDir), zap.Error(err))
	}

	// 3. Initialize Server and Features
	srv := server.New(serverCfg, logg)

	mgr := loader.NewManager()
	mgr.Register(assets.NewFeature(serverCfg.MountPath, http.Dir(serverCfg.AssetDir)))

	if err := srv.Mount(mgr); err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}

	// 4. Serve until interrupted
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
