package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/webbee/authd/internal/logger"
	"github.com/webbee/authd/pkg/api"
	"github.com/webbee/authd/pkg/config"
	"github.com/webbee/authd/pkg/identity/store"
	"github.com/webbee/authd/pkg/metrics"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the authd server",
	Long: `Start the authd identity server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/authd/config.yaml.

Examples:
  # Start with default config location
  authd start

  # Start with custom config file
  authd start --config /etc/authd/config.yaml

  # Start with environment variable overrides
  AUTHD_LOGGING_LEVEL=DEBUG authd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize identity store (runs schema migration)
	identityStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize identity store: %w", err)
	}
	defer func() {
		if err := identityStore.Close(); err != nil {
			logger.Error("identity store close error", "error", err)
		}
	}()

	// Seed reference data and the bootstrap admin account
	if err := identityStore.EnsureDefaultRoles(ctx); err != nil {
		return fmt.Errorf("failed to ensure default roles: %w", err)
	}
	created, err := identityStore.EnsureAdminUser(ctx, cfg.Admin.Password, cfg.Admin.Email)
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}
	if created {
		logger.Info("Bootstrap admin account created", "username", store.AdminUsername)
	}

	// Initialize metrics (if enabled)
	var metricsServer *metrics.Server
	var authMetrics *metrics.AuthMetrics
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics)
		authMetrics = metrics.NewAuthMetrics(metricsServer.Registry())
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Create API server
	apiServer, err := api.NewServer(cfg.API, identityStore, authMetrics)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}
	logger.Info("API server configured", "port", cfg.API.Port)

	// Run servers until a signal arrives or one of them fails
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return apiServer.Start(groupCtx)
	})

	if metricsServer != nil {
		group.Go(func() error {
			return metricsServer.Start(groupCtx)
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()
	case <-groupCtx.Done():
		signal.Stop(sigChan)
	}

	if err := group.Wait(); err != nil {
		logger.Error("Server shutdown error", "error", err)
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
