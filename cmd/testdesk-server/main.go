package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/testdesk/internal/api"
	"github.com/good-yellow-bee/testdesk/internal/api/health"
	"github.com/good-yellow-bee/testdesk/internal/logger"
	"github.com/good-yellow-bee/testdesk/internal/metrics"
	"github.com/good-yellow-bee/testdesk/internal/notifier"
	"github.com/good-yellow-bee/testdesk/internal/state"
	"github.com/good-yellow-bee/testdesk/internal/storage"
	"github.com/good-yellow-bee/testdesk/internal/workflow"
	"github.com/good-yellow-bee/testdesk/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "testdesk-server",
	Short: "TestDesk Server - test-service coordination backend",
	Long: `TestDesk Server keeps the member roster, project workflow, ledger and
notifications of a test-service team and exposes them over a JSON API.`,
	SilenceUsage: true,
	RunE:         runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("testdesk-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var (
		cfg *Config
		err error
	)

	// Load configuration from file if provided
	if configFile != "" {
		cfg, err = LoadConfig(configFile)
	} else {
		cfg, err = DefaultConfig()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.Address = httpAddr
	}
	cfg.Verbose = verbose
	if verbose {
		cfg.Log.Level = "debug"
	}

	log := logger.New(cfg.Log)
	metrics.SetBuildInfo(config.Version, config.Commit, config.BuildTime)

	kv, err := openStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer kv.Close()
	log.Info().Str("driver", cfg.Storage.Driver).Str("path", cfg.Storage.Path).Msg("storage initialized")

	dispatcher := notifier.NewDispatcher(dispatcherConfig(cfg.Notifications), log.With().Str("component", "notifier").Logger())
	if err := applyNotifications(dispatcher, cfg.Notifications); err != nil {
		return fmt.Errorf("configure notifications: %w", err)
	}
	defer dispatcher.Close()

	var confirmer state.AssignmentConfirmer = state.InstantConfirmer{}
	if cfg.Assignment.ConfirmDelay > 0 {
		confirmer = state.DelayConfirmer{Delay: cfg.Assignment.ConfirmDelay}
	}

	// Setup signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := state.Open(ctx, kv, state.Config{
		Engine:    workflow.New(workflow.WithSuggestionSize(cfg.Assignment.SuggestionSize)),
		Publisher: dispatcher,
		Confirmer: confirmer,
		Logger:    log.With().Str("component", "state").Logger(),
	})
	if err != nil {
		return err
	}

	srv, err := api.New(&api.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimitPerIP:  cfg.Server.RateLimitPerIP,
		NotificationTTL: cfg.Notifications.DisplayDuration,
		Verbose:         cfg.Verbose,
	}, store, log)
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}
	srv.RegisterHealthChecker(health.NewStorageChecker(cfg.Storage.Driver, kv))
	srv.RegisterHealthChecker(health.NewFuncChecker("notifier_queue", func(context.Context) error {
		if queued, capacity := dispatcher.Backlog(); queued >= capacity {
			return fmt.Errorf("notification queue full (%d)", capacity)
		}
		return nil
	}))

	log.Info().Str("version", config.Version).Msg("starting testdesk-server")

	dispatcher.Start(ctx)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gCtx) })
	if !cfg.Metrics.Disabled {
		ms := metrics.NewServer(cfg.Metrics.Address, log)
		g.Go(func() error { return ms.Run(gCtx) })
	}
	if configFile != "" {
		w := newConfigWatcher(configFile, func(next *Config) error {
			return applyNotifications(dispatcher, next.Notifications)
		}, log)
		g.Go(func() error { return w.Run(gCtx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func openStorage(c StorageConfig, log zerolog.Logger) (storage.KV, error) {
	// Auto-create data directory
	if c.Driver == storage.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	storeLog := log.With().Str("component", "storage").Logger()
	kv, err := storage.Open(storage.Options{
		Driver:     c.Driver,
		Path:       c.Path,
		GCInterval: c.GCInterval,
		Logger:     &storeLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return kv, nil
}
