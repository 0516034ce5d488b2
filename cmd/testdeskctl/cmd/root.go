// Package cmd contains the CLI commands for testdeskctl.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/testdesk/internal/logger"
	"github.com/good-yellow-bee/testdesk/internal/state"
	"github.com/good-yellow-bee/testdesk/internal/storage"
	"github.com/good-yellow-bee/testdesk/internal/workflow"
)

// defaultDBPath is the default database path, can be overridden via TESTDESK_DB_PATH env var
var defaultDBPath = "./data/testdesk.db"

func init() {
	if envPath := os.Getenv("TESTDESK_DB_PATH"); envPath != "" {
		defaultDBPath = envPath
	}
}

var (
	// Used for flags
	verbose  bool
	output   string
	dbPath   string
	dbDriver string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "testdeskctl",
	Short: "TestDesk admin CLI",
	Long: `testdeskctl manages TestDesk state directly in its key-value store.

Every command runs the same workflow rules as the server, so a refused
action here is refused there too. Stop the server before writing to an
SQLite or Badger store it has open.

Examples:
  # Add a tester
  testdeskctl member add --name Alice --role tester

  # Create and approve a project with suggested testers
  testdeskctl project create --name "Login flow" --customer Acme
  testdeskctl project approve --id 1718000000000

  # Record a payment
  testdeskctl ledger receipt --project "Login flow" --customer Acme --amount 1200`,
	SilenceUsage: true,
	// Run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath, "database path")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", storage.DriverSQLite, "storage driver (sqlite, badger)")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

func cliLogger() zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return logger.NewWithWriter(logger.Config{Level: "debug", Format: logger.FormatConsole}, os.Stderr, false)
}

// openStore opens the configured key-value store and loads the snapshot.
// The returned close function releases the store.
func openStore(ctx context.Context) (*state.Store, func() error, error) {
	if dbDriver == storage.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	log := cliLogger()
	kv, err := storage.Open(storage.Options{Driver: dbDriver, Path: dbPath, Logger: &log})
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	store, err := state.Open(ctx, kv, state.Config{Engine: workflow.New(), Logger: log})
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return store, kv.Close, nil
}

// withStore runs fn against an opened store and closes it afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *state.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeFn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, store)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
