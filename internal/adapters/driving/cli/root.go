// Package cli provides the cobra command-line interface for
// vconstore.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	badgercache "github.com/custodia-labs/vconstore/internal/adapters/driven/cache/badger"
	"github.com/custodia-labs/vconstore/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vconstore/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vconstore/internal/core/ports/driven"
	"github.com/custodia-labs/vconstore/internal/core/ports/driving"
	"github.com/custodia-labs/vconstore/internal/core/services"
	"github.com/custodia-labs/vconstore/internal/logger"
)

// version is overridable at build time via -ldflags.
var version = "0.1.0"

var (
	verboseFlag bool
	configDir   string
)

// storageService is wired lazily by initRoot, or injected with
// SetStorageService in tests.
var storageService driving.StorageService

// closers holds handles opened during service wiring, released by
// Execute on exit.
var closers []io.Closer

var rootCmd = &cobra.Command{
	Use:   "vconstore",
	Short: "Store, retrieve and search vCon conversation records",
	Long: `vconstore persists vCon conversation records in a local SQLite
store and accelerates reads with an optional BadgerDB cache.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.vconstore)")
}

// Execute runs the root command and releases any opened handles.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// SetStorageService injects a storage service, bypassing lazy
// wiring. Useful for testing.
func SetStorageService(s driving.StorageService) {
	storageService = s
}

// initRoot configures logging and wires services for commands that
// need them.
func initRoot(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	switch cmd.Name() {
	case "version", "help", "new", "completion":
		return nil
	}
	return initServices()
}

// initServices resolves configuration and opens the store and cache.
// A missing or unopenable store is fatal; a failing cache only logs a
// warning and the process runs uncached.
func initServices() error {
	if storageService != nil {
		return nil
	}

	cfg, err := file.Load(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	closers = append(closers, store)
	logger.Info("store opened at %s", store.Path())

	var cache driven.Cache
	if cfg.CachePath == "" {
		logger.Info("cache disabled (not configured)")
	} else if c, err := badgercache.Open(cfg.CachePath); err != nil {
		logger.Warn("cache unavailable, continuing without: %v", err)
	} else if err := c.Ping(context.Background()); err != nil {
		logger.Warn("cache unresponsive, continuing without: %v", err)
		c.Close() //nolint:errcheck
	} else {
		cache = c
		closers = append(closers, c)
		logger.Info("cache enabled (TTL: %ds)", cfg.CacheTTLSeconds)
	}

	storageService = services.NewStorageService(store, cache, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	return nil
}

func closeServices() {
	for _, c := range closers {
		c.Close() //nolint:errcheck
	}
	closers = nil
}
