package cmd

import (
	"fmt"

	"github.com/rubiojr/kashif/pkg/config"
	"github.com/rubiojr/kashif/pkg/log"
	"github.com/rubiojr/kashif/pkg/storage"
)

// loadConfig reads the configuration and applies its debug settings.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log.Configure(cfg.Debug, cfg.DebugServices)
	return cfg, nil
}

// openIndex opens the index named by cfg, applying pending migrations.
func openIndex(cfg *config.Config) (*storage.Index, error) {
	idx, err := storage.Open(cfg.DBPath(), storage.WithQueryTimeout(cfg.Index.QueryTimeout.Duration))
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	return idx, nil
}

func closeIndex(idx *storage.Index) {
	if err := idx.Close(); err != nil {
		fmt.Printf("Warning: failed to close index: %v\n", err)
	}
}
