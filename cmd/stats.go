package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rubiojr/kashif/pkg/storage"
	"github.com/urfave/cli/v3"
)

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show statistics",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(ctx, c.String("config"))
		},
	}
}

// showStats displays index and usage statistics
func showStats(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(idx)

	rows, err := idx.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting rows: %w", err)
	}
	distinct, err := idx.CountDistinct(ctx)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}
	counters, err := idx.Stats(ctx)
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}
	pending, err := idx.PendingSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("listing submissions: %w", err)
	}

	fmt.Println(titleStyle.Render("kashif statistics"))
	fmt.Printf("Index: %s\n", cfg.DBPath())
	if info, err := os.Stat(cfg.DBPath()); err == nil {
		fmt.Printf("  Size: %.2f MB\n", float64(info.Size())/(1024*1024))
	}
	fmt.Printf("  Documents: %d\n", distinct)
	fmt.Printf("  Indexed rows: %d\n", rows)
	fmt.Printf("  Pending submissions: %d\n", len(pending))

	fmt.Println(metaStyle.Render("Usage:"))
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %d\n", k, counters[k])
	}
	if _, ok := counters[storage.StatSearchCount]; !ok {
		fmt.Printf("  %s: 0\n", storage.StatSearchCount)
	}
	return nil
}
