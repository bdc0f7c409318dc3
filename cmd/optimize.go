package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/kashif/pkg/storage"
	"github.com/urfave/cli/v3"
)

// OptimizeCommand creates the optimize command
func OptimizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "Database optimization and maintenance commands",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withIndex(c.String("config"), func(idx *storage.Index) error {
				return optimizeAll(ctx, idx)
			})
		},
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Run integrity checks on the index",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "quick",
						Usage: "Skip the deep FTS5-specific integrity check",
						Value: false,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						return checkIndex(ctx, idx, c.Bool("quick"))
					})
				},
			},
			{
				Name:  "rebuild",
				Usage: "Rebuild the FTS5 index when it fails the integrity check",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Force rebuild without checking first (skips integrity check)",
						Value: false,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						return rebuildIndex(ctx, idx, c.Bool("force"))
					})
				},
			},
			{
				Name:  "vacuum",
				Usage: "Run VACUUM to defragment the database",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						fmt.Println("Running VACUUM...")
						if err := idx.Vacuum(ctx); err != nil {
							return fmt.Errorf("VACUUM failed: %w", err)
						}
						fmt.Println("✓ VACUUM completed successfully")
						return nil
					})
				},
			},
			{
				Name:  "checkpoint",
				Usage: "Run WAL checkpoint to flush changes",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withIndex(c.String("config"), func(idx *storage.Index) error {
						if err := idx.WALCheckpoint(ctx); err != nil {
							return fmt.Errorf("WAL checkpoint failed: %w", err)
						}
						fmt.Println("✓ WAL checkpoint completed")
						return nil
					})
				},
			},
		},
	}
}

func withIndex(configPath string, fn func(*storage.Index) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(idx)
	return fn(idx)
}

// optimizeAll runs the FTS merge, planner statistics and a checkpoint
func optimizeAll(ctx context.Context, idx *storage.Index) error {
	fmt.Println("Optimizing FTS index...")
	if err := idx.Optimize(ctx); err != nil {
		return err
	}
	fmt.Println("✓ FTS optimize completed")

	fmt.Println("Running ANALYZE...")
	if err := idx.Analyze(ctx); err != nil {
		return fmt.Errorf("ANALYZE failed: %w", err)
	}
	fmt.Println("✓ ANALYZE completed")

	if err := idx.WALCheckpoint(ctx); err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}
	fmt.Println("✓ WAL checkpoint completed")
	return nil
}

func checkIndex(ctx context.Context, idx *storage.Index, quick bool) error {
	fmt.Print("Running integrity check... ")
	if err := idx.IntegrityCheck(ctx); err != nil {
		fmt.Printf("✗ FAILED - %v\n", err)
		return fmt.Errorf("integrity check failed")
	}
	fmt.Println("✓ OK")

	if quick {
		return nil
	}

	fmt.Print("Running FTS5 integrity check... ")
	if err := idx.FTSIntegrityCheck(ctx); err != nil {
		fmt.Printf("✗ FAILED - %v\n", err)
		return fmt.Errorf("FTS integrity check failed; run 'kashif optimize rebuild'")
	}
	fmt.Println("✓ OK")
	return nil
}

func rebuildIndex(ctx context.Context, idx *storage.Index, force bool) error {
	if !force {
		fmt.Print("Checking FTS index... ")
		err := idx.FTSIntegrityCheck(ctx)
		if err == nil {
			fmt.Println("✓ OK (no rebuild needed)")
			return nil
		}
		fmt.Printf("✗ NEEDS REBUILD - %v\n", err)
	}

	fmt.Print("Rebuilding FTS index... ")
	if err := idx.FTSRebuild(ctx); err != nil {
		fmt.Printf("✗ FAILED - %v\n", err)
		return fmt.Errorf("FTS rebuild failed")
	}
	fmt.Println("✓ OK")
	return nil
}
