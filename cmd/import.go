package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rubiojr/kashif/pkg/importer"
	"github.com/urfave/cli/v3"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import the JSON corpus into the search index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Corpus file (.json, .json.gz or .json.zst); defaults to corpus_file from the config",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Import even when the index already holds documents",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and re-import whenever the file changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return importCorpus(ctx, c.String("config"), c.String("file"), c.Bool("force"), c.Bool("watch"))
		},
	}
}

func importCorpus(ctx context.Context, configPath, file string, force, watch bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.CorpusFile
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(idx)

	im := importer.New(idx)
	res, err := im.ImportFile(ctx, file, force)
	if err != nil {
		return err
	}
	if res.AlreadyPopulated {
		fmt.Println("Index already populated, nothing imported (use --force to re-import)")
	} else {
		fmt.Printf("Imported %d of %d entries from %s (%d skipped)\n", res.Imported, res.Read, file, res.Skipped)
	}

	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	fmt.Println("Watching for changes. Press Ctrl+C to stop.")
	return im.Watch(ctx, file, func(res importer.Result, err error) {
		if err == nil {
			fmt.Printf("Re-imported %d entries from %s\n", res.Imported, file)
		}
	})
}
