package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubiojr/kashif/pkg/api"
	"github.com/rubiojr/kashif/pkg/bot"
	"github.com/rubiojr/kashif/pkg/cache"
	"github.com/rubiojr/kashif/pkg/config"
	"github.com/rubiojr/kashif/pkg/importer"
	"github.com/rubiojr/kashif/pkg/log"
	"github.com/rubiojr/kashif/pkg/search"
	"github.com/rubiojr/kashif/pkg/scheduler"
	"github.com/rubiojr/kashif/pkg/storage"
	"github.com/rubiojr/kashif/pkg/telegram"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

var serveLogger = log.ForService("serve")

const (
	sweepInterval    = 10 * time.Minute
	optimizeInterval = time.Hour
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the Telegram bot (and the HTTP API when http.listen is set)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "HTTP API listen address, overrides http.listen",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

func serve(ctx context.Context, configPath, listen string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.HTTP.Listen = listen
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(idx)

	if _, err := importer.New(idx).ImportFile(ctx, cfg.CorpusFile, false); err != nil {
		// The bot still serves approved submissions and whatever is indexed.
		serveLogger.Warnf("initial corpus import skipped: %v", err)
	}

	rc, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			serveLogger.Warnf("failed to close cache: %v", err)
		}
	}()

	svc := search.NewService(idx, rc)

	transport, err := telegram.Connect(cfg.Bot.Token)
	if err != nil {
		return err
	}
	engine := bot.New(transport, svc, idx, engineOptions(cfg))
	engine.SetBotUsername(transport.Username())
	dispatcher := telegram.NewDispatcher(transport, engine, cfg.Bot.TriggerWords, cfg.Bot.Workers)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New()
	for _, job := range maintenanceJobs(engine, idx, rc, cfg.Bot.PaginationTTL.Duration) {
		if err := sched.Add(job); err != nil {
			return err
		}
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The other workers follow the dispatcher down.
		defer stop()
		return dispatcher.Run(gctx)
	})
	if cfg.HTTP.Listen != "" {
		g.Go(func() error {
			return serveHTTP(gctx, cfg, svc, idx)
		})
	}

	fmt.Println("Bot started. Press Ctrl+C to stop.")
	err = g.Wait()
	fmt.Println("\nShutting down...")
	return err
}

func engineOptions(cfg *config.Config) bot.Options {
	return bot.Options{
		MaxMessageLength:    cfg.Bot.MaxMessageLength,
		HardMessageLimit:    cfg.Bot.HardMessageLimit,
		SnippetContextWords: cfg.Bot.SnippetContextWords,
		MaxListResults:      cfg.Bot.MaxListResults,
		OwnerID:             cfg.Bot.OwnerID,
		SendTimeout:         cfg.Bot.SendTimeout.Duration,
		ChannelURL:          cfg.Bot.ChannelURL,
		DeveloperURL:        cfg.Bot.DeveloperURL,
		DeveloperName:       cfg.Bot.DeveloperName,
	}
}

// maintenanceJobs expires pagination state and keeps the index and the
// cache compact.
func maintenanceJobs(engine *bot.Engine, idx *storage.Index, rc *cache.ResultCache, ttl time.Duration) []scheduler.Job {
	jobs := []scheduler.Job{
		{
			Name:     "pagination-sweep",
			Interval: sweepInterval,
			Run: func(ctx context.Context) error {
				if n := engine.Pages().Sweep(ttl); n > 0 {
					serveLogger.Debugf("expired %d pagination entries", n)
				}
				return nil
			},
		},
		{
			Name:     "index-optimize",
			Interval: optimizeInterval,
			Run: func(ctx context.Context) error {
				if err := idx.Optimize(ctx); err != nil {
					return err
				}
				return idx.WALCheckpoint(ctx)
			},
		},
	}
	if b, ok := rc.Backend().(*cache.BadgerBackend); ok {
		jobs = append(jobs, scheduler.Job{
			Name:     "cache-gc",
			Interval: optimizeInterval,
			Run:      func(context.Context) error { return b.RunGC() },
		})
	}
	return jobs
}

func serveHTTP(ctx context.Context, cfg *config.Config, svc *search.Service, idx *storage.Index) error {
	server := api.NewServer(svc, idx, api.Options{
		MaxListResults:      cfg.Bot.MaxListResults,
		SnippetContextWords: cfg.Bot.SnippetContextWords,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		serveLogger.Infof("HTTP API listening on %s", cfg.HTTP.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
