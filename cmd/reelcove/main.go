package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/reelcove/reelcove/internal/addon"
	"github.com/reelcove/reelcove/internal/api"
	"github.com/reelcove/reelcove/internal/cache"
	"github.com/reelcove/reelcove/internal/config"
	"github.com/reelcove/reelcove/internal/configstore"
	"github.com/reelcove/reelcove/internal/database"
	"github.com/reelcove/reelcove/internal/logger"
	"github.com/reelcove/reelcove/internal/scheduler"
	"github.com/reelcove/reelcove/internal/tmdb"
	"github.com/reelcove/reelcove/internal/trakt"
)

// cacheSweepInterval is how often expired cache rows are purged. Expiry is
// also enforced at read time; the sweep only reclaims space.
const cacheSweepInterval = time.Hour

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("database", cfg.Database.Path).
		Msg("starting ReelCove")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	store := cache.NewSQLiteStore(db.Conn())

	tmdbClient := tmdb.NewClient(cfg.TMDB, store, log.Logger)
	traktClient := trakt.NewClient(cfg.Trakt, store, log.Logger)
	configs := configstore.NewStore(db.Conn(), log.Logger)

	builder := addon.NewBuilder(tmdbClient, traktClient, configs, addon.Options{
		Prefix:       cfg.Addon.Prefix,
		ConfigureURL: cfg.Addon.ConfigureURL,
	}, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	err = sched.Every(cacheSweepInterval, "cache-sweep", func(ctx context.Context) error {
		removed, err := store.DeleteExpired(ctx)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.Debug().Int64("removed", removed).Msg("Swept expired cache entries")
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache sweep")
	}
	sched.Start()

	server := api.NewServer(cfg, builder, configs, tmdbClient, log.Logger)

	go func() {
		addr := cfg.Server.Address()
		if err := server.Start(addr); err != nil {
			log.Info().Err(err).Msg("HTTP server stopped")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
