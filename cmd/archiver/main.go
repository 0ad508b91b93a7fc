// Command archiver expires overdue leases and archives listings that have
// been unavailable for longer than the configured number of days.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/stwalsh4118/estatehub/internal/config"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/geocoding"
	"github.com/stwalsh4118/estatehub/internal/logger"
	"github.com/stwalsh4118/estatehub/internal/repository"
	"github.com/stwalsh4118/estatehub/internal/services"
	"github.com/stwalsh4118/estatehub/internal/storage"
)

func main() {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("archiver", pflag.ExitOnError)
	fs.Int("days", 0, "archive listings unavailable and untouched for this many days (overrides ARCHIVE_INACTIVE_DAYS)")
	fs.Bool("dry-run", false, "report what would be archived without changing anything")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Server.Env, cfg.Server.LogLevel).WithComponent("archiver")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Archiver interrupted", nil)
			os.Exit(130)
		}
		log.Error("Archiver failed", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	files, err := storage.NewOsStore(cfg.Storage.UploadsDir)
	if err != nil {
		return fmt.Errorf("failed to open uploads directory: %w", err)
	}

	leases := repository.NewLeaseRepository(db)

	// Expire first so leases that ended no longer block archival.
	if !cfg.Archive.DryRun {
		expired, err := services.NewLeaseService(leases, nil, log).ExpireLeases(ctx)
		if err != nil {
			return err
		}
		log.Info("Lease expiry complete", map[string]interface{}{"expired": expired})
	}

	listings := services.NewListingService(services.ListingDeps{
		Tx:           db,
		Listings:     repository.NewListingRepository(db),
		Locations:    repository.NewLocationRepository(db),
		Managers:     repository.NewManagerRepository(db),
		Leases:       leases,
		Reviews:      repository.NewReviewRepository(db),
		Applications: repository.NewApplicationRepository(db),
		Geocoder:     geocoding.Disabled{},
		Files:        files,
	}, log)

	report, err := listings.ArchiveInactive(ctx, services.ArchiveOptions{
		InactiveDays: cfg.Archive.InactiveDays,
		DryRun:       cfg.Archive.DryRun,
	})
	if report != nil {
		log.Info("Archive report", map[string]interface{}{
			"candidates": report.Candidates,
			"archived":   report.Archived,
			"skipped":    report.Skipped,
			"dry_run":    report.DryRun,
		})
	}
	return err
}
