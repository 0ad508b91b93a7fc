package services

import (
	"context"
	"fmt"
	"time"
)

// ArchiveOptions configure one archival sweep.
type ArchiveOptions struct {
	InactiveDays int
	DryRun       bool
}

// ArchiveReport summarizes an archival sweep.
type ArchiveReport struct {
	Candidates int  `json:"candidates"`
	Archived   int  `json:"archived"`
	Skipped    int  `json:"skipped"`
	DryRun     bool `json:"dryRun"`
}

func (s *listingService) ArchiveInactive(ctx context.Context, opts ArchiveOptions) (*ArchiveReport, error) {
	if opts.InactiveDays < 1 {
		return nil, &ValidationError{Fields: map[string]string{"inactiveDays": "must be at least 1"}}
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -opts.InactiveDays)
	report := &ArchiveReport{DryRun: opts.DryRun}

	s.log.Info("Starting archival sweep", map[string]interface{}{
		"inactive_days": opts.InactiveDays,
		"cutoff":        cutoff,
		"dry_run":       opts.DryRun,
	})

	ids, err := s.listings.FindArchiveCandidates(ctx, cutoff)
	if err != nil {
		s.log.Error("Failed to find archive candidates", err, nil)
		return nil, fmt.Errorf("failed to find archive candidates: %w", err)
	}
	report.Candidates = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			s.log.Warn("Archival sweep interrupted", map[string]interface{}{
				"archived": report.Archived,
				"skipped":  report.Skipped,
			})
			return report, err
		}

		// The listing in progress completes even if ctx is canceled meanwhile.
		archived, err := s.archiveOne(context.WithoutCancel(ctx), id, cutoff, now, opts.DryRun)
		if err != nil {
			s.log.Error("Failed to archive listing", err, map[string]interface{}{"listing_id": id})
			return report, fmt.Errorf("failed to archive listing %d: %w", id, err)
		}
		if archived {
			report.Archived++
		} else {
			report.Skipped++
		}
	}

	s.log.Info("Archival sweep complete", map[string]interface{}{
		"candidates": report.Candidates,
		"archived":   report.Archived,
		"skipped":    report.Skipped,
		"dry_run":    opts.DryRun,
	})
	return report, nil
}

// archiveOne re-checks a candidate under lock, since it may have changed
// since the candidate scan.
func (s *listingService) archiveOne(ctx context.Context, id int64, cutoff, now time.Time, dryRun bool) (bool, error) {
	archived := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		listing, err := s.listings.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if listing == nil || listing.IsArchived() || listing.IsAvailable || !listing.UpdatedAt.Before(cutoff) {
			return nil
		}

		active, err := s.leases.HasActiveLease(ctx, id)
		if err != nil {
			return err
		}
		if active {
			s.log.Debug("Skipping listing with active lease", map[string]interface{}{"listing_id": id})
			return nil
		}

		if !dryRun {
			if err := s.listings.Archive(ctx, id, now); err != nil {
				return err
			}
		}
		archived = true
		return nil
	})
	return archived, err
}
