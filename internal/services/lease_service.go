package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stwalsh4118/estatehub/internal/logger"
	"github.com/stwalsh4118/estatehub/internal/models"
	"github.com/stwalsh4118/estatehub/internal/repository"
)

// LeaseSummary is a lease together with the facts derived from its dates.
type LeaseSummary struct {
	models.Lease
	StatusName      string          `json:"statusName"`
	DurationDays    int             `json:"durationDays"`
	DurationMonths  int             `json:"durationMonths"`
	TotalRent       decimal.Decimal `json:"totalRent"`
	Expired         bool            `json:"expired"`
	Terminated      bool            `json:"terminated"`
	RenewalEligible bool            `json:"renewalEligible"`
}

func summarizeLease(l models.Lease, now time.Time) LeaseSummary {
	return LeaseSummary{
		Lease:           l,
		StatusName:      l.Status.DisplayName(),
		DurationDays:    l.DurationDays(),
		DurationMonths:  l.DurationMonths(),
		TotalRent:       l.TotalRent(),
		Expired:         l.IsExpired(now),
		Terminated:      l.IsTerminated(),
		RenewalEligible: l.IsRenewalEligible(now),
	}
}

// LeaseService moves leases through time-driven status transitions.
type LeaseService interface {
	// ExpireLeases marks active leases whose end date has passed as expired
	// and returns how many changed.
	ExpireLeases(ctx context.Context) (int64, error)
}

type leaseService struct {
	leases repository.LeaseRepository
	now    func() time.Time
	log    *logger.Logger
}

// NewLeaseService creates a new instance of LeaseService. A nil now uses time.Now.
func NewLeaseService(leases repository.LeaseRepository, now func() time.Time, log *logger.Logger) LeaseService {
	if now == nil {
		now = time.Now
	}
	return &leaseService{
		leases: leases,
		now:    now,
		log:    log.WithComponent("lease_service"),
	}
}

func (s *leaseService) ExpireLeases(ctx context.Context) (int64, error) {
	today := s.now()

	expired, err := s.leases.ExpireOverdue(ctx, today)
	if err != nil {
		s.log.Error("Failed to expire overdue leases", err, nil)
		return 0, fmt.Errorf("failed to expire leases: %w", err)
	}

	active, err := s.leases.CountActive(ctx)
	if err != nil {
		return expired, fmt.Errorf("failed to count active leases: %w", err)
	}

	s.log.Info("Expired overdue leases", map[string]interface{}{
		"as_of":     today.Format("2006-01-02"),
		"expired":   expired,
		"remaining": active,
	})
	return expired, nil
}
