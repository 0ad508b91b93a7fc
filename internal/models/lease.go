package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LeaseStatus is the closed set of lease states.
type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusExpired    LeaseStatus = "expired"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusRenewed    LeaseStatus = "renewed"
)

var leaseStatusNames = map[LeaseStatus]string{
	LeaseStatusActive:     "Active",
	LeaseStatusExpired:    "Expired",
	LeaseStatusTerminated: "Terminated",
	LeaseStatusRenewed:    "Renewed",
}

// ParseLeaseStatus maps a tag to a LeaseStatus, case-insensitively.
func ParseLeaseStatus(s string) (LeaseStatus, error) {
	st := LeaseStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := leaseStatusNames[st]; !ok {
		return "", fmt.Errorf("unknown lease status %q", s)
	}
	return st, nil
}

// DisplayName returns the presentation name of the status.
func (s LeaseStatus) DisplayName() string {
	if name, ok := leaseStatusNames[s]; ok {
		return name
	}
	return string(s)
}

// RenewalWindowMonths is how close to its end date an active lease becomes
// eligible for renewal.
const RenewalWindowMonths = 2

// Lease is a rental contract between a tenant and a listing. Start and end
// are calendar dates; only their year, month and day are significant.
type Lease struct {
	ID              int64           `json:"id"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	MonthlyRent     decimal.Decimal `json:"monthlyRent"`
	SecurityDeposit decimal.Decimal `json:"securityDeposit"`
	Status          LeaseStatus     `json:"status"`
	ListingID       int64           `json:"listingId"`
	TenantID        int64           `json:"tenantId"`
	ApplicationID   *int64          `json:"applicationId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// IsActive reports whether the lease is in the active state.
func (l *Lease) IsActive() bool {
	switch l.Status {
	case LeaseStatusActive:
		return true
	case LeaseStatusExpired, LeaseStatusTerminated, LeaseStatusRenewed:
		return false
	default:
		return false
	}
}

// IsTerminated reports whether the lease was ended early.
func (l *Lease) IsTerminated() bool {
	return l.Status == LeaseStatusTerminated
}

// IsExpired reports whether the lease is expired, either explicitly or
// because it is still active past its end date.
func (l *Lease) IsExpired(now time.Time) bool {
	switch l.Status {
	case LeaseStatusExpired:
		return true
	case LeaseStatusActive:
		return civilDate(now).After(civilDate(l.EndDate))
	case LeaseStatusTerminated, LeaseStatusRenewed:
		return false
	default:
		return false
	}
}

// DurationDays is the number of days between start and end.
func (l *Lease) DurationDays() int {
	return int(civilDate(l.EndDate).Sub(civilDate(l.StartDate)).Hours() / 24)
}

// DurationMonths is the number of complete months between start and end.
func (l *Lease) DurationMonths() int {
	return monthsBetween(l.StartDate, l.EndDate)
}

// TotalRent is the monthly rent multiplied by the complete months of the term.
func (l *Lease) TotalRent() decimal.Decimal {
	return l.MonthlyRent.Mul(decimal.NewFromInt(int64(l.DurationMonths())))
}

// IsRenewalEligible reports whether the lease is active and inside the
// renewal window before its end date.
func (l *Lease) IsRenewalEligible(now time.Time) bool {
	if !l.IsActive() {
		return false
	}
	windowStart := addMonthsClamped(civilDate(l.EndDate), -RenewalWindowMonths)
	return civilDate(now).After(windowStart)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthsBetween counts complete months from a to b. A partial trailing month
// does not count.
func monthsBetween(a, b time.Time) int {
	a, b = civilDate(a), civilDate(b)
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	days := b.Day() - a.Day()
	switch {
	case months > 0 && days < 0:
		months--
	case months < 0 && days > 0:
		months++
	}
	return months
}

// addMonthsClamped shifts t by n months, clamping the day to the end of the
// target month instead of overflowing into the next one.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
