package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLease_Duration(t *testing.T) {
	lease := Lease{
		StartDate:   date(2026, time.January, 15),
		EndDate:     date(2027, time.January, 14),
		MonthlyRent: decimal.NewFromInt(1200),
		Status:      LeaseStatusActive,
	}

	assert.Equal(t, 364, lease.DurationDays())
	// Jan 15 to Jan 14 of the next year is 11 complete months
	assert.Equal(t, 11, lease.DurationMonths())
	assert.True(t, decimal.NewFromInt(13200).Equal(lease.TotalRent()))
}

func TestLease_DurationMonthsEndOfMonth(t *testing.T) {
	lease := Lease{StartDate: date(2026, time.January, 31), EndDate: date(2026, time.February, 28)}
	assert.Equal(t, 0, lease.DurationMonths())

	lease.EndDate = date(2026, time.March, 31)
	assert.Equal(t, 2, lease.DurationMonths())
}

func TestLease_IsExpired(t *testing.T) {
	end := date(2026, time.June, 30)

	tests := []struct {
		name   string
		status LeaseStatus
		now    time.Time
		want   bool
	}{
		{"active before end", LeaseStatusActive, date(2026, time.June, 1), false},
		{"active on end date", LeaseStatusActive, end.Add(23 * time.Hour), false},
		{"active past end", LeaseStatusActive, date(2026, time.July, 1), true},
		{"explicitly expired", LeaseStatusExpired, date(2026, time.January, 1), true},
		{"terminated past end", LeaseStatusTerminated, date(2026, time.July, 1), false},
		{"renewed past end", LeaseStatusRenewed, date(2026, time.July, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lease := Lease{StartDate: date(2025, time.July, 1), EndDate: end, Status: tt.status}
			assert.Equal(t, tt.want, lease.IsExpired(tt.now))
		})
	}
}

func TestLease_IsRenewalEligible(t *testing.T) {
	lease := Lease{
		StartDate: date(2025, time.July, 1),
		EndDate:   date(2026, time.June, 30),
		Status:    LeaseStatusActive,
	}

	assert.False(t, lease.IsRenewalEligible(date(2026, time.April, 30)), "window opens after Apr 30")
	assert.True(t, lease.IsRenewalEligible(date(2026, time.May, 1)))
	assert.True(t, lease.IsRenewalEligible(date(2026, time.June, 29)))

	lease.Status = LeaseStatusTerminated
	assert.False(t, lease.IsRenewalEligible(date(2026, time.June, 1)))
}

func TestLease_RenewalWindowClampsShortMonths(t *testing.T) {
	// Two months before Apr 30 is Feb 28, not Mar 2
	lease := Lease{EndDate: date(2026, time.April, 30), Status: LeaseStatusActive}
	assert.False(t, lease.IsRenewalEligible(date(2026, time.February, 28)))
	assert.True(t, lease.IsRenewalEligible(date(2026, time.March, 1)))
}

func TestLeaseStatus(t *testing.T) {
	st, err := ParseLeaseStatus(" ACTIVE ")
	require.NoError(t, err)
	assert.Equal(t, LeaseStatusActive, st)
	assert.Equal(t, "Active", st.DisplayName())

	_, err = ParseLeaseStatus("pending")
	assert.Error(t, err)

	active := Lease{Status: LeaseStatusActive}
	terminated := Lease{Status: LeaseStatusTerminated}
	assert.True(t, active.IsActive())
	assert.False(t, terminated.IsActive())
	assert.True(t, terminated.IsTerminated())
}

func TestApplicationStatus(t *testing.T) {
	st, err := ParseApplicationStatus("Withdrawn")
	require.NoError(t, err)
	assert.Equal(t, ApplicationStatusWithdrawn, st)
	assert.Equal(t, "Withdrawn", st.DisplayName())
	assert.False(t, st.IsOpen())
	assert.True(t, ApplicationStatusPending.IsOpen())

	_, err = ParseApplicationStatus("cancelled")
	assert.Error(t, err)
}

func TestPropertyType(t *testing.T) {
	for _, pt := range PropertyTypes() {
		parsed, err := ParsePropertyType(string(pt))
		require.NoError(t, err)
		assert.Equal(t, pt, parsed)
		assert.True(t, pt.Valid())
		assert.NotEqual(t, string(pt), pt.DisplayName())
	}

	parsed, err := ParsePropertyType("TownHouse")
	require.NoError(t, err)
	assert.Equal(t, PropertyTypeTownhouse, parsed)
	assert.Equal(t, "Townhouse", parsed.DisplayName())

	_, err = ParsePropertyType("castle")
	assert.Error(t, err)
	assert.False(t, PropertyType("castle").Valid())
}
