package models

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the closed set of rental application states.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
	ApplicationStatusExpired   ApplicationStatus = "expired"
)

var applicationStatusNames = map[ApplicationStatus]string{
	ApplicationStatusPending:   "Pending",
	ApplicationStatusApproved:  "Approved",
	ApplicationStatusRejected:  "Rejected",
	ApplicationStatusWithdrawn: "Withdrawn",
	ApplicationStatusExpired:   "Expired",
}

// ParseApplicationStatus maps a tag to an ApplicationStatus, case-insensitively.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := applicationStatusNames[st]; !ok {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

// DisplayName returns the presentation name of the status.
func (s ApplicationStatus) DisplayName() string {
	if name, ok := applicationStatusNames[s]; ok {
		return name
	}
	return string(s)
}

// IsOpen reports whether the application still awaits a decision.
func (s ApplicationStatus) IsOpen() bool {
	switch s {
	case ApplicationStatusPending:
		return true
	case ApplicationStatusApproved, ApplicationStatusRejected,
		ApplicationStatusWithdrawn, ApplicationStatusExpired:
		return false
	default:
		return false
	}
}

// Application is a tenant's request to rent a listing.
type Application struct {
	ID              int64             `json:"id"`
	ApplicationDate time.Time         `json:"applicationDate"`
	Status          ApplicationStatus `json:"status"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	PhoneNumber     string            `json:"phoneNumber"`
	Message         *string           `json:"message,omitempty"`
	ListingID       int64             `json:"listingId"`
	TenantID        int64             `json:"tenantId"`
}

// Review is a tenant rating of a listing. Only verified reviews count
// toward the listing's average rating.
type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listingId"`
	Rating    int       `json:"rating"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}
