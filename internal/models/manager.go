package models

import "time"

// Manager anchors listing ownership. Key is the opaque identifier issued by
// the identity provider.
type Manager struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
