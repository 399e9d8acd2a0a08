package models

import "time"

// Capsule visibility values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// TimeCapsule is an owned resource. OwnerID is set at creation and never updated.
type TimeCapsule struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Visibility string     `json:"visibility"`
	Recipients []string   `json:"recipients"`
	OpenAt     *time.Time `json:"open_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// SharedWith reports whether userID is in the capsule's recipient list.
func (c *TimeCapsule) SharedWith(userID string) bool {
	for _, r := range c.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}
