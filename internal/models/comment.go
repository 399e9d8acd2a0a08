package models

import "time"

// Comment belongs to a capsule. OwnerID is set at creation and never updated.
type Comment struct {
	ID        string    `json:"id"`
	CapsuleID string    `json:"capsule_id"`
	OwnerID   string    `json:"owner_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
