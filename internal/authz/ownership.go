// Package authz holds the ownership checks gating access to capsules and
// comments. The functions are pure: callers decide how a denied check maps to
// an HTTP response (403 for writes, 404 for reads so private capsules do not
// leak their existence).
package authz

import "github.com/capsulehq/capsule-api/internal/models"

// CanWrite reports whether principal may mutate a resource owned by ownerID.
// Only the owner may write.
func CanWrite(principal *models.User, ownerID string) bool {
	return principal != nil && principal.ID == ownerID
}

// CanRead reports whether principal (nil for anonymous) may read capsule.
// Public capsules are readable by anyone; private ones only by their owner
// and listed recipients.
func CanRead(principal *models.User, capsule *models.TimeCapsule) bool {
	if capsule.Visibility == models.VisibilityPublic {
		return true
	}
	if principal == nil {
		return false
	}
	return principal.ID == capsule.OwnerID || capsule.SharedWith(principal.ID)
}
