package services

import (
	"collect-api/internal/auth"

	"github.com/google/uuid"
)

// canAccess is the single ownership rule applied across templates and
// links: elevated roles (admin, compliance) see everything, everyone else
// only what they created. Evaluated per call, never cached.
func canAccess(caller auth.Identity, ownerID uuid.UUID) bool {
	return caller.IsElevated() || caller.ID == ownerID
}
