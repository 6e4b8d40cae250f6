package domain

import (
	"time"

	"github.com/google/uuid"
)

// OneTimeCode is a single-use numeric code backing the step-up challenge.
// At most one live row exists per user: issuing a new code replaces any
// outstanding one, and a successful redemption deletes the row.
type OneTimeCode struct {
	ID        uuid.UUID
	UserID    int64
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code's validity window has passed at the
// given instant. A stale row must never be accepted, whether or not it has
// been garbage collected.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
