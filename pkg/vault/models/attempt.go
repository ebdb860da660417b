package models

import "time"

// AttemptRecord is one attempt-ledger row. PrincipalID is a namespaced key
// ("user:<id>" or "share:<token>") so account and share lockouts live in
// the same table without colliding.
type AttemptRecord struct {
	PrincipalID string `gorm:"primaryKey;type:text"`
	FailedCount int    `gorm:"not null;default:0"`
	LockedUntil *time.Time

	UpdatedAt time.Time
}

// Locked reports whether the record holds an unexpired lockout.
// An expired LockedUntil is treated as no lockout; the ledger clears the
// stale row lazily on the next recorded attempt.
func (r *AttemptRecord) Locked(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// RetryAfter returns how long until the lockout expires, or zero when the
// record is not locked.
func (r *AttemptRecord) RetryAfter(now time.Time) time.Duration {
	if !r.Locked(now) {
		return 0
	}
	return r.LockedUntil.Sub(now)
}
