package gate

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// ledgerStripes is the number of mutexes the ledger shards principals
// across. Attempts for one principal serialize; unrelated principals
// rarely contend.
const ledgerStripes = 64

// LedgerStore is the slice of the persistence layer the ledger needs.
type LedgerStore interface {
	GetAttemptRecord(ctx context.Context, principalID string) (*models.AttemptRecord, error)
	PutAttemptRecord(ctx context.Context, record *models.AttemptRecord) error
	ClearAttemptRecord(ctx context.Context, principalID string) error
}

// Ledger tracks consecutive authentication failures per principal and
// enforces lockouts. Lockout expiry is lazy: an expired lock is treated as
// absent on read and the stale row is reset on the next recorded attempt.
//
// Thread Safety: safe for concurrent use. Operations on the same principal
// are serialized so two racing failures cannot both read the same count.
type Ledger struct {
	store  LedgerStore
	policy Policy
	now    func() time.Time

	stripes [ledgerStripes]sync.Mutex
}

// NewLedger creates a ledger over the given store. A zero policy gets the
// defaults applied.
func NewLedger(store LedgerStore, policy Policy) *Ledger {
	policy.ApplyDefaults()
	return &Ledger{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

func (l *Ledger) lockFor(principalID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(principalID))
	return &l.stripes[h.Sum32()%ledgerStripes]
}

// CheckLocked reports whether the principal is currently locked out and,
// if so, for how much longer. It never mutates the ledger.
func (l *Ledger) CheckLocked(ctx context.Context, principalID string) (bool, time.Duration, error) {
	record, err := l.store.GetAttemptRecord(ctx, principalID)
	if err != nil {
		return false, 0, err
	}
	now := l.now()
	if record.Locked(now) {
		return true, record.RetryAfter(now), nil
	}
	return false, 0, nil
}

// RecordFailure registers one failed attempt. It returns the number of
// attempts remaining before lockout. lockedFor is non-zero only when the
// principal was already locked when the failure arrived; in that case
// nothing is recorded, so racing failures can neither inflate the count
// nor extend the lock. The failure that exhausts the budget itself
// reports remaining 0 and sets the lock for subsequent submissions.
func (l *Ledger) RecordFailure(ctx context.Context, principalID string) (remaining int, lockedFor time.Duration, err error) {
	mu := l.lockFor(principalID)
	mu.Lock()
	defer mu.Unlock()

	record, err := l.store.GetAttemptRecord(ctx, principalID)
	if err != nil {
		return 0, 0, err
	}

	now := l.now()
	if record.Locked(now) {
		return 0, record.RetryAfter(now), nil
	}
	if record.LockedUntil != nil {
		// Expired lockout: the principal starts a fresh window.
		record.FailedCount = 0
		record.LockedUntil = nil
	}

	record.FailedCount++
	if record.FailedCount >= l.policy.MaxAttempts {
		until := now.Add(l.policy.LockoutDuration)
		record.LockedUntil = &until
	}

	if err := l.store.PutAttemptRecord(ctx, record); err != nil {
		return 0, 0, err
	}

	remaining = l.policy.MaxAttempts - record.FailedCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, 0, nil
}

// RecordSuccess clears the principal's failure history. Called only when a
// full grant is issued, so a correct password followed by failed
// second-factor codes never resets the counter.
func (l *Ledger) RecordSuccess(ctx context.Context, principalID string) error {
	mu := l.lockFor(principalID)
	mu.Lock()
	defer mu.Unlock()

	return l.store.ClearAttemptRecord(ctx, principalID)
}
