package gate

import "time"

// Default policy values. Deployments override them via configuration.
const (
	DefaultMaxAttempts     = 5
	DefaultLockoutDuration = 15 * time.Minute
	DefaultChallengeTTL    = 10 * time.Minute
)

// Policy controls the lockout behavior of the gate. One policy applies to
// every surface; account and share principals are tracked separately in
// the ledger but share these thresholds.
type Policy struct {
	// MaxAttempts is the number of consecutive failures that triggers a
	// lockout.
	MaxAttempts int

	// LockoutDuration is how long a locked principal stays locked.
	LockoutDuration time.Duration

	// ChallengeTTL is how long an issued second-factor code stays valid.
	ChallengeTTL time.Duration
}

// ApplyDefaults fills in zero values with the defaults.
func (p *Policy) ApplyDefaults() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.LockoutDuration <= 0 {
		p.LockoutDuration = DefaultLockoutDuration
	}
	if p.ChallengeTTL <= 0 {
		p.ChallengeTTL = DefaultChallengeTTL
	}
}
