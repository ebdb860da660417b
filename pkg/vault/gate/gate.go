// Package gate implements the credential gate shared by the login and
// share-access surfaces. A submission either produces a grant, a denial
// with the remaining attempt budget, a lockout with a retry hint, or a
// second-factor challenge. Infrastructure failures are returned as errors
// and never touch the attempt ledger, so a flaky database can neither burn
// a caller's attempts nor mint a grant.
package gate

import (
	"context"
	"errors"
	"strings"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/metrics"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// Principal is whatever is being unlocked: an account or a share link.
// The gate never loads entities itself; callers resolve the principal and
// hand over the bits the state machine needs.
type Principal struct {
	// ID is the namespaced ledger key ("user:<id>" or "share:<token>").
	ID string

	// SecretHash is the bcrypt hash the primary secret is compared against.
	SecretHash string

	// SecondFactor marks the principal as requiring a challenge after the
	// primary secret verifies.
	SecondFactor bool
}

// SecondFactorProvider issues and checks challenges on behalf of the gate.
type SecondFactorProvider interface {
	// Issue creates (and delivers) a fresh challenge for the principal,
	// superseding any outstanding one. It returns the delivery method.
	Issue(ctx context.Context, principalID string) (method string, err error)

	// Check verifies a submitted code against the principal's outstanding
	// challenge and consumes it on success. A wrong, expired, consumed, or
	// superseded code is models.ErrChallengeInvalid.
	Check(ctx context.Context, principalID, code string) error
}

// Gate is the two-phase credential state machine. Submissions move a
// principal through primary verification and, when required, a
// second-factor challenge, consulting the attempt ledger before any
// credential is compared.
type Gate struct {
	ledger *Ledger
	second SecondFactorProvider
}

// New creates a gate over the given ledger. The provider may be nil when no
// principal on this gate uses a second factor.
func New(ledger *Ledger, second SecondFactorProvider) *Gate {
	return &Gate{ledger: ledger, second: second}
}

// Ledger exposes the underlying attempt ledger for read-only checks.
func (g *Gate) Ledger() *Ledger {
	return g.ledger
}

// SubmitPrimary runs phase one: lockout check, then primary secret
// comparison. The lockout check always comes first so a locked principal
// learns nothing about whether a guessed secret was right.
func (g *Gate) SubmitPrimary(ctx context.Context, p Principal, secret string) (Outcome, error) {
	isLocked, retryAfter, err := g.ledger.CheckLocked(ctx, p.ID)
	if err != nil {
		return Outcome{}, err
	}
	if isLocked {
		g.observe(ctx, p.ID, StatusLocked)
		return locked(retryAfter), nil
	}

	if err := models.VerifyPassword(secret, p.SecretHash); err != nil {
		if !errors.Is(err, models.ErrInvalidCredentials) {
			return Outcome{}, err
		}
		return g.fail(ctx, p.ID, StatusDenied)
	}

	if p.SecondFactor {
		if g.second == nil {
			return Outcome{}, errors.New("second factor required but no provider configured")
		}
		method, err := g.second.Issue(ctx, p.ID)
		if err != nil {
			// Delivery failure is infrastructure, not a bad credential.
			return Outcome{}, err
		}
		g.observe(ctx, p.ID, StatusChallenge)
		return challenge(method), nil
	}

	if err := g.ledger.RecordSuccess(ctx, p.ID); err != nil {
		return Outcome{}, err
	}
	g.observe(ctx, p.ID, StatusGranted)
	return granted(), nil
}

// SubmitSecondFactor runs phase two. A wrong or stale code counts against
// the same attempt budget as a wrong password; only a full grant resets it.
func (g *Gate) SubmitSecondFactor(ctx context.Context, p Principal, code string) (Outcome, error) {
	if g.second == nil {
		return Outcome{}, errors.New("no second-factor provider configured")
	}

	isLocked, retryAfter, err := g.ledger.CheckLocked(ctx, p.ID)
	if err != nil {
		return Outcome{}, err
	}
	if isLocked {
		g.observe(ctx, p.ID, StatusLocked)
		return locked(retryAfter), nil
	}

	if err := g.second.Check(ctx, p.ID, code); err != nil {
		if !errors.Is(err, models.ErrChallengeInvalid) {
			return Outcome{}, err
		}
		return g.fail(ctx, p.ID, StatusChallengeInvalid)
	}

	if err := g.ledger.RecordSuccess(ctx, p.ID); err != nil {
		return Outcome{}, err
	}
	g.observe(ctx, p.ID, StatusGranted)
	return granted(), nil
}

// fail records one failure and classifies the result. The failure that
// exhausts the budget is still a denial, with remaining 0; the lockout it
// imposed applies from the next submission on. A lockout outcome here
// means the principal was already locked when the failure landed.
func (g *Gate) fail(ctx context.Context, principalID string, status OutcomeStatus) (Outcome, error) {
	remaining, lockedFor, err := g.ledger.RecordFailure(ctx, principalID)
	if err != nil {
		return Outcome{}, err
	}
	if lockedFor > 0 {
		g.observe(ctx, principalID, StatusLocked)
		return locked(lockedFor), nil
	}
	if remaining == 0 {
		logger.WarnCtx(ctx, "Principal locked out",
			logger.KeyRetryAfter, g.ledger.policy.LockoutDuration.Seconds())
	}
	g.observe(ctx, principalID, status)
	return Outcome{Status: status, RemainingAttempts: remaining}, nil
}

func (g *Gate) observe(ctx context.Context, principalID string, status OutcomeStatus) {
	metrics.GateOutcomes.WithLabelValues(surfaceOf(principalID), string(status)).Inc()
	logger.DebugCtx(ctx, "Gate outcome", logger.KeyOutcome, string(status))
}

// surfaceOf maps a ledger key to its metrics surface label.
func surfaceOf(principalID string) string {
	if strings.HasPrefix(principalID, "share:") {
		return "share"
	}
	return "login"
}
