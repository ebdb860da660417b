package gate

import "time"

// OutcomeStatus is the terminal classification of one gate submission.
type OutcomeStatus string

const (
	// StatusGranted means the principal fully authenticated.
	StatusGranted OutcomeStatus = "granted"

	// StatusDenied means the primary secret did not match.
	StatusDenied OutcomeStatus = "denied"

	// StatusChallengeInvalid means a second-factor code did not match. It
	// spends the same attempt budget as StatusDenied; the split lets
	// callers phrase the two refusals separately.
	StatusChallengeInvalid OutcomeStatus = "challenge_invalid"

	// StatusLocked means the attempt ledger refused the attempt outright.
	StatusLocked OutcomeStatus = "locked"

	// StatusChallenge means the primary secret verified and a second-factor
	// code must now be answered.
	StatusChallenge OutcomeStatus = "challenge"
)

// Outcome is the result of one submission to the gate. A denial carries the
// remaining attempt budget; a lockout carries the retry hint; a challenge
// carries the delivery method to tell the client what to prompt for.
type Outcome struct {
	Status OutcomeStatus

	// RemainingAttempts is set for StatusDenied and StatusChallengeInvalid.
	RemainingAttempts int

	// RetryAfter is set for StatusLocked.
	RetryAfter time.Duration

	// ChallengeMethod is set for StatusChallenge ("email" or "totp").
	ChallengeMethod string
}

func granted() Outcome {
	return Outcome{Status: StatusGranted}
}

func locked(retryAfter time.Duration) Outcome {
	return Outcome{Status: StatusLocked, RetryAfter: retryAfter}
}

func challenge(method string) Outcome {
	return Outcome{Status: StatusChallenge, ChallengeMethod: method}
}
