package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// fakeSecondFactor scripts the provider side of the gate.
type fakeSecondFactor struct {
	issued   []string
	checkErr error
	issueErr error
}

func (f *fakeSecondFactor) Issue(_ context.Context, principalID string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.issued = append(f.issued, principalID)
	return models.ChallengeMethodEmail, nil
}

func (f *fakeSecondFactor) Check(_ context.Context, _, _ string) error {
	return f.checkErr
}

func testPrincipal(t *testing.T, secondFactor bool) Principal {
	t.Helper()
	hash, err := models.HashPassword("open sesame")
	require.NoError(t, err)
	return Principal{ID: "user:u1", SecretHash: hash, SecondFactor: secondFactor}
}

func testGate(t *testing.T, policy Policy, second SecondFactorProvider) *Gate {
	t.Helper()
	return New(NewLedger(newFakeLedgerStore(), policy), second)
}

func TestSubmitPrimaryGranted(t *testing.T) {
	g := testGate(t, Policy{}, nil)
	p := testPrincipal(t, false)

	outcome, err := g.SubmitPrimary(context.Background(), p, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, StatusGranted, outcome.Status)
}

func TestSubmitPrimaryDeniedCountsDown(t *testing.T) {
	g := testGate(t, Policy{MaxAttempts: 3}, nil)
	p := testPrincipal(t, false)
	ctx := context.Background()

	outcome, err := g.SubmitPrimary(ctx, p, "wrong")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, outcome.Status)
	assert.Equal(t, 2, outcome.RemainingAttempts)

	outcome, err = g.SubmitPrimary(ctx, p, "wrong")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.RemainingAttempts)
}

func TestSubmitPrimaryLocksOut(t *testing.T) {
	g := testGate(t, Policy{MaxAttempts: 2, LockoutDuration: 15 * time.Minute}, nil)
	p := testPrincipal(t, false)
	ctx := context.Background()

	g.SubmitPrimary(ctx, p, "wrong")

	// The failure that exhausts the budget is itself a denial with zero
	// attempts left; the lock it imposed bites on the next submission.
	outcome, err := g.SubmitPrimary(ctx, p, "wrong")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, outcome.Status)
	assert.Equal(t, 0, outcome.RemainingAttempts)

	// A locked principal is refused even with the correct secret, and the
	// response is indistinguishable from any other locked refusal.
	outcome, err = g.SubmitPrimary(ctx, p, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, outcome.Status)
	assert.Greater(t, outcome.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, outcome.RetryAfter, 15*time.Minute)
}

func TestSubmitPrimaryIssuesChallenge(t *testing.T) {
	second := &fakeSecondFactor{}
	g := testGate(t, Policy{}, second)
	p := testPrincipal(t, true)

	outcome, err := g.SubmitPrimary(context.Background(), p, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, StatusChallenge, outcome.Status)
	assert.Equal(t, models.ChallengeMethodEmail, outcome.ChallengeMethod)
	assert.Equal(t, []string{"user:u1"}, second.issued)
}

func TestChallengeDeliveryFailureIsNotADenial(t *testing.T) {
	second := &fakeSecondFactor{issueErr: errors.New("smtp down")}
	g := testGate(t, Policy{MaxAttempts: 2}, second)
	p := testPrincipal(t, true)
	ctx := context.Background()

	_, err := g.SubmitPrimary(ctx, p, "open sesame")
	require.Error(t, err)

	// The failed delivery must not have burned an attempt.
	isLocked, _, lerr := g.Ledger().CheckLocked(ctx, p.ID)
	require.NoError(t, lerr)
	assert.False(t, isLocked)

	second.issueErr = nil
	outcome, err := g.SubmitPrimary(ctx, p, "open sesame")
	require.NoError(t, err)
	assert.Equal(t, StatusChallenge, outcome.Status)
}

func TestSubmitSecondFactorGrantResetsLedger(t *testing.T) {
	second := &fakeSecondFactor{}
	g := testGate(t, Policy{MaxAttempts: 3}, second)
	p := testPrincipal(t, true)
	ctx := context.Background()

	// Burn two attempts, verify the password, then answer the challenge.
	g.SubmitPrimary(ctx, p, "wrong")
	g.SubmitPrimary(ctx, p, "wrong")
	_, err := g.SubmitPrimary(ctx, p, "open sesame")
	require.NoError(t, err)

	outcome, err := g.SubmitSecondFactor(ctx, p, "123456")
	require.NoError(t, err)
	assert.Equal(t, StatusGranted, outcome.Status)

	// Budget is back to full after the grant.
	outcome, err = g.SubmitPrimary(ctx, p, "wrong")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.RemainingAttempts)
}

func TestFailedSecondFactorBurnsAttempts(t *testing.T) {
	second := &fakeSecondFactor{checkErr: models.ErrChallengeInvalid}
	g := testGate(t, Policy{MaxAttempts: 2, LockoutDuration: time.Minute}, second)
	p := testPrincipal(t, true)
	ctx := context.Background()

	outcome, err := g.SubmitSecondFactor(ctx, p, "000000")
	require.NoError(t, err)
	assert.Equal(t, StatusChallengeInvalid, outcome.Status)
	assert.Equal(t, 1, outcome.RemainingAttempts)

	outcome, err = g.SubmitSecondFactor(ctx, p, "000000")
	require.NoError(t, err)
	assert.Equal(t, StatusChallengeInvalid, outcome.Status)
	assert.Equal(t, 0, outcome.RemainingAttempts)

	outcome, err = g.SubmitSecondFactor(ctx, p, "000000")
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, outcome.Status)
}

func TestSecondFactorVerifierOutageBurnsNothing(t *testing.T) {
	second := &fakeSecondFactor{checkErr: errors.New("verifier timeout")}
	g := testGate(t, Policy{MaxAttempts: 2, LockoutDuration: time.Minute}, second)
	p := testPrincipal(t, true)
	ctx := context.Background()

	_, err := g.SubmitSecondFactor(ctx, p, "123456")
	require.Error(t, err)

	// The outage must leave the ledger exactly as it was: not locked, full
	// budget still available.
	isLocked, _, lerr := g.Ledger().CheckLocked(ctx, p.ID)
	require.NoError(t, lerr)
	assert.False(t, isLocked)

	outcome, err := g.SubmitPrimary(ctx, p, "wrong")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, outcome.Status)
	assert.Equal(t, 1, outcome.RemainingAttempts)
}

func TestSecondFactorRefusedWhileLocked(t *testing.T) {
	second := &fakeSecondFactor{}
	g := testGate(t, Policy{MaxAttempts: 1, LockoutDuration: time.Minute}, second)
	p := testPrincipal(t, true)
	ctx := context.Background()

	g.SubmitPrimary(ctx, p, "wrong")

	outcome, err := g.SubmitSecondFactor(ctx, p, "123456")
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, outcome.Status)
}

// failingLedgerStore errors on reads to simulate storage trouble.
type failingLedgerStore struct{}

func (failingLedgerStore) GetAttemptRecord(context.Context, string) (*models.AttemptRecord, error) {
	return nil, errors.New("disk on fire")
}

func (failingLedgerStore) PutAttemptRecord(context.Context, *models.AttemptRecord) error {
	return errors.New("disk on fire")
}

func (failingLedgerStore) ClearAttemptRecord(context.Context, string) error {
	return errors.New("disk on fire")
}

func TestStorageFailureNeverGrants(t *testing.T) {
	g := New(NewLedger(failingLedgerStore{}, Policy{}), nil)
	p := testPrincipal(t, false)

	outcome, err := g.SubmitPrimary(context.Background(), p, "open sesame")
	require.Error(t, err)
	assert.NotEqual(t, StatusGranted, outcome.Status)
}
