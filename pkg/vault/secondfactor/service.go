// Package secondfactor issues and checks the challenges the gate demands
// after a primary secret verifies. Emailed codes are single-use rows in
// the challenge store; authenticator (TOTP) principals are checked against
// their enrolled secret instead.
package secondfactor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Lightningwave/safesplit-sub000/pkg/metrics"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// Contact describes how a principal can be challenged. TOTPSecret, when
// set, takes precedence over emailed codes.
type Contact struct {
	Emails     []string
	TOTPSecret string
}

// ContactResolver maps a ledger principal key to its challenge contact.
type ContactResolver interface {
	ResolveContact(ctx context.Context, principalID string) (Contact, error)
}

// ChallengeStore is the slice of the persistence layer the service needs.
type ChallengeStore interface {
	ReplaceChallenge(ctx context.Context, challenge *models.Challenge) error
	GetChallenge(ctx context.Context, principalID string) (*models.Challenge, error)
	ConsumeChallenge(ctx context.Context, principalID string) error
}

// Service implements the gate's SecondFactorProvider.
type Service struct {
	store    ChallengeStore
	resolver ContactResolver
	sender   CodeSender
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates a challenge service. A nil sender falls back to
// LogSender; a zero ttl gets the default.
func NewService(store ChallengeStore, resolver ContactResolver, sender CodeSender, ttl time.Duration) *Service {
	if sender == nil {
		sender = LogSender{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		store:    store,
		resolver: resolver,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a fresh challenge for the principal. For email principals
// this supersedes any outstanding code, persists the bcrypt hash of the
// new one, and delivers it to every contact address. TOTP principals get
// no stored challenge; their authenticator is the challenge.
func (s *Service) Issue(ctx context.Context, principalID string) (string, error) {
	contact, err := s.resolver.ResolveContact(ctx, principalID)
	if err != nil {
		return "", err
	}

	if contact.TOTPSecret != "" {
		metrics.ChallengesIssued.WithLabelValues(models.ChallengeMethodTOTP).Inc()
		return models.ChallengeMethodTOTP, nil
	}

	if len(contact.Emails) == 0 {
		return "", fmt.Errorf("principal has no challenge contact")
	}

	code, err := models.GenerateOneTimeCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), models.DefaultBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing challenge code: %w", err)
	}

	now := s.now()
	challenge := &models.Challenge{
		PrincipalID: principalID,
		CodeHash:    string(hash),
		Method:      models.ChallengeMethodEmail,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.store.ReplaceChallenge(ctx, challenge); err != nil {
		return "", err
	}

	for _, email := range contact.Emails {
		if err := s.sender.SendCode(ctx, email, code); err != nil {
			return "", fmt.Errorf("delivering challenge code: %w", err)
		}
	}

	metrics.ChallengesIssued.WithLabelValues(models.ChallengeMethodEmail).Inc()
	return models.ChallengeMethodEmail, nil
}

// Check verifies a submitted code. Email codes are single-use: a correct
// answer consumes the stored challenge. Wrong, expired, consumed, and
// superseded codes all come back as models.ErrChallengeInvalid so the
// caller cannot tell them apart.
func (s *Service) Check(ctx context.Context, principalID, code string) error {
	contact, err := s.resolver.ResolveContact(ctx, principalID)
	if err != nil {
		return err
	}

	if contact.TOTPSecret != "" {
		if !ValidateTOTP(code, contact.TOTPSecret) {
			return models.ErrChallengeInvalid
		}
		return nil
	}

	challenge, err := s.store.GetChallenge(ctx, principalID)
	if err != nil {
		if errors.Is(err, models.ErrChallengeNotFound) {
			return models.ErrChallengeInvalid
		}
		return err
	}
	if !challenge.Usable(s.now()) {
		return models.ErrChallengeInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		return models.ErrChallengeInvalid
	}

	if err := s.store.ConsumeChallenge(ctx, principalID); err != nil {
		if errors.Is(err, models.ErrChallengeNotFound) {
			// Raced with a concurrent consume; the code was already spent.
			return models.ErrChallengeInvalid
		}
		return err
	}
	return nil
}
