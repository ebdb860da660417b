package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/secondfactor"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// storeContactResolver resolves second-factor delivery targets from the
// metadata store. User principals resolve to the account email and TOTP
// secret; share principals resolve to the recipients named at share
// creation time.
type storeContactResolver struct {
	store store.Store
}

// NewContactResolver returns a secondfactor.ContactResolver backed by s.
func NewContactResolver(s store.Store) secondfactor.ContactResolver {
	return &storeContactResolver{store: s}
}

func (r *storeContactResolver) ResolveContact(ctx context.Context, principalID string) (secondfactor.Contact, error) {
	switch {
	case strings.HasPrefix(principalID, "user:"):
		user, err := r.store.GetUserByID(ctx, strings.TrimPrefix(principalID, "user:"))
		if err != nil {
			return secondfactor.Contact{}, err
		}
		contact := secondfactor.Contact{Emails: []string{user.Email}}
		if user.TwoFactorEnabled && user.TOTPSecret != "" {
			contact.TOTPSecret = user.TOTPSecret
		}
		return contact, nil

	case strings.HasPrefix(principalID, "share:"):
		share, err := r.store.GetShareByToken(ctx, strings.TrimPrefix(principalID, "share:"))
		if err != nil {
			return secondfactor.Contact{}, err
		}
		seen := make(map[string]struct{}, len(share.Fragments))
		contact := secondfactor.Contact{}
		for _, fragment := range share.Fragments {
			if _, ok := seen[fragment.Recipient]; ok {
				continue
			}
			seen[fragment.Recipient] = struct{}{}
			contact.Emails = append(contact.Emails, fragment.Recipient)
		}
		return contact, nil

	default:
		return secondfactor.Contact{}, fmt.Errorf("unknown principal %q", principalID)
	}
}
