// Package split validates share descriptors and fragments file keys so
// that a threshold subset of recipients can reconstruct them.
package split

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// Fragmentation bounds.
const (
	MinShares    = 2
	MaxShares    = 10
	MinThreshold = 2
)

var emailValidator = validator.New()

// Descriptor is a share request as submitted by a file owner. Validate
// must pass before any key material is split.
type Descriptor struct {
	FileID      string   `json:"file_id"`
	TotalShares int      `json:"total_shares"`
	Threshold   int      `json:"threshold"`
	Recipients  []string `json:"recipients"`
	Password    string   `json:"password"`

	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	MaxDownloads *int64     `json:"max_downloads,omitempty"`

	RequireSecondFactor bool `json:"require_second_factor,omitempty"`
}

// Validate runs the descriptor checks in a fixed order and reports the
// first violation, so a request with several problems always surfaces the
// same complaint. The order is: share count bounds, threshold bounds,
// recipients, password, then the optional limits.
func (d *Descriptor) Validate() error {
	if d.TotalShares < MinShares {
		return fmt.Errorf("%w: total_shares must be at least %d", models.ErrInvalidDescriptor, MinShares)
	}
	if d.TotalShares > MaxShares {
		return fmt.Errorf("%w: total_shares must be at most %d", models.ErrInvalidDescriptor, MaxShares)
	}
	if d.Threshold < MinThreshold {
		return fmt.Errorf("%w: threshold must be at least %d", models.ErrInvalidDescriptor, MinThreshold)
	}
	if d.Threshold > d.TotalShares {
		return fmt.Errorf("%w: threshold cannot exceed total_shares", models.ErrInvalidDescriptor)
	}
	if len(d.Recipients) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", models.ErrInvalidDescriptor)
	}
	for _, r := range d.Recipients {
		if err := emailValidator.Var(r, "required,email"); err != nil {
			return fmt.Errorf("%w: invalid recipient address %q", models.ErrInvalidDescriptor, r)
		}
	}
	if err := models.ValidatePassword(d.Password); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidDescriptor, err)
	}
	if d.ExpiresAt != nil && !d.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("%w: expires_at must be in the future", models.ErrInvalidDescriptor)
	}
	if d.MaxDownloads != nil && *d.MaxDownloads < 1 {
		return fmt.Errorf("%w: max_downloads must be at least 1", models.ErrInvalidDescriptor)
	}
	return nil
}
