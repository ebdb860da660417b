package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Challenge method identifiers.
const (
	ChallengeMethodEmail = "email"
	ChallengeMethodTOTP  = "totp"
)

// Challenge is an outstanding second-factor code. At most one unconsumed
// challenge exists per principal: issuing a new one replaces any prior row,
// which invalidates codes already in flight.
type Challenge struct {
	ID          string `gorm:"primaryKey;type:text"`
	PrincipalID string `gorm:"uniqueIndex;not null"`
	CodeHash    string `gorm:"not null" json:"-"`
	Method      string `gorm:"not null;default:email"`

	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Consumed  bool      `gorm:"not null;default:false"`
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (c *Challenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Usable reports whether the challenge can still be answered.
func (c *Challenge) Usable(now time.Time) bool {
	return !c.Consumed && now.Before(c.ExpiresAt)
}
