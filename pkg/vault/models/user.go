package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can authenticate against the gate and own
// sealed files and share links.
type User struct {
	ID           string `gorm:"primaryKey;type:text"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"not null;default:end_user"`

	// TwoFactorEnabled marks the account as requiring an email code after
	// the primary secret verifies. TOTPSecret, when set, allows an
	// authenticator code to satisfy the same challenge.
	TwoFactorEnabled bool   `gorm:"not null;default:false"`
	TOTPSecret       string `json:"-"`

	Enabled            bool `gorm:"not null;default:true"`
	MustChangePassword bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin *time.Time
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PrincipalID returns the attempt-ledger key for this account. Account and
// share principals share one ledger table, so keys are namespaced.
func (u *User) PrincipalID() string {
	return "user:" + u.ID
}
