package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Share is a password-protected link to a sealed file. The per-file data
// key is never stored whole on a share: it is split into fragments and a
// threshold subset must be combined to unseal the payload.
type Share struct {
	ID      string `gorm:"primaryKey;type:text"`
	Token   string `gorm:"uniqueIndex;not null"`
	FileID  string `gorm:"index;not null"`
	OwnerID string `gorm:"index;not null"`

	PasswordHash string `gorm:"not null" json:"-"`

	TotalShares int `gorm:"not null"`
	Threshold   int `gorm:"not null"`

	// RequireSecondFactor gates the download behind an emailed code after
	// the share password verifies.
	RequireSecondFactor bool `gorm:"not null;default:false"`

	ExpiresAt     *time.Time
	MaxDownloads  *int64
	DownloadCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Fragments []ShareFragment `gorm:"foreignKey:ShareID;constraint:OnDelete:CASCADE" json:"-"`
}

// ShareFragment is one piece of a split file key, addressed to a single
// recipient. Threshold-many fragments reassemble the key.
type ShareFragment struct {
	ID        string `gorm:"primaryKey;type:text"`
	ShareID   string `gorm:"index;not null"`
	Index     int    `gorm:"not null"`
	Recipient string `gorm:"not null"`
	Payload   []byte `gorm:"not null" json:"-"`

	CreatedAt time.Time
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (f *ShareFragment) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the share is past its expiry instant. Shares
// without an expiry never expire.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// DownloadsExhausted reports whether the download ceiling has been reached.
// The authoritative check is the conditional claim in the store; this is
// only a fast-path read.
func (s *Share) DownloadsExhausted() bool {
	return s.MaxDownloads != nil && s.DownloadCount >= *s.MaxDownloads
}

// PrincipalID returns the attempt-ledger key for this share link.
func (s *Share) PrincipalID() string {
	return "share:" + s.Token
}
