package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredFile is the metadata row for a sealed artifact. The ciphertext
// itself lives in the artifact store under BlobKey; the per-file data key
// is kept wrapped under the server master key in SealedKey.
type StoredFile struct {
	ID          string `gorm:"primaryKey;type:text"`
	OwnerID     string `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	ContentType string
	Size        int64 `gorm:"not null"`

	BlobKey   string `gorm:"uniqueIndex;not null"`
	SealedKey []byte `gorm:"not null" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID if the caller did not set one.
func (f *StoredFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
