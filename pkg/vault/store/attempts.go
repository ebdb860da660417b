package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// ============================================
// ATTEMPT LEDGER OPERATIONS
// ============================================

// GetAttemptRecord returns the ledger row for a principal. A missing row is
// reported as a fresh zero-count record so callers never special-case the
// first attempt.
func (s *GORMStore) GetAttemptRecord(ctx context.Context, principalID string) (*models.AttemptRecord, error) {
	var record models.AttemptRecord
	err := s.db.WithContext(ctx).Where("principal_id = ?", principalID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AttemptRecord{PrincipalID: principalID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *GORMStore) PutAttemptRecord(ctx context.Context, record *models.AttemptRecord) error {
	record.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"failed_count", "locked_until", "updated_at"}),
		}).
		Create(record).Error
}

func (s *GORMStore) ClearAttemptRecord(ctx context.Context, principalID string) error {
	return s.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		Delete(&models.AttemptRecord{}).Error
}
