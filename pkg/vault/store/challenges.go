package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// ============================================
// CHALLENGE OPERATIONS
// ============================================

// ReplaceChallenge removes any outstanding challenge for the principal and
// inserts the new one in a single transaction. Issuing a fresh code
// therefore invalidates codes already in flight.
func (s *GORMStore) ReplaceChallenge(ctx context.Context, challenge *models.Challenge) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("principal_id = ?", challenge.PrincipalID).
			Delete(&models.Challenge{}).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
}

func (s *GORMStore) GetChallenge(ctx context.Context, principalID string) (*models.Challenge, error) {
	return getByField[models.Challenge](s.db, ctx, "principal_id", principalID, models.ErrChallengeNotFound)
}

func (s *GORMStore) ConsumeChallenge(ctx context.Context, principalID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("principal_id = ? AND consumed = ?", principalID, false).
		Update("consumed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrChallengeNotFound
	}
	return nil
}
