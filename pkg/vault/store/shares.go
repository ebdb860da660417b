package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// ============================================
// SHARE OPERATIONS
// ============================================

func (s *GORMStore) CreateShare(ctx context.Context, share *models.Share) (string, error) {
	share.CreatedAt = time.Now()
	// Fragments are created through the association in the same insert,
	// so a failure leaves no orphaned share row.
	return createWithID(s.db, ctx, share, func(sh *models.Share, id string) { sh.ID = id }, share.ID, models.ErrDuplicateShare)
}

func (s *GORMStore) GetShareByToken(ctx context.Context, token string) (*models.Share, error) {
	return getByField[models.Share](s.db, ctx, "token", token, models.ErrShareNotFound, "Fragments")
}

func (s *GORMStore) ListSharesByOwner(ctx context.Context, ownerID string) ([]*models.Share, error) {
	return listByField[models.Share](s.db, ctx, "owner_id", ownerID, "Fragments")
}

// ClaimDownload consumes one download slot with a conditional UPDATE so
// concurrent requests racing for the last slot see exactly one winner.
// Shares without a ceiling only get their counter bumped.
func (s *GORMStore) ClaimDownload(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var share models.Share
		if err := tx.Where("token = ?", token).First(&share).Error; err != nil {
			return convertNotFoundError(err, models.ErrShareNotFound)
		}

		if share.MaxDownloads == nil {
			return tx.Model(&models.Share{}).
				Where("token = ?", token).
				Update("download_count", gorm.Expr("download_count + 1")).Error
		}

		result := tx.Model(&models.Share{}).
			Where("token = ? AND download_count < max_downloads", token).
			Update("download_count", gorm.Expr("download_count + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrDownloadsExhausted
		}
		return nil
	})
}

func (s *GORMStore) DeleteShare(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var share models.Share
		if err := tx.Where("token = ?", token).First(&share).Error; err != nil {
			return convertNotFoundError(err, models.ErrShareNotFound)
		}

		if err := tx.Where("share_id = ?", share.ID).Delete(&models.ShareFragment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("principal_id = ?", share.PrincipalID()).Delete(&models.AttemptRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("principal_id = ?", share.PrincipalID()).Delete(&models.Challenge{}).Error; err != nil {
			return err
		}

		return tx.Delete(&share).Error
	})
}
