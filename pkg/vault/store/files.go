package store

import (
	"context"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// ============================================
// FILE OPERATIONS
// ============================================

func (s *GORMStore) CreateFile(ctx context.Context, file *models.StoredFile) (string, error) {
	file.CreatedAt = time.Now()
	return createWithID(s.db, ctx, file, func(f *models.StoredFile, id string) { f.ID = id }, file.ID, models.ErrDuplicateFile)
}

func (s *GORMStore) GetFile(ctx context.Context, id string) (*models.StoredFile, error) {
	return getByField[models.StoredFile](s.db, ctx, "id", id, models.ErrFileNotFound)
}

func (s *GORMStore) ListFilesByOwner(ctx context.Context, ownerID string) ([]*models.StoredFile, error) {
	return listByField[models.StoredFile](s.db, ctx, "owner_id", ownerID)
}

func (s *GORMStore) DeleteFile(ctx context.Context, id string) error {
	return deleteByField[models.StoredFile](s.db, ctx, "id", id, models.ErrFileNotFound)
}
