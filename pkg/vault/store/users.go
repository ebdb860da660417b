package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// ============================================
// USER OPERATIONS
// ============================================

func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "username", username, models.ErrUserNotFound)
}

func (s *GORMStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "id", id, models.ErrUserNotFound)
}

func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return listAll[models.User](s.db, ctx)
}

func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	user.CreatedAt = time.Now()
	return createWithID(s.db, ctx, user, func(u *models.User, id string) { u.ID = id }, user.ID, models.ErrDuplicateUser)
}

func (s *GORMStore) UpdateUser(ctx context.Context, user *models.User) error {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("id = ?", user.ID).First(&existing).Error; err != nil {
		return convertNotFoundError(err, models.ErrUserNotFound)
	}

	// Update specific fields using Select to handle zero values properly
	return s.db.WithContext(ctx).
		Model(&existing).
		Select("Username", "Email", "Role", "Enabled", "MustChangePassword", "TwoFactorEnabled", "TOTPSecret").
		Updates(user).Error
}

func (s *GORMStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":        passwordHash,
			"must_change_password": false,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *GORMStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}

func (s *GORMStore) DeleteUser(ctx context.Context, username string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return convertNotFoundError(err, models.ErrUserNotFound)
		}

		// Drop the user's ledger row so a recreated account starts clean
		if err := tx.Where("principal_id = ?", user.PrincipalID()).
			Delete(&models.AttemptRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("principal_id = ?", user.PrincipalID()).
			Delete(&models.Challenge{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// EnsureSuperAdmin creates the bootstrap super admin account on first start.
// The generated password is returned exactly once so the caller can print it;
// only the bcrypt hash is persisted.
func (s *GORMStore) EnsureSuperAdmin(ctx context.Context) (string, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("counting super admins: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	password, generated, err := models.GetOrGenerateSuperAdminPassword()
	if err != nil {
		return "", err
	}
	hash, err := models.HashPassword(password)
	if err != nil {
		return "", err
	}

	admin := models.DefaultSuperAdminUser()
	admin.PasswordHash = hash
	if _, err := s.CreateUser(ctx, admin); err != nil {
		return "", fmt.Errorf("creating super admin: %w", err)
	}

	if generated {
		return password, nil
	}
	return "", nil
}
