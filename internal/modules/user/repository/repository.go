package repository

import (
	"context"

	"anoa.com/portalsekolah/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User, profile *entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Profile, error)
	// UpdateProfile writes the editable profile columns. Points are never written here.
	UpdateProfile(ctx context.Context, profile *entity.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListProfiles(ctx context.Context) ([]entity.Profile, error)
	ListByRole(ctx context.Context, role entity.Role) ([]entity.Profile, error)
	ListByClass(ctx context.Context, classID uint) ([]entity.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[entity.Role]int64, error)
	CountByClass(ctx context.Context, classID uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(user).Error; err != nil {
			return err
		}

		if profile != nil {
			profile.ID = user.ID
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
			user.Profile = profile
		}

		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) FindProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Profile, error) {
	var profiles []entity.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	return r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"full_name":  profile.FullName,
			"role":       profile.Role,
			"class_id":   profile.ClassID,
			"avatar_url": profile.AvatarURL,
		}).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) ListProfiles(ctx context.Context) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).Order("full_name asc").Find(&profiles).Error
	return profiles, err
}

func (r *userRepository) ListByRole(ctx context.Context, role entity.Role) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("full_name asc").Find(&profiles).Error
	return profiles, err
}

func (r *userRepository) ListByClass(ctx context.Context, classID uint) ([]entity.Profile, error) {
	var profiles []entity.Profile
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND role = ?", classID, entity.RoleSiswa).
		Order("full_name asc").
		Find(&profiles).Error
	return profiles, err
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.Profile{}, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Profile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[entity.Role]int64, error) {
	var rows []struct {
		Role  entity.Role
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Select("role, COUNT(*) as total").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[entity.Role]int64{
		entity.RoleAdmin: 0,
		entity.RoleGuru:  0,
		entity.RoleSiswa: 0,
	}
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

func (r *userRepository) CountByClass(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Profile{}).
		Where("class_id = ? AND role = ?", classID, entity.RoleSiswa).
		Count(&count).Error
	return count, err
}
