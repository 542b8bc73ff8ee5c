package repository

import (
	"context"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"gorm.io/gorm"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	// Update rewrites the editable fields. resetNotice clears notified_at so a moved schedule is announced again.
	Update(ctx context.Context, material *entity.Material, resetNotice bool) error
	SetAttachment(ctx context.Context, id uint, path, name string) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*entity.Material, error)
	FindAll(ctx context.Context) ([]entity.Material, error)
	FindByClasses(ctx context.Context, classIDs []uint) ([]entity.Material, error)
	// FindVisibleForClass lists what students of the class may open at now.
	FindVisibleForClass(ctx context.Context, classID uint, now time.Time) ([]entity.Material, error)
	// FindDueForNotice lists visible materials whose schedule passed and whose class was not told yet.
	FindDueForNotice(ctx context.Context, now time.Time) ([]entity.Material, error)
	// MarkNotified claims the notice for one material. It returns false when another run already did.
	MarkNotified(ctx context.Context, id uint, at time.Time) (bool, error)
}

type materialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *entity.Material) error {
	return r.db.WithContext(ctx).Omit("Class", "Author").Create(material).Error
}

func (r *materialRepository) Update(ctx context.Context, material *entity.Material, resetNotice bool) error {
	fields := map[string]any{
		"title":         material.Title,
		"content":       material.Content,
		"status":        material.Status,
		"scheduled_for": material.ScheduledFor,
		"class_id":      material.ClassID,
	}
	if resetNotice {
		fields["notified_at"] = nil
	}

	res := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("id = ?", material.ID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepository) SetAttachment(ctx context.Context, id uint, path, name string) error {
	res := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attachment_path": path,
			"attachment_name": name,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Material{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *materialRepository) FindByID(ctx context.Context, id uint) (*entity.Material, error) {
	var material entity.Material
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Class").
		First(&material, id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepository) FindAll(ctx context.Context) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Class").
		Order("scheduled_for desc, id desc").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepository) FindByClasses(ctx context.Context, classIDs []uint) ([]entity.Material, error) {
	materials := []entity.Material{}
	if len(classIDs) == 0 {
		return materials, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Class").
		Where("class_id IN ?", classIDs).
		Order("scheduled_for desc, id desc").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepository) FindVisibleForClass(ctx context.Context, classID uint, now time.Time) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND status = ? AND scheduled_for <= ?", classID, entity.MaterialVisible, now).
		Order("scheduled_for desc, id desc").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepository) FindDueForNotice(ctx context.Context, now time.Time) ([]entity.Material, error) {
	var materials []entity.Material
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ? AND notified_at IS NULL", entity.MaterialVisible, now).
		Order("scheduled_for asc, id asc").
		Find(&materials).Error
	return materials, err
}

func (r *materialRepository) MarkNotified(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("id = ? AND notified_at IS NULL", id).
		Update("notified_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
