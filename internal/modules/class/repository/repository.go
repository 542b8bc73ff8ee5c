package repository

import (
	"context"

	"anoa.com/portalsekolah/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassRepository interface {
	Create(ctx context.Context, class *entity.Class) error
	Update(ctx context.Context, class *entity.Class) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*entity.Class, error)
	FindAll(ctx context.Context) ([]entity.Class, error)
	FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error)
	IsTeacherOf(ctx context.Context, teacherID uuid.UUID, classID uint) (bool, error)
}

type classRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *entity.Class) error {
	return r.db.WithContext(ctx).Omit("Teacher").Create(class).Error
}

func (r *classRepository) Update(ctx context.Context, class *entity.Class) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Class{}).
		Where("id = ?", class.ID).
		Updates(map[string]any{
			"name":       class.Name,
			"teacher_id": class.TeacherID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the class and detaches its students.
func (r *classRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Profile{}).Where("class_id = ?", id).Update("class_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Class{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *classRepository) FindByID(ctx context.Context, id uint) (*entity.Class, error) {
	var class entity.Class
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) FindAll(ctx context.Context) ([]entity.Class, error) {
	var classes []entity.Class
	err := r.db.WithContext(ctx).Preload("Teacher").Order("name asc").Find(&classes).Error
	return classes, err
}

func (r *classRepository) FindByTeacher(ctx context.Context, teacherID uuid.UUID) ([]entity.Class, error) {
	var classes []entity.Class
	err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("name asc").Find(&classes).Error
	return classes, err
}

func (r *classRepository) IsTeacherOf(ctx context.Context, teacherID uuid.UUID, classID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Class{}).
		Where("id = ? AND teacher_id = ?", classID, teacherID).
		Count(&count).Error
	return count > 0, err
}
