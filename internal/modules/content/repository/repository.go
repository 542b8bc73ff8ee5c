package repository

import (
	"context"

	"anoa.com/portalsekolah/internal/entity"
	"gorm.io/gorm"
)

type ContentRepository interface {
	Create(ctx context.Context, content *entity.Content) error
	Update(ctx context.Context, content *entity.Content) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*entity.Content, error)
	FindAll(ctx context.Context) ([]entity.Content, error)
	FindRecentPublished(ctx context.Context, limit int) ([]entity.Content, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *entity.Content) error {
	return r.db.WithContext(ctx).Omit("Author").Create(content).Error
}

func (r *contentRepository) Update(ctx context.Context, content *entity.Content) error {
	res := r.db.WithContext(ctx).Model(&entity.Content{}).
		Where("id = ?", content.ID).
		Updates(map[string]any{
			"title": content.Title,
			"body":  content.Body,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Content{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentRepository) FindByID(ctx context.Context, id uint) (*entity.Content, error) {
	var content entity.Content
	if err := r.db.WithContext(ctx).Preload("Author").First(&content, id).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) FindAll(ctx context.Context) ([]entity.Content, error) {
	var contents []entity.Content
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc, id desc").
		Find(&contents).Error
	return contents, err
}

func (r *contentRepository) FindRecentPublished(ctx context.Context, limit int) ([]entity.Content, error) {
	var contents []entity.Content
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.ContentPublished).
		Order("published_at desc, id desc").
		Limit(limit).
		Find(&contents).Error
	return contents, err
}
