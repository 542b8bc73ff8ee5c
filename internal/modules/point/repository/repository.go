package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrInsufficientBalance = errors.New("points balance would become negative")
	ErrZeroDelta           = errors.New("point delta must not be zero")
)

// ApplyPoints moves a profile balance by entry.Amount and appends entry to the ledger.
// It must run inside the caller's transaction; the conditional update refuses any delta
// that would take the balance below zero, so concurrent writers cannot overdraw.
func ApplyPoints(tx *gorm.DB, entry *entity.PointHistory) error {
	if entry.Amount == 0 {
		return ErrZeroDelta
	}

	res := tx.Model(&entity.Profile{}).
		Where("id = ? AND points + ? >= 0", entry.UserID, entry.Amount).
		Update("points", gorm.Expr("points + ?", entry.Amount))
	if res.Error != nil {
		if database.IsCheckViolation(res.Error) {
			return ErrInsufficientBalance
		}
		return res.Error
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&entity.Profile{}).Where("id = ?", entry.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProfileNotFound
		}
		return ErrInsufficientBalance
	}

	return tx.Create(entry).Error
}

// Earner is a student with the points earned in a period.
type Earner struct {
	UserID uuid.UUID
	Score  int
}

type PointRepository interface {
	// Credit applies a positive entry in its own transaction.
	Credit(ctx context.Context, entry *entity.PointHistory) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PointHistory, error)
	DistinctReasons(ctx context.Context, userID uuid.UUID) ([]string, error)
	// TopEarners ranks students by credited points; a nil since means all time.
	TopEarners(ctx context.Context, limit int, since *time.Time) ([]Earner, error)
	EarnedByUsers(ctx context.Context, userIDs []uuid.UUID, since *time.Time) (map[uuid.UUID]int, error)
	TotalEarned(ctx context.Context, userID uuid.UUID) (int, error)
}

type pointRepository struct {
	db *gorm.DB
}

func NewPointRepository(db *gorm.DB) PointRepository {
	return &pointRepository{db: db}
}

func (r *pointRepository) Credit(ctx context.Context, entry *entity.PointHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ApplyPoints(tx, entry)
	})
}

func (r *pointRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.PointHistory, error) {
	var entries []entity.PointHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&entries).Error
	return entries, err
}

func (r *pointRepository) DistinctReasons(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var reasons []string
	err := r.db.WithContext(ctx).
		Model(&entity.PointHistory{}).
		Where("user_id = ?", userID).
		Distinct("reason").
		Order("reason asc").
		Pluck("reason", &reasons).Error
	return reasons, err
}

func (r *pointRepository) TopEarners(ctx context.Context, limit int, since *time.Time) ([]Earner, error) {
	var results []Earner

	query := r.db.WithContext(ctx).
		Model(&entity.PointHistory{}).
		Select("point_history.user_id AS user_id, SUM(point_history.amount) AS score").
		Joins("JOIN profiles ON profiles.id = point_history.user_id").
		Where("point_history.amount > 0 AND profiles.role = ?", entity.RoleSiswa)
	if since != nil {
		query = query.Where("point_history.created_at >= ?", *since)
	}

	err := query.
		Group("point_history.user_id").
		Order("score DESC").
		Limit(limit).
		Scan(&results).Error
	return results, err
}

func (r *pointRepository) EarnedByUsers(ctx context.Context, userIDs []uuid.UUID, since *time.Time) (map[uuid.UUID]int, error) {
	earned := make(map[uuid.UUID]int, len(userIDs))
	if len(userIDs) == 0 {
		return earned, nil
	}

	var rows []Earner
	query := r.db.WithContext(ctx).
		Model(&entity.PointHistory{}).
		Select("user_id, SUM(amount) AS score").
		Where("user_id IN ? AND amount > 0", userIDs)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Group("user_id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		earned[row.UserID] = row.Score
	}
	return earned, nil
}

func (r *pointRepository) TotalEarned(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&entity.PointHistory{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND amount > 0", userID).
		Scan(&total).Error
	return total, err
}
