package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order is not pending")
	ErrStockExhausted  = errors.New("product stock exhausted")
	ErrProductNotFound = errors.New("product not found")
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uint) (*entity.Order, error)
	// List returns orders with student and product, newest first. An empty status lists all.
	List(ctx context.Context, status entity.OrderStatus) ([]entity.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	CountByStatus(ctx context.Context, status entity.OrderStatus) (int64, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	RedeemedProductNames(ctx context.Context, userID uuid.UUID) ([]string, error)
	// Approve settles a pending order: stock -1, points -price with a ledger entry, status approved.
	// All of it commits together or not at all.
	Approve(ctx context.Context, id uint) (*entity.Order, error)
	// Reject moves a pending order to rejected without touching stock or points.
	Reject(ctx context.Context, id uint) (*entity.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Omit("User", "Product").Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*entity.Order, error) {
	var order entity.Order
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Product").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, status entity.OrderStatus) ([]entity.Order, error) {
	var orders []entity.Order
	query := r.db.WithContext(ctx).Preload("User").Preload("Product")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at desc, id desc").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) CountByStatus(ctx context.Context, status entity.OrderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *orderRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var stamps []time.Time
	err := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("created_at >= ?", since).
		Order("created_at asc").
		Pluck("created_at", &stamps).Error
	return stamps, err
}

func (r *orderRepository) RedeemedProductNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Joins("JOIN products ON products.id = product_orders.product_id").
		Where("product_orders.user_id = ? AND product_orders.status = ?", userID, entity.OrderApproved).
		Distinct("products.name").
		Order("products.name asc").
		Pluck("products.name", &names).Error
	return names, err
}

func (r *orderRepository) Approve(ctx context.Context, id uint) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.CanTransitionTo(entity.OrderApproved) {
			return ErrOrderNotPending
		}

		var product entity.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, order.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		res := tx.Model(&entity.Product{}).
			Where("id = ? AND stock > 0", product.ID).
			Update("stock", gorm.Expr("stock - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStockExhausted
		}
		product.Stock--

		entry := &entity.PointHistory{
			UserID:  order.UserID,
			Amount:  -product.Price,
			Reason:  fmt.Sprintf("Penukaran produk: %s", product.Name),
			OrderID: &order.ID,
		}
		if err := pointRepo.ApplyPoints(tx, entry); err != nil {
			return err
		}

		res = tx.Model(&entity.Order{}).
			Where("id = ? AND status = ?", order.ID, entity.OrderPending).
			Update("status", entity.OrderApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}

		order.Status = entity.OrderApproved
		order.Product = &product
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) Reject(ctx context.Context, id uint) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Product").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.CanTransitionTo(entity.OrderRejected) {
			return ErrOrderNotPending
		}

		res := tx.Model(&entity.Order{}).
			Where("id = ? AND status = ?", order.ID, entity.OrderPending).
			Update("status", entity.OrderRejected)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}

		order.Status = entity.OrderRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}
