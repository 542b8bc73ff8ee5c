package dto

import (
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	ProductID uint `json:"product_id" form:"product_id" binding:"required,gt=0"`
}

// OrderResponse is the flattened order row shown in admin lists and student history.
type OrderResponse struct {
	ID          uint               `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	StudentName string             `json:"student_name"`
	ProductID   uint               `json:"product_id"`
	ProductName string             `json:"product_name"`
	Price       int                `json:"price"`
	Status      entity.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

func ToOrderResponse(o entity.Order) OrderResponse {
	res := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.User != nil {
		res.StudentName = o.User.FullName
	}
	if o.Product != nil {
		res.ProductName = o.Product.Name
		res.Price = o.Product.Price
	}
	return res
}

func ToOrderResponses(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}
