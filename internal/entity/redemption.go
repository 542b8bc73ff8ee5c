package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Price     int       `gorm:"not null;check:price > 0" json:"price"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderRejected OrderStatus = "rejected"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderApproved, OrderRejected},
	OrderApproved: {},
	OrderRejected: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether the order may move from s to next.
// Approved and rejected are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// Order is a student's request to redeem a product. Stock and points move only on approval.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *Profile    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ProductID uint        `gorm:"not null;index" json:"product_id"`
	Product   *Product    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Status    OrderStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "product_orders"
}

// PointHistory is one append-only ledger entry. Positive amounts are credits,
// negative amounts are redemption debits and carry the order id.
type PointHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_point_user_date,priority:1" json:"user_id"`
	User      *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	OrderID   *uint     `gorm:"index" json:"order_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_point_user_date,priority:2" json:"created_at"`
}

func (PointHistory) TableName() string {
	return "point_history"
}
