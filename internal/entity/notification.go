package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationOrderApproved  = "order_approved"
	NotificationOrderRejected  = "order_rejected"
	NotificationPointsCredited = "points_credited"
	NotificationRankUp         = "rank_up"
	NotificationMaterialOpened = "material_published"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // receiver
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`
	EntityType string    `gorm:"type:varchar(50)" json:"entity_type"` // 'order', 'material', 'points'
	EntityID   string    `gorm:"type:varchar(64)" json:"entity_id"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
