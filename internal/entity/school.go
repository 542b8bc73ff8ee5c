package entity

import (
	"time"

	"github.com/google/uuid"
)

type Class struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	TeacherID *uuid.UUID `gorm:"type:uuid;index" json:"teacher_id"`
	Teacher   *Profile   `gorm:"foreignKey:TeacherID;constraint:OnDelete:SET NULL" json:"teacher,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type ContentStatus string

const (
	ContentDraft     ContentStatus = "draft"
	ContentPublished ContentStatus = "published"
)

// Content is an announcement shown on the dashboards.
type Content struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Body        string        `gorm:"type:text" json:"body"`
	Status      ContentStatus `gorm:"size:20;not null;index" json:"status"`
	AuthorID    uuid.UUID     `gorm:"type:uuid;not null" json:"author_id"`
	Author      *Profile      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	PublishedAt *time.Time    `gorm:"index" json:"published_at"`
}

func (Content) TableName() string {
	return "content"
}

type MaterialStatus string

const (
	MaterialVisible MaterialStatus = "visible"
	MaterialHidden  MaterialStatus = "hidden"
)

func (s MaterialStatus) Valid() bool {
	switch s {
	case MaterialVisible, MaterialHidden:
		return true
	}
	return false
}

// Material is a learning material for one class. Students see it once it is
// visible and its schedule has passed.
type Material struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Content        string         `gorm:"type:text" json:"content"`
	Status         MaterialStatus `gorm:"size:20;not null" json:"status"`
	ScheduledFor   time.Time      `gorm:"not null;index" json:"scheduled_for"`
	ClassID        uint           `gorm:"not null;index" json:"class_id"`
	Class          *Class         `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"class,omitempty"`
	AuthorID       uuid.UUID      `gorm:"type:uuid;not null" json:"author_id"`
	Author         *Profile       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AttachmentPath *string        `gorm:"type:text" json:"-"`
	AttachmentName *string        `gorm:"size:255" json:"attachment_name,omitempty"`
	NotifiedAt     *time.Time     `json:"-"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Material) HasAttachment() bool {
	return m.AttachmentPath != nil && *m.AttachmentPath != ""
}

// VisibleAt reports whether students may see the material at the given instant.
func (m *Material) VisibleAt(now time.Time) bool {
	return m.Status == MaterialVisible && !m.ScheduledFor.After(now)
}
