package dto

import (
	"fmt"
	"io"
	"time"

	"anoa.com/portalsekolah/internal/entity"
)

type MaterialRequest struct {
	Title        string `json:"title" form:"title"`
	Content      string `json:"content" form:"content"`
	Status       string `json:"status" form:"status"`
	ScheduledFor string `json:"scheduled_for" form:"scheduled_for"`
	ClassID      uint   `json:"class_id" form:"class_id"`
}

type MaterialResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Status         string    `json:"status"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	ClassID        uint      `json:"class_id"`
	ClassName      string    `json:"class_name,omitempty"`
	AuthorName     string    `json:"author_name,omitempty"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	DownloadURL    string    `json:"download_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Download is an attachment body streamed from blob storage. The caller closes Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	FileName      string
}

func ToMaterialResponse(m entity.Material) MaterialResponse {
	res := MaterialResponse{
		ID:             m.ID,
		Title:          m.Title,
		Content:        m.Content,
		Status:         string(m.Status),
		ScheduledFor:   m.ScheduledFor,
		ClassID:        m.ClassID,
		AttachmentName: m.AttachmentName,
		CreatedAt:      m.CreatedAt,
	}
	if m.Class != nil {
		res.ClassName = m.Class.Name
	}
	if m.Author != nil {
		res.AuthorName = m.Author.FullName
	}
	if m.HasAttachment() {
		res.DownloadURL = DownloadPath(m.ID)
	}
	return res
}

func ToMaterialResponses(materials []entity.Material) []MaterialResponse {
	out := make([]MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, ToMaterialResponse(m))
	}
	return out
}

func DownloadPath(id uint) string {
	return fmt.Sprintf("/api/materials/%d/download", id)
}
