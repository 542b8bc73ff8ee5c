package dto

import (
	"anoa.com/portalsekolah/internal/entity"
	"github.com/google/uuid"
)

type ClassRequest struct {
	Name      string     `json:"name" form:"name" binding:"required,max=100"`
	TeacherID *uuid.UUID `json:"teacher_id" form:"teacher_id"`
}

type ClassResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	TeacherID   *uuid.UUID `json:"teacher_id,omitempty"`
	TeacherName string     `json:"teacher_name,omitempty"`
}

type MyClassResponse struct {
	Class    ClassResponse    `json:"class"`
	Students []entity.Profile `json:"students"`
}

// StudentSummary is what a homeroom teacher sees about one student.
type StudentSummary struct {
	Profile          entity.Profile `json:"profile"`
	PointReasons     []string       `json:"point_reasons"`
	RedeemedProducts []string       `json:"redeemed_products"`
}

func ToClassResponse(c entity.Class) ClassResponse {
	res := ClassResponse{ID: c.ID, Name: c.Name, TeacherID: c.TeacherID}
	if c.Teacher != nil {
		res.TeacherName = c.Teacher.FullName
	}
	return res
}
