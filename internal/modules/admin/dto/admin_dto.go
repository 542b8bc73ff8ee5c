package dto

import (
	"anoa.com/portalsekolah/internal/entity"
	orderDto "anoa.com/portalsekolah/internal/modules/order/dto"
)

type CreateUserInput struct {
	FullName string `json:"full_name" form:"full_name" binding:"required,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
	Role     string `json:"role" form:"role" binding:"required,oneof=admin guru siswa"`
	// ClassID only sticks for siswa.
	ClassID *uint `json:"class_id" form:"class_id"`
}

type UpdateUserInput struct {
	FullName string `json:"full_name" form:"full_name" binding:"required,max=100"`
	Role     string `json:"role" form:"role" binding:"required,oneof=admin guru siswa"`
	ClassID  *uint  `json:"class_id" form:"class_id"`
}

type AdminUserResponse struct {
	User    *entity.User    `json:"user"`
	Profile *entity.Profile `json:"profile"`
}

type UserDetailResponse struct {
	Profile *entity.Profile          `json:"profile"`
	Email   string                   `json:"email"`
	History []entity.PointHistory    `json:"point_history"`
	Orders  []orderDto.OrderResponse `json:"orders"`
}
