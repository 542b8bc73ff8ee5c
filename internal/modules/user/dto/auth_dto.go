package dto

import (
	"anoa.com/portalsekolah/internal/entity"
)

type LoginInput struct {
	Email    string        `json:"email" form:"email" binding:"required,email"`
	Password string        `json:"password" form:"password" binding:"required"`
	Portal   entity.Portal `json:"portal" form:"portal" binding:"omitempty,oneof=panel user"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	User        *entity.User    `json:"user"`
	Profile     *entity.Profile `json:"profile"`
	// Redirect is the landing page for the role in the chosen portal.
	Redirect string `json:"redirect"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}
