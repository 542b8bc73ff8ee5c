package http

import (
	"net/http"

	"anoa.com/portalsekolah/internal/middleware"
	"anoa.com/portalsekolah/internal/modules/user/dto"
	"anoa.com/portalsekolah/internal/modules/user/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"anoa.com/portalsekolah/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Login berhasil.", res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, expiresAt, err := middleware.TokenFromContext(c)
	if err != nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Logout berhasil.", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, input); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Password berhasil diubah.", nil)
}
