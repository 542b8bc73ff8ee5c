package http

import (
	"net/http"

	"anoa.com/portalsekolah/internal/modules/admin/dto"
	adminService "anoa.com/portalsekolah/internal/modules/admin/service"
	"anoa.com/portalsekolah/pkg/apperror"
	commonDto "anoa.com/portalsekolah/pkg/dto"
	"anoa.com/portalsekolah/pkg/response"
	"anoa.com/portalsekolah/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// avatarFrom returns the optional "avatar" multipart file. The caller closes it.
func avatarFrom(c *gin.Context) (*commonDto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, apperror.BadRequest("Gagal memuat avatar.")
	}

	return &commonDto.UploadFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	}, func() { _ = file.Close() }, nil
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("ID pengguna tidak valid."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input dto.CreateUserInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	avatar, closeAvatar, err := avatarFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeAvatar()

	res, err := h.adminService.InviteUser(c.Request.Context(), input, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, "Pengguna berhasil ditambahkan.", res)
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	res, err := h.adminService.ListProfiles(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", res)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	res, err := h.adminService.UserDetails(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", res)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), response.GetActor(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Pengguna berhasil dihapus.", nil)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var input dto.UpdateUserInput
	if err := c.ShouldBind(&input); err != nil {
		response.ResponseError(c, apperror.BadRequest(validator.FormatValidationError(err)))
		return
	}

	avatar, closeAvatar, err := avatarFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeAvatar()

	res, err := h.adminService.EditProfile(c.Request.Context(), id, input, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Pengguna berhasil diperbarui.", res)
}
