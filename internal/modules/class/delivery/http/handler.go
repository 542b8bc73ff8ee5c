package http

import (
	"net/http"
	"strconv"

	"anoa.com/portalsekolah/internal/modules/class/dto"
	classService "anoa.com/portalsekolah/internal/modules/class/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClassHandler struct {
	service classService.ClassService
}

func NewClassHandler(service classService.ClassService) *ClassHandler {
	return &ClassHandler{service: service}
}

func parseClassID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ResponseError(c, apperror.BadRequest("ID kelas tidak valid."))
		return 0, false
	}
	return uint(id), true
}

func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.ClassRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(classService.MsgClassNameRequired))
		return
	}

	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, "Kelas berhasil ditambahkan.", class)
}

func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := parseClassID(c)
	if !ok {
		return
	}

	var req dto.ClassRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(classService.MsgClassNameRequired))
		return
	}

	class, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Kelas berhasil diperbarui.", class)
}

func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := parseClassID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Kelas berhasil dihapus.", nil)
}

func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", classes)
}

func (h *ClassHandler) Teachers(c *gin.Context) {
	teachers, err := h.service.Teachers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", teachers)
}

func (h *ClassHandler) MyClass(c *gin.Context) {
	res, err := h.service.MyClass(c.Request.Context(), response.GetActor(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", res)
}

func (h *ClassHandler) StudentSummary(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("ID siswa tidak valid."))
		return
	}

	res, err := h.service.StudentSummary(c.Request.Context(), response.GetActor(c), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", res)
}
