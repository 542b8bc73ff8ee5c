package http

import (
	"net/http"
	"strconv"

	"anoa.com/portalsekolah/internal/modules/content/dto"
	contentService "anoa.com/portalsekolah/internal/modules/content/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	service contentService.ContentService
}

func NewContentHandler(service contentService.ContentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func parseContentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ResponseError(c, apperror.BadRequest("ID pengumuman tidak valid."))
		return 0, false
	}
	return uint(id), true
}

func (h *ContentHandler) Add(c *gin.Context) {
	var req dto.ContentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(contentService.MsgTitleRequired))
		return
	}

	content, err := h.service.Add(c.Request.Context(), response.GetActor(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, "Pengumuman berhasil dipublikasikan.", content)
}

func (h *ContentHandler) Edit(c *gin.Context) {
	id, ok := parseContentID(c)
	if !ok {
		return
	}

	var req dto.ContentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(contentService.MsgTitleRequired))
		return
	}

	content, err := h.service.Edit(c.Request.Context(), response.GetActor(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Pengumuman berhasil diperbarui.", content)
}

func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := parseContentID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), response.GetActor(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Pengumuman berhasil dihapus.", nil)
}

func (h *ContentHandler) List(c *gin.Context) {
	contents, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", contents)
}

func (h *ContentHandler) Recent(c *gin.Context) {
	contents, err := h.service.Recent(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", contents)
}
