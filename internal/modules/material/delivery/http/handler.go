package http

import (
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/portalsekolah/internal/modules/material/dto"
	materialService "anoa.com/portalsekolah/internal/modules/material/service"
	"anoa.com/portalsekolah/pkg/apperror"
	commonDto "anoa.com/portalsekolah/pkg/dto"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
)

type MaterialHandler struct {
	service materialService.MaterialService
}

func NewMaterialHandler(service materialService.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

func parseMaterialID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ResponseError(c, apperror.BadRequest("ID materi tidak valid."))
		return 0, false
	}
	return uint(id), true
}

// attachmentFrom returns the optional "attachment" multipart file. The caller closes it.
func attachmentFrom(c *gin.Context) (*commonDto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile("attachment")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}
	if fileHeader.Size > materialService.MaxAttachmentSize {
		return nil, func() {}, apperror.BadRequest(materialService.MsgFileTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, apperror.BadRequest("Gagal memuat file lampiran.")
	}

	return &commonDto.UploadFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	}, func() { _ = file.Close() }, nil
}

func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.MaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest("Data tidak valid."))
		return
	}

	file, closeFile, err := attachmentFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	material, err := h.service.Create(c.Request.Context(), response.GetActor(c), req, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, "Materi berhasil dibuat!", material)
}

func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := parseMaterialID(c)
	if !ok {
		return
	}

	var req dto.MaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest("Data tidak valid."))
		return
	}

	file, closeFile, err := attachmentFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeFile()

	material, err := h.service.Update(c.Request.Context(), response.GetActor(c), id, req, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Materi berhasil diperbarui.", material)
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	id, ok := parseMaterialID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), response.GetActor(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Materi berhasil dihapus.", nil)
}

func (h *MaterialHandler) ManagerList(c *gin.Context) {
	materials, err := h.service.ListForManager(c.Request.Context(), response.GetActor(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", materials)
}

func (h *MaterialHandler) StudentList(c *gin.Context) {
	materials, err := h.service.ListForStudent(c.Request.Context(), response.GetActor(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", materials)
}

func (h *MaterialHandler) Detail(c *gin.Context) {
	id, ok := parseMaterialID(c)
	if !ok {
		return
	}

	material, err := h.service.Detail(c.Request.Context(), response.GetActor(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", material)
}

// Download streams the attachment through the API so the storage URL never reaches the browser.
func (h *MaterialHandler) Download(c *gin.Context) {
	id, ok := parseMaterialID(c)
	if !ok {
		return
	}

	file, err := h.service.Download(c.Request.Context(), response.GetActor(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer file.Body.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, file.ContentLength, contentType, file.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", file.FileName),
		"Cache-Control":       "no-store",
	})
}
