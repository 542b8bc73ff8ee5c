package http

import (
	"net/http"
	"strconv"

	"anoa.com/portalsekolah/internal/modules/product/dto"
	productService "anoa.com/portalsekolah/internal/modules/product/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	service productService.ProductService
}

func NewProductHandler(service productService.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ResponseError(c, apperror.BadRequest("ID produk tidak valid."))
		return 0, false
	}
	return uint(id), true
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(productService.MsgInvalidProduct))
		return
	}

	product, err := h.service.Create(c.Request.Context(), response.GetActor(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, "Produk berhasil ditambahkan.", product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(productService.MsgInvalidProduct))
		return
	}

	product, err := h.service.Update(c.Request.Context(), response.GetActor(c), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Produk berhasil diperbarui.", product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), response.GetActor(c), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "Produk berhasil dihapus.", nil)
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", products)
}

func (h *ProductHandler) Catalog(c *gin.Context) {
	products, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", products)
}
