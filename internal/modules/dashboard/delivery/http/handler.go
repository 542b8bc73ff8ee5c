package http

import (
	"net/http"

	dashboardService "anoa.com/portalsekolah/internal/modules/dashboard/service"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service dashboardService.DashboardService
}

func NewDashboardHandler(service dashboardService.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	res, err := h.service.Admin(c.Request.Context(), response.GetActor(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", res)
}

func (h *DashboardHandler) Guru(c *gin.Context) {
	res, err := h.service.Guru(c.Request.Context(), response.GetActor(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", res)
}

func (h *DashboardHandler) Siswa(c *gin.Context) {
	res, err := h.service.Siswa(c.Request.Context(), response.GetActor(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", res)
}
