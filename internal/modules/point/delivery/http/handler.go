package http

import (
	"net/http"
	"strconv"

	"anoa.com/portalsekolah/internal/modules/point/dto"
	pointService "anoa.com/portalsekolah/internal/modules/point/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointHandler struct {
	service pointService.PointService
}

func NewPointHandler(service pointService.PointService) *PointHandler {
	return &PointHandler{service: service}
}

func (h *PointHandler) Credit(c *gin.Context) {
	var req dto.CreditPointsRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(pointService.MsgCreditIncomplete))
		return
	}

	entry, err := h.service.Credit(c.Request.Context(), response.GetActor(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, "Poin berhasil ditambahkan.", entry)
}

func (h *PointHandler) MyHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	entries, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", entries)
}

// StudentHistory is the staff view of a single student's ledger.
func (h *PointHandler) StudentHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("ID siswa tidak valid."))
		return
	}

	entries, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", entries)
}

func (h *PointHandler) MyStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status, err := h.service.Status(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", status)
}

func (h *PointHandler) Leaderboard(c *gin.Context) {
	timeframe := c.Query("timeframe")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	entries, err := h.service.Leaderboard(c.Request.Context(), limit, timeframe)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", entries)
}
