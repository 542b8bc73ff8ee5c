package http

import (
	"net/http"
	"strconv"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/order/dto"
	orderService "anoa.com/portalsekolah/internal/modules/order/service"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	service orderService.OrderService
}

func NewOrderHandler(service orderService.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ResponseError(c, apperror.BadRequest("ID pesanan tidak valid."))
		return 0, false
	}
	return uint(id), true
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, apperror.BadRequest(orderService.MsgLookupFailed))
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), response.GetActor(c), req.ProductID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusCreated, orderService.MsgCreated, order)
}

func (h *OrderHandler) Approve(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.service.ApproveOrder(c.Request.Context(), response.GetActor(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, orderService.MsgApproved, order)
}

func (h *OrderHandler) Reject(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.service.RejectOrder(c.Request.Context(), response.GetActor(c), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, orderService.MsgRejected, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	status := entity.OrderStatus(c.Query("status"))

	orders, err := h.service.ListOrders(c.Request.Context(), response.GetActor(c), status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", orders)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	orders, err := h.service.MyOrders(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.ResponseSuccess(c, http.StatusOK, "", orders)
}
