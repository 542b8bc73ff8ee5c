package http

import (
	"errors"
	"net/http"

	searchService "anoa.com/portalsekolah/internal/modules/search/service"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SearchHandler struct {
	service  searchService.SearchService
	userRepo userRepo.UserRepository
}

func NewSearchHandler(service searchService.SearchService, userRepo userRepo.UserRepository) *SearchHandler {
	return &SearchHandler{service: service, userRepo: userRepo}
}

func (h *SearchHandler) Search(c *gin.Context) {
	actor := response.GetActor(c)
	if actor == nil {
		response.ResponseError(c, apperror.ErrUnauthorized)
		return
	}

	profile, err := h.userRepo.FindProfileByID(c.Request.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.ResponseError(c, apperror.ErrUnauthorized)
			return
		}
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), actor, profile.ClassID, c.Query("q"))
	if err != nil {
		response.ResponseError(c, apperror.Internal("Pencarian sedang tidak tersedia.", err))
		return
	}
	response.ResponseSuccess(c, http.StatusOK, "", res)
}
