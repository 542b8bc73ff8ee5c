package response

import (
	"errors"
	"log"
	"net/http"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetActor returns the caller identity resolved by the role middleware, or nil when
// the request carries none. Services treat nil as unauthenticated.
func GetActor(c *gin.Context) *entity.Actor {
	userID, err := GetUserID(c)
	if err != nil {
		return nil
	}

	role, ok := c.Get(ContextRole)
	if !ok {
		return nil
	}
	r, ok := role.(entity.Role)
	if !ok {
		return nil
	}

	return &entity.Actor{ID: userID, Role: r}
}

// ResponseSuccess writes the {"success": true, ...} envelope used by every workflow endpoint.
func ResponseSuccess(c *gin.Context, code int, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Err != nil {
			log.Printf("[Internal Error]: %s: %v", appErr.Message, appErr.Err)
		} else {
			log.Printf("[Internal Error]: %v", err)
		}
	}

	c.JSON(code, gin.H{"success": false, "error": err.Error()})
}
