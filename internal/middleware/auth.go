package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	userService "anoa.com/portalsekolah/internal/modules/user/service"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	ContextTokenID  = "token_id"
	ContextTokenExp = "token_exp"
)

type AuthMiddleware struct {
	userRepo    userRepo.UserRepository
	redisClient *redis.Client
	secret      string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, redisClient *redis.Client, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo:    userRepo,
		redisClient: redisClient,
		secret:      secret,
	}
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Silakan login terlebih dahulu.")
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})
		if err != nil || !token.Valid {
			abort(c, http.StatusUnauthorized, "Sesi tidak valid atau sudah berakhir.")
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			abort(c, http.StatusUnauthorized, "Sesi tidak valid atau sudah berakhir.")
			return
		}

		if m.isRevoked(c, claims.ID) {
			abort(c, http.StatusUnauthorized, "Sesi sudah berakhir, silakan login kembali.")
			return
		}

		c.Set(response.ContextUserID, claims.Subject)
		c.Set(ContextTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) isRevoked(c *gin.Context, tokenID string) bool {
	if m.redisClient == nil || tokenID == "" {
		return false
	}
	n, err := m.redisClient.Exists(c.Request.Context(), userService.BlacklistKey(tokenID)).Result()
	if err != nil {
		log.Printf("⚠️ Token blacklist lookup failed: %v", err)
		return false
	}
	return n > 0
}

// RequireRole loads the caller's profile and admits only the listed roles.
// With no roles every authenticated profile passes, which still resolves the actor.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Silakan login terlebih dahulu.")
			return
		}

		profile, err := m.userRepo.FindProfileByID(c.Request.Context(), userID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Pengguna tidak ditemukan.")
			return
		}

		if len(roles) > 0 && !containsRole(roles, profile.Role) {
			abort(c, http.StatusForbidden, "Anda tidak memiliki akses ke halaman ini.")
			return
		}

		c.Set(response.ContextRole, profile.Role)
		c.Next()
	}
}

func containsRole(roles []entity.Role, r entity.Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}

// TokenFromContext returns the id and expiry of the token that authenticated the request.
func TokenFromContext(c *gin.Context) (string, time.Time, error) {
	id := c.GetString(ContextTokenID)
	if id == "" {
		return "", time.Time{}, errors.New("no token in context")
	}
	exp, _ := c.Get(ContextTokenExp)
	t, _ := exp.(time.Time)
	return id, t, nil
}
