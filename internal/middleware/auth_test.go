package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	userService "anoa.com/portalsekolah/internal/modules/user/service"
	"anoa.com/portalsekolah/internal/testutil"
	"anoa.com/portalsekolah/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, tokenID string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		ID:        tokenID,
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newRouter(rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	auth := NewAuthMiddleware(nil, rdb, testSecret)
	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": c.GetString(response.ContextUserID)})
	})
	return r
}

func get(r http.Handler, token string) (int, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestRequireAuth_RefusesLoggedOutToken(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	r := newRouter(rdb)

	expiresAt := time.Now().Add(time.Hour)
	token := signToken(t, "jti-logout", expiresAt)
	other := signToken(t, "jti-still-valid", expiresAt)

	code, _ := get(r, token)
	require.Equal(t, http.StatusOK, code)

	auth := userService.NewAuthService(nil, rdb, testSecret, time.Hour)
	require.NoError(t, auth.Logout(context.Background(), "jti-logout", expiresAt))

	code, body := get(r, token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Sesi sudah berakhir, silakan login kembali.", body["error"])

	code, _ = get(r, other)
	assert.Equal(t, http.StatusOK, code)
}

func TestRequireAuth_TokenFromQuery(t *testing.T) {
	r := newRouter(nil)
	token := signToken(t, "jti-ws", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_RejectsBadTokens(t *testing.T) {
	r := newRouter(nil)

	code, body := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Silakan login terlebih dahulu.", body["error"])

	code, _ = get(r, signToken(t, "jti-old", time.Now().Add(-time.Minute)))
	assert.Equal(t, http.StatusUnauthorized, code)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)
	code, _ = get(r, forged)
	assert.Equal(t, http.StatusUnauthorized, code)
}
