package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/user/dto"
	"anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/internal/testutil"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func seedUser(t *testing.T, repo repository.UserRepository, email string, role entity.Role) *entity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{Email: email, PasswordHash: string(hash)}
	require.NoError(t, repo.Create(context.Background(), user, &entity.Profile{FullName: email, Role: role}))
	return user
}

func TestLogin_PortalRouting(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewAuthService(repo, nil, testSecret, time.Hour)

	seedUser(t, repo, "admin@sekolah.id", entity.RoleAdmin)
	seedUser(t, repo, "guru@sekolah.id", entity.RoleGuru)
	seedUser(t, repo, "siswa@sekolah.id", entity.RoleSiswa)

	tests := []struct {
		email    string
		portal   entity.Portal
		redirect string
		code     int
		message  string
	}{
		{"admin@sekolah.id", entity.PortalPanel, "/admin/dashboard", 0, ""},
		{"guru@sekolah.id", entity.PortalPanel, "/admin/kelas-saya", 0, ""},
		{"siswa@sekolah.id", entity.PortalPanel, "", http.StatusForbidden, MsgPanelForbidden},
		{"guru@sekolah.id", entity.PortalUser, "/admin/dashboard", 0, ""},
		{"siswa@sekolah.id", entity.PortalUser, "/siswa/dashboard", 0, ""},
		{"siswa@sekolah.id", "", "/siswa/dashboard", 0, ""},
		{"admin@sekolah.id", entity.PortalUser, "", http.StatusForbidden, MsgInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.email+"/"+string(tt.portal), func(t *testing.T) {
			res, err := svc.Login(context.Background(), dto.LoginInput{
				Email:    tt.email,
				Password: "rahasia123",
				Portal:   tt.portal,
			})
			if tt.code != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.code, apperror.MapErrorToStatus(err))
				assert.Equal(t, tt.message, err.Error())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.redirect, res.Redirect)
			assert.Equal(t, "Bearer", res.TokenType)

			claims := &jwt.RegisteredClaims{}
			_, err = jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(testSecret), nil
			})
			require.NoError(t, err)
			assert.Equal(t, res.User.ID.String(), claims.Subject)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewAuthService(repo, nil, testSecret, time.Hour)

	seedUser(t, repo, "siswa@sekolah.id", entity.RoleSiswa)

	for _, input := range []dto.LoginInput{
		{Email: "siswa@sekolah.id", Password: "salah"},
		{Email: "tidakada@sekolah.id", Password: "rahasia123"},
	} {
		_, err := svc.Login(context.Background(), input)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
		assert.Equal(t, MsgInvalidCredentials, err.Error())
	}
}

func TestChangePassword(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewAuthService(repo, nil, testSecret, time.Hour)
	ctx := context.Background()

	user := seedUser(t, repo, "guru@sekolah.id", entity.RoleGuru)

	err := svc.ChangePassword(ctx, user.ID, dto.ChangePasswordInput{OldPassword: "keliru", NewPassword: "barubaru1"})
	require.Error(t, err)
	assert.Equal(t, MsgWrongOldPassword, err.Error())

	require.NoError(t, svc.ChangePassword(ctx, user.ID, dto.ChangePasswordInput{OldPassword: "rahasia123", NewPassword: "barubaru1"}))

	_, err = svc.Login(ctx, dto.LoginInput{Email: "guru@sekolah.id", Password: "barubaru1", Portal: entity.PortalPanel})
	require.NoError(t, err)
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	svc := NewAuthService(nil, nil, testSecret, time.Hour)
	assert.NoError(t, svc.Logout(context.Background(), "some-id", time.Now().Add(time.Hour)))
}

func TestLogoutBlacklistsUntilExpiry(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	svc := NewAuthService(nil, rdb, testSecret, time.Hour).(*authService)
	fixed := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "jti-1", fixed.Add(30*time.Minute)))
	require.True(t, mr.Exists(BlacklistKey("jti-1")))
	assert.Equal(t, 30*time.Minute, mr.TTL(BlacklistKey("jti-1")))

	require.NoError(t, svc.Logout(ctx, "jti-2", fixed.Add(-time.Minute)))
	assert.False(t, mr.Exists(BlacklistKey("jti-2")))

	mr.FastForward(30 * time.Minute)
	assert.False(t, mr.Exists(BlacklistKey("jti-1")))
}
