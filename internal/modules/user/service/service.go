package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/user/dto"
	"anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MsgInvalidCredentials = "Email atau Password salah."
	MsgPanelForbidden     = "Anda tidak memiliki akses ke panel ini."
	MsgInvalidRole        = "Role pengguna tidak valid."
	MsgWrongOldPassword   = "Password lama salah."
)

// BlacklistKey is where a revoked token id is parked until the token would have expired anyway.
func BlacklistKey(tokenID string) string {
	return fmt.Sprintf("jwt_blacklist:%s", tokenID)
}

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error
}

type authService struct {
	repo        repository.UserRepository
	redisClient *redis.Client
	secret      string
	tokenTTL    time.Duration
	now         func() time.Time
}

func NewAuthService(repo repository.UserRepository, redisClient *redis.Client, secret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		repo:        repo,
		redisClient: redisClient,
		secret:      secret,
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	invalid := apperror.New(http.StatusUnauthorized, MsgInvalidCredentials, apperror.ErrUnauthorized)

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, apperror.Internal("Gagal memproses login.", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, invalid
	}

	portal := input.Portal
	if portal == "" {
		portal = entity.PortalUser
	}

	if user.Profile == nil || !user.Profile.Role.Valid() {
		return nil, apperror.Forbidden(MsgInvalidRole)
	}

	redirect, ok := user.Profile.Role.HomePath(portal)
	if !ok {
		if portal == entity.PortalPanel {
			return nil, apperror.Forbidden(MsgPanelForbidden)
		}
		return nil, apperror.Forbidden(MsgInvalidRole)
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.Internal("Gagal memproses login.", err)
	}

	log.Printf("🔑 %s signed in to %s portal as %s", user.Email, portal, user.Profile.Role)

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Profile:     user.Profile,
		Redirect:    redirect,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

// Logout revokes the token. Without redis tokens simply live until they expire.
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.redisClient == nil || tokenID == "" {
		return nil
	}

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.redisClient.Set(ctx, BlacklistKey(tokenID), "revoked", ttl).Err(); err != nil {
		return apperror.Internal("Gagal logout.", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Pengguna tidak ditemukan.")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Pengguna tidak ditemukan.")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return apperror.BadRequest(MsgWrongOldPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal("Gagal mengubah password.", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hash))
}
