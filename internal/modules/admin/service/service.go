package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/admin/dto"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	orderDto "anoa.com/portalsekolah/internal/modules/order/dto"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"anoa.com/portalsekolah/pkg/database"
	commonDto "anoa.com/portalsekolah/pkg/dto"
	"anoa.com/portalsekolah/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MsgEmailTaken      = "Email sudah terdaftar."
	MsgUserNotFound    = "Pengguna tidak ditemukan."
	MsgClassNotFound   = "Kelas tidak ditemukan."
	MsgDeleteSelf      = "Anda tidak dapat menghapus akun sendiri."
	MsgInviteFailed    = "Gagal menambahkan pengguna."
	MsgUpdateFailed    = "Gagal memperbarui pengguna."
	MsgAvatarFailed    = "Gagal mengunggah avatar."
	MsgInvalidUserRole = "Role pengguna tidak valid."
)

type AdminService interface {
	InviteUser(ctx context.Context, input dto.CreateUserInput, avatar *commonDto.UploadFile) (*dto.AdminUserResponse, error)
	EditProfile(ctx context.Context, id uuid.UUID, input dto.UpdateUserInput, avatar *commonDto.UploadFile) (*entity.Profile, error)
	DeleteUser(ctx context.Context, actor *entity.Actor, id uuid.UUID) error
	ListProfiles(ctx context.Context) ([]entity.Profile, error)
	UserDetails(ctx context.Context, id uuid.UUID) (*dto.UserDetailResponse, error)
}

type adminService struct {
	repo         userRepo.UserRepository
	classRepo    classRepo.ClassRepository
	pointRepo    pointRepo.PointRepository
	orderRepo    orderRepo.OrderRepository
	imageStorage storage.FileStorage
}

func NewAdminService(
	repo userRepo.UserRepository,
	classRepo classRepo.ClassRepository,
	pointRepo pointRepo.PointRepository,
	orderRepo orderRepo.OrderRepository,
	imageStorage storage.FileStorage,
) AdminService {
	return &adminService{
		repo:         repo,
		classRepo:    classRepo,
		pointRepo:    pointRepo,
		orderRepo:    orderRepo,
		imageStorage: imageStorage,
	}
}

// classFor resolves the class a profile of role should carry. Only siswa keep one.
func (s *adminService) classFor(ctx context.Context, role entity.Role, classID *uint) (*uint, error) {
	if !role.HasClass() || classID == nil || *classID == 0 {
		return nil, nil
	}
	if _, err := s.classRepo.FindByID(ctx, *classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.BadRequest(MsgClassNotFound)
		}
		return nil, err
	}
	id := *classID
	return &id, nil
}

func (s *adminService) uploadAvatar(ctx context.Context, avatar *commonDto.UploadFile) (*string, error) {
	if avatar == nil || avatar.Reader == nil || s.imageStorage == nil {
		return nil, nil
	}
	url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
	if err != nil {
		return nil, apperror.Internal(MsgAvatarFailed, err)
	}
	return &url, nil
}

func (s *adminService) InviteUser(ctx context.Context, input dto.CreateUserInput, avatar *commonDto.UploadFile) (*dto.AdminUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, apperror.BadRequest(MsgInvalidUserRole)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict(MsgEmailTaken, nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(MsgInviteFailed, err)
	}

	classID, err := s.classFor(ctx, role, input.ClassID)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(MsgInviteFailed, fmt.Errorf("failed to hash password: %w", err))
	}

	avatarURL, err := s.uploadAvatar(ctx, avatar)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	profile := &entity.Profile{
		FullName:  strings.TrimSpace(input.FullName),
		Role:      role,
		Points:    0,
		ClassID:   classID,
		AvatarURL: avatarURL,
	}

	if err := s.repo.Create(ctx, user, profile); err != nil {
		// lost the race against another invite with the same email
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict(MsgEmailTaken, err)
		}
		return nil, apperror.Internal(MsgInviteFailed, err)
	}

	log.Printf("👤 User %s (%s) invited as %s", user.ID, user.Email, role)

	return &dto.AdminUserResponse{
		User:    user,
		Profile: profile,
	}, nil
}

func (s *adminService) EditProfile(ctx context.Context, id uuid.UUID, input dto.UpdateUserInput, avatar *commonDto.UploadFile) (*entity.Profile, error) {
	profile, err := s.repo.FindProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, apperror.Internal(MsgUpdateFailed, err)
	}

	role, err := entity.ParseRole(input.Role)
	if err != nil {
		return nil, apperror.BadRequest(MsgInvalidUserRole)
	}

	classID, err := s.classFor(ctx, role, input.ClassID)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.uploadAvatar(ctx, avatar)
	if err != nil {
		return nil, err
	}
	if avatarURL != nil {
		if profile.AvatarURL != nil && s.imageStorage != nil {
			if err := s.imageStorage.DeleteImage(ctx, *profile.AvatarURL); err != nil {
				log.Printf("Failed to delete old avatar of %s: %v", profile.ID, err)
			}
		}
		profile.AvatarURL = avatarURL
	}

	profile.FullName = strings.TrimSpace(input.FullName)
	profile.Role = role
	profile.ClassID = classID

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, apperror.Internal(MsgUpdateFailed, err)
	}

	return profile, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor *entity.Actor, id uuid.UUID) error {
	if actor != nil && actor.ID == id {
		return apperror.BadRequest(MsgDeleteSelf)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(MsgUserNotFound)
		}
		return apperror.Internal("Gagal menghapus pengguna.", err)
	}

	log.Printf("🗑️ User %s deleted", id)
	return nil
}

func (s *adminService) ListProfiles(ctx context.Context) ([]entity.Profile, error) {
	return s.repo.ListProfiles(ctx)
}

func (s *adminService) UserDetails(ctx context.Context, id uuid.UUID) (*dto.UserDetailResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	history, err := s.pointRepo.FindByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.UserDetailResponse{
		Profile: user.Profile,
		Email:   user.Email,
		History: history,
		Orders:  orderDto.ToOrderResponses(orders),
	}, nil
}
