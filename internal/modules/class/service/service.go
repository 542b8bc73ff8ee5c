package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/class/dto"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgClassNameRequired = "Nama kelas tidak boleh kosong."
	MsgClassNotFound     = "Kelas tidak ditemukan."
	MsgTeacherInvalid    = "Wali kelas harus pengguna dengan role guru."
	MsgNoClass           = "Anda belum memiliki kelas."
	MsgNotYourStudent    = "Siswa ini bukan anggota kelas Anda."
)

type ClassService interface {
	Create(ctx context.Context, req dto.ClassRequest) (*dto.ClassResponse, error)
	Update(ctx context.Context, id uint, req dto.ClassRequest) (*dto.ClassResponse, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]dto.ClassResponse, error)
	Teachers(ctx context.Context) ([]entity.Profile, error)
	MyClass(ctx context.Context, actor *entity.Actor) (*dto.MyClassResponse, error)
	StudentSummary(ctx context.Context, actor *entity.Actor, studentID uuid.UUID) (*dto.StudentSummary, error)
}

type classService struct {
	repo      classRepo.ClassRepository
	userRepo  userRepo.UserRepository
	pointRepo pointRepo.PointRepository
	orderRepo orderRepo.OrderRepository
}

func NewClassService(repo classRepo.ClassRepository, userRepo userRepo.UserRepository, pointRepo pointRepo.PointRepository, orderRepo orderRepo.OrderRepository) ClassService {
	return &classService{
		repo:      repo,
		userRepo:  userRepo,
		pointRepo: pointRepo,
		orderRepo: orderRepo,
	}
}

func (s *classService) checkTeacher(ctx context.Context, teacherID *uuid.UUID) error {
	if teacherID == nil {
		return nil
	}
	profile, err := s.userRepo.FindProfileByID(ctx, *teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.BadRequest(MsgTeacherInvalid)
		}
		return err
	}
	if profile.Role != entity.RoleGuru {
		return apperror.BadRequest(MsgTeacherInvalid)
	}
	return nil
}

func (s *classService) Create(ctx context.Context, req dto.ClassRequest) (*dto.ClassResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest(MsgClassNameRequired)
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	class := &entity.Class{Name: name, TeacherID: req.TeacherID}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, apperror.Internal("Gagal menambahkan kelas.", err)
	}

	log.Printf("🏫 Class %d (%s) created", class.ID, class.Name)
	return s.reload(ctx, class.ID)
}

func (s *classService) Update(ctx context.Context, id uint, req dto.ClassRequest) (*dto.ClassResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest(MsgClassNameRequired)
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &entity.Class{ID: id, Name: name, TeacherID: req.TeacherID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgClassNotFound)
		}
		return nil, apperror.Internal("Gagal memperbarui kelas.", err)
	}

	return s.reload(ctx, id)
}

func (s *classService) reload(ctx context.Context, id uint) (*dto.ClassResponse, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.ToClassResponse(*class)
	return &res, nil
}

func (s *classService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(MsgClassNotFound)
		}
		return apperror.Internal("Gagal menghapus kelas.", err)
	}
	return nil
}

func (s *classService) List(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClassResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, dto.ToClassResponse(c))
	}
	return out, nil
}

func (s *classService) Teachers(ctx context.Context) ([]entity.Profile, error) {
	return s.userRepo.ListByRole(ctx, entity.RoleGuru)
}

// MyClass returns the first class the guru teaches, by name.
func (s *classService) MyClass(ctx context.Context, actor *entity.Actor) (*dto.MyClassResponse, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	classes, err := s.repo.FindByTeacher(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, apperror.NotFound(MsgNoClass)
	}

	students, err := s.userRepo.ListByClass(ctx, classes[0].ID)
	if err != nil {
		return nil, err
	}

	return &dto.MyClassResponse{
		Class:    dto.ToClassResponse(classes[0]),
		Students: students,
	}, nil
}

func (s *classService) StudentSummary(ctx context.Context, actor *entity.Actor, studentID uuid.UUID) (*dto.StudentSummary, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	student, err := s.userRepo.FindProfileByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Siswa tidak ditemukan.")
		}
		return nil, err
	}

	switch actor.Role {
	case entity.RoleAdmin:
	case entity.RoleGuru:
		if student.ClassID == nil {
			return nil, apperror.Forbidden(MsgNotYourStudent)
		}
		ok, err := s.repo.IsTeacherOf(ctx, actor.ID, *student.ClassID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.Forbidden(MsgNotYourStudent)
		}
	case entity.RoleSiswa:
		return nil, apperror.Forbidden(MsgNotYourStudent)
	default:
		return nil, apperror.Forbidden(MsgNotYourStudent)
	}

	reasons, err := s.pointRepo.DistinctReasons(ctx, studentID)
	if err != nil {
		return nil, err
	}
	products, err := s.orderRepo.RedeemedProductNames(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &dto.StudentSummary{
		Profile:          *student,
		PointReasons:     reasons,
		RedeemedProducts: products,
	}, nil
}
