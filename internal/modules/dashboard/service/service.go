package service

import (
	"context"
	"errors"

	"anoa.com/portalsekolah/internal/entity"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	contentService "anoa.com/portalsekolah/internal/modules/content/service"
	"anoa.com/portalsekolah/internal/modules/dashboard/dto"
	orderService "anoa.com/portalsekolah/internal/modules/order/service"
	pointService "anoa.com/portalsekolah/internal/modules/point/service"
	productRepo "anoa.com/portalsekolah/internal/modules/product/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"gorm.io/gorm"
)

const ordersChartDays = 7

type DashboardService interface {
	Admin(ctx context.Context, actor *entity.Actor) (*dto.AdminDashboard, error)
	Guru(ctx context.Context, actor *entity.Actor) (*dto.GuruDashboard, error)
	Siswa(ctx context.Context, actor *entity.Actor) (*dto.SiswaDashboard, error)
}

type dashboardService struct {
	userRepo    userRepo.UserRepository
	productRepo productRepo.ProductRepository
	classRepo   classRepo.ClassRepository
	orders      orderService.OrderService
	points      pointService.PointService
	contents    contentService.ContentService
}

func NewDashboardService(
	userRepo userRepo.UserRepository,
	productRepo productRepo.ProductRepository,
	classRepo classRepo.ClassRepository,
	orders orderService.OrderService,
	points pointService.PointService,
	contents contentService.ContentService,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		productRepo: productRepo,
		classRepo:   classRepo,
		orders:      orders,
		points:      points,
		contents:    contents,
	}
}

func requireRole(actor *entity.Actor, role entity.Role) error {
	if actor == nil {
		return apperror.ErrUnauthorized
	}
	if actor.Role != role {
		return apperror.Forbidden("Anda tidak memiliki akses ke dashboard ini.")
	}
	return nil
}

func (s *dashboardService) Admin(ctx context.Context, actor *entity.Actor) (*dto.AdminDashboard, error) {
	if err := requireRole(actor, entity.RoleAdmin); err != nil {
		return nil, err
	}

	profiles, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.orders.DailyCounts(ctx, ordersChartDays)
	if err != nil {
		return nil, err
	}
	pending, err := s.orders.PendingCount(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminDashboard{
		TotalProfiles: profiles,
		TotalProducts: products,
		RoleCounts:    roles,
		OrdersPerDay:  daily,
		PendingOrders: pending,
	}, nil
}

// Guru reports on the first class the guru teaches. A guru without a class gets zero students.
func (s *dashboardService) Guru(ctx context.Context, actor *entity.Actor) (*dto.GuruDashboard, error) {
	if err := requireRole(actor, entity.RoleGuru); err != nil {
		return nil, err
	}

	classes, err := s.classRepo.FindByTeacher(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	res := &dto.GuruDashboard{}
	if len(classes) == 0 {
		return res, nil
	}

	total, err := s.userRepo.CountByClass(ctx, classes[0].ID)
	if err != nil {
		return nil, err
	}
	res.ClassID = &classes[0].ID
	res.ClassName = classes[0].Name
	res.TotalStudents = total
	return res, nil
}

func (s *dashboardService) Siswa(ctx context.Context, actor *entity.Actor) (*dto.SiswaDashboard, error) {
	if err := requireRole(actor, entity.RoleSiswa); err != nil {
		return nil, err
	}

	profile, err := s.userRepo.FindProfileByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Profil tidak ditemukan.")
		}
		return nil, err
	}
	rank, err := s.points.Status(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.contents.Recent(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.SiswaDashboard{
		Profile:       *profile,
		Rank:          rank,
		Announcements: recent,
	}, nil
}
