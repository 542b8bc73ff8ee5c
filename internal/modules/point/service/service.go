package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	notifService "anoa.com/portalsekolah/internal/modules/notification/service"
	"anoa.com/portalsekolah/internal/modules/point/dto"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	commonDto "anoa.com/portalsekolah/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgLoginRequired    = "Anda harus login terlebih dahulu."
	MsgCreditIncomplete = "Data tidak lengkap untuk menambahkan poin."
	MsgCreditAmount     = "Jumlah poin harus lebih dari nol."
	MsgCreditFailed     = "Gagal menambahkan poin."
	MsgCreditForbidden  = "Anda tidak memiliki akses untuk menambahkan poin."
	MsgCreditOtherClass = "Anda hanya dapat memberi poin kepada siswa di kelas Anda."
	MsgCreditNotStudent = "Poin hanya dapat diberikan kepada siswa."
	MsgStudentNotFound  = "Siswa tidak ditemukan."
)

type PointService interface {
	Credit(ctx context.Context, actor *entity.Actor, req dto.CreditPointsRequest) (*entity.PointHistory, error)
	History(ctx context.Context, userID uuid.UUID) ([]entity.PointHistory, error)
	Leaderboard(ctx context.Context, limit int, timeframe string) ([]dto.LeaderboardEntry, error)
	Status(ctx context.Context, userID uuid.UUID) (commonDto.GamificationStatus, error)
}

type pointService struct {
	repo                pointRepo.PointRepository
	userRepo            userRepo.UserRepository
	classRepo           classRepo.ClassRepository
	notificationService notifService.NotificationService
	now                 func() time.Time
}

func NewPointService(repo pointRepo.PointRepository, userRepo userRepo.UserRepository, classRepo classRepo.ClassRepository, notificationService notifService.NotificationService) PointService {
	return &pointService{
		repo:                repo,
		userRepo:            userRepo,
		classRepo:           classRepo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

func (s *pointService) Credit(ctx context.Context, actor *entity.Actor, req dto.CreditPointsRequest) (*entity.PointHistory, error) {
	if actor == nil {
		return nil, apperror.New(http.StatusUnauthorized, MsgLoginRequired, apperror.ErrUnauthorized)
	}
	if !actor.Role.CanCreditPoints() {
		return nil, apperror.Forbidden(MsgCreditForbidden)
	}

	reason := strings.TrimSpace(req.Reason)
	if req.UserID == uuid.Nil || reason == "" {
		return nil, apperror.BadRequest(MsgCreditIncomplete)
	}
	if req.Amount <= 0 {
		return nil, apperror.BadRequest(MsgCreditAmount)
	}

	target, err := s.userRepo.FindProfileByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgStudentNotFound)
		}
		return nil, apperror.Internal(MsgCreditFailed, err)
	}
	if target.Role != entity.RoleSiswa {
		return nil, apperror.BadRequest(MsgCreditNotStudent)
	}

	if err := s.authorizeCredit(ctx, actor, target); err != nil {
		return nil, err
	}

	earnedBefore, err := s.repo.TotalEarned(ctx, target.ID)
	if err != nil {
		log.Printf("Failed to read earned points for %s: %v", target.ID, err)
	}

	entry := &entity.PointHistory{
		UserID: target.ID,
		Amount: req.Amount,
		Reason: reason,
	}
	if err := s.repo.Credit(ctx, entry); err != nil {
		if errors.Is(err, pointRepo.ErrProfileNotFound) {
			return nil, apperror.NotFound(MsgStudentNotFound)
		}
		return nil, apperror.Internal(MsgCreditFailed, err)
	}

	log.Printf("⭐ %s credited %d points to %s (%s)", actor.ID, entry.Amount, target.ID, entry.Reason)
	s.notifyCredit(ctx, entry, earnedBefore)

	return entry, nil
}

// authorizeCredit lets admin credit any student and guru only students of a class they teach.
func (s *pointService) authorizeCredit(ctx context.Context, actor *entity.Actor, target *entity.Profile) error {
	switch actor.Role {
	case entity.RoleAdmin:
		return nil
	case entity.RoleGuru:
		if target.ClassID == nil {
			return apperror.Forbidden(MsgCreditOtherClass)
		}
		ok, err := s.classRepo.IsTeacherOf(ctx, actor.ID, *target.ClassID)
		if err != nil {
			return apperror.Internal(MsgCreditFailed, err)
		}
		if !ok {
			return apperror.Forbidden(MsgCreditOtherClass)
		}
		return nil
	case entity.RoleSiswa:
		return apperror.Forbidden(MsgCreditForbidden)
	}
	return apperror.Forbidden(MsgCreditForbidden)
}

func (s *pointService) notifyCredit(ctx context.Context, entry *entity.PointHistory, earnedBefore int) {
	if s.notificationService == nil {
		return
	}

	notification := &entity.Notification{
		UserID:     entry.UserID,
		Type:       entity.NotificationPointsCredited,
		EntityType: "points",
		EntityID:   fmt.Sprint(entry.ID),
		Message:    fmt.Sprintf("⭐ Kamu mendapat %d poin: %s", entry.Amount, entry.Reason),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("Failed to send points notification to user %s: %v", entry.UserID, err)
	}

	previousRank := GetGamificationStatus(earnedBefore).RankName
	newScore := earnedBefore + entry.Amount
	newRank := GetGamificationStatus(newScore).RankName
	if newRank == previousRank {
		return
	}

	rankUp := &entity.Notification{
		UserID:     entry.UserID,
		Type:       entity.NotificationRankUp,
		EntityType: "points",
		EntityID:   entry.UserID.String(),
		Message:    fmt.Sprintf("🎉 Selamat! Kamu naik rank dari %s ke %s dengan %d poin!", previousRank, newRank, newScore),
	}
	if err := s.notificationService.CreateNotification(ctx, rankUp); err != nil {
		log.Printf("Failed to send rank up notification to user %s: %v", entry.UserID, err)
	} else {
		log.Printf("✅ Rank up notification sent to user %s: %s -> %s", entry.UserID, previousRank, newRank)
	}
}

func (s *pointService) History(ctx context.Context, userID uuid.UUID) ([]entity.PointHistory, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *pointService) Status(ctx context.Context, userID uuid.UUID) (commonDto.GamificationStatus, error) {
	weekAgo := s.now().AddDate(0, 0, -7)

	earned, err := s.repo.EarnedByUsers(ctx, []uuid.UUID{userID}, nil)
	if err != nil {
		return commonDto.GamificationStatus{}, err
	}
	weekly, err := s.repo.EarnedByUsers(ctx, []uuid.UUID{userID}, &weekAgo)
	if err != nil {
		return commonDto.GamificationStatus{}, err
	}

	return GetGamificationStatusWithWeekly(earned[userID], weekly[userID]), nil
}

// Leaderboard ranks students by points earned in the timeframe ("all_time", "monthly" or "weekly").
// Rank names always follow all-time earnings.
func (s *pointService) Leaderboard(ctx context.Context, limit int, timeframe string) ([]dto.LeaderboardEntry, error) {
	now := s.now()
	weekAgo := now.AddDate(0, 0, -7)

	var since *time.Time
	switch timeframe {
	case "", "all_time":
	case "weekly":
		since = &weekAgo
	case "monthly":
		monthAgo := now.AddDate(0, -1, 0)
		since = &monthAgo
	default:
		return nil, apperror.BadRequest("Timeframe harus all_time, monthly, atau weekly.")
	}

	earners, err := s.repo.TopEarners(ctx, limit, since)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(earners))
	if len(earners) == 0 {
		return entries, nil
	}

	ids := make([]uuid.UUID, 0, len(earners))
	for _, e := range earners {
		ids = append(ids, e.UserID)
	}

	allTime, err := s.repo.EarnedByUsers(ctx, ids, nil)
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.EarnedByUsers(ctx, ids, &weekAgo)
	if err != nil {
		return nil, err
	}

	profiles, err := s.userRepo.FindProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profileMap := make(map[uuid.UUID]entity.Profile, len(profiles))
	for _, p := range profiles {
		profileMap[p.ID] = p
	}

	for i, e := range earners {
		p := profileMap[e.UserID]
		entries = append(entries, dto.LeaderboardEntry{
			UserID:             e.UserID,
			FullName:           p.FullName,
			AvatarURL:          p.AvatarURL,
			ClassID:            p.ClassID,
			Points:             p.Points,
			PeriodPoints:       e.Score,
			Position:           i + 1,
			GamificationStatus: GetGamificationStatusWithWeekly(allTime[e.UserID], weekly[e.UserID]),
		})
	}

	return entries, nil
}
