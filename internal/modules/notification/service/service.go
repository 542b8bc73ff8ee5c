package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"anoa.com/portalsekolah/internal/entity"
	notifRepo "anoa.com/portalsekolah/internal/modules/notification/repository"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	Broadcast(ctx context.Context, userIDs []uuid.UUID, template entity.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

// Channel is the redis pub/sub channel a user's websocket listens on.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	s.publish(ctx, notification)
	return nil
}

// Broadcast stores one copy of template per receiver and pushes each to its channel.
func (s *notificationService) Broadcast(ctx context.Context, userIDs []uuid.UUID, template entity.Notification) error {
	if len(userIDs) == 0 {
		return nil
	}

	batch := make([]entity.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		n := template
		n.ID = uuid.New()
		n.UserID = id
		batch = append(batch, n)
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return err
	}

	for i := range batch {
		s.publish(ctx, &batch[i])
	}
	return nil
}

func (s *notificationService) publish(ctx context.Context, notification *entity.Notification) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("Failed to encode notification %s: %v", notification.ID, err)
		return
	}

	if err := s.redisClient.Publish(ctx, Channel(notification.UserID.String()), payload).Err(); err != nil {
		log.Printf("Failed to publish notification to user %s: %v", notification.UserID, err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Notifikasi tidak ditemukan.")
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
