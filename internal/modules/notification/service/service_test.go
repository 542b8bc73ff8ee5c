package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	notifRepo "anoa.com/portalsekolah/internal/modules/notification/repository"
	"anoa.com/portalsekolah/internal/testutil"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastAndRead(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	ctx := context.Background()

	a := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)
	b := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)

	require.NoError(t, svc.Broadcast(ctx, []uuid.UUID{a.ID, b.ID}, entity.Notification{
		Type:       entity.NotificationMaterialOpened,
		EntityType: "material",
		EntityID:   "3",
		Message:    "📚 Materi baru tersedia: Pecahan",
	}))
	require.NoError(t, svc.CreateNotification(ctx, &entity.Notification{
		UserID:  a.ID,
		Type:    entity.NotificationPointsCredited,
		Message: "⭐ Kamu mendapat 5 poin: Piket",
	}))
	require.NoError(t, svc.Broadcast(ctx, nil, entity.Notification{Message: "nobody"}))

	list, err := svc.GetNotifications(ctx, a.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, n := range list {
		assert.Equal(t, a.ID, n.UserID)
	}

	unread, err := svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, svc.MarkAsRead(ctx, a.ID, list[0].ID))
	unread, err = svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	err = svc.MarkAsRead(ctx, b.ID, list[1].ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	require.NoError(t, svc.MarkAllAsRead(ctx, a.ID))
	unread, err = svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "user_notifications:abc", Channel("abc"))
}

func TestCreateNotificationPublishesToUserChannel(t *testing.T) {
	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), rdb)

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)
	bystander := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, Channel(student.ID.String()))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.CreateNotification(ctx, &entity.Notification{
		UserID:  bystander.ID,
		Type:    entity.NotificationPointsCredited,
		Message: "bukan untukmu",
	}))
	require.NoError(t, svc.CreateNotification(ctx, &entity.Notification{
		UserID:     student.ID,
		Type:       entity.NotificationOrderApproved,
		EntityType: "order",
		EntityID:   "12",
		Message:    "🎁 Pesanan Pulpen kamu telah disetujui. 30 poin telah digunakan.",
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Channel(student.ID.String()), msg.Channel)

	var got entity.Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, student.ID, got.UserID)
	assert.Equal(t, entity.NotificationOrderApproved, got.Type)
	assert.Equal(t, "12", got.EntityID)
	assert.Equal(t, "🎁 Pesanan Pulpen kamu telah disetujui. 30 poin telah digunakan.", got.Message)
}
