package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	notifRepo "anoa.com/portalsekolah/internal/modules/notification/repository"
	notifService "anoa.com/portalsekolah/internal/modules/notification/service"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	productRepo "anoa.com/portalsekolah/internal/modules/product/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRedisTestService(t *testing.T) (OrderService, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	svc := NewOrderService(
		orderRepo.NewOrderRepository(db),
		productRepo.NewProductRepository(db),
		userRepo.NewUserRepository(db),
		notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), rdb),
		rdb,
		Options{RateLimit: 10 * time.Second, CacheTTL: time.Minute},
	)
	return svc, db, mr
}

func TestCreateOrder_RateLimitedPerStudent(t *testing.T) {
	svc, db, mr := newRedisTestService(t)
	ctx := context.Background()

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 100, nil)
	other := testutil.CreateProfile(t, db, entity.RoleSiswa, 100, nil)
	product := testutil.CreateProduct(t, db, "Pulpen", 30, 5)

	_, err := svc.CreateOrder(ctx, studentActor(student), product.ID)
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, studentActor(student), product.ID)
	assertAppError(t, err, http.StatusTooManyRequests, "Terlalu banyak permintaan. Coba lagi dalam 10 detik.")

	_, err = svc.CreateOrder(ctx, studentActor(other), product.ID)
	require.NoError(t, err)

	mr.FastForward(10 * time.Second)
	_, err = svc.CreateOrder(ctx, studentActor(student), product.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&entity.Order{}).Where("user_id = ?", student.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCreateOrder_FailedAttemptDoesNotHoldTheSlot(t *testing.T) {
	svc, db, _ := newRedisTestService(t)
	ctx := context.Background()

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 100, nil)
	soldOut := testutil.CreateProduct(t, db, "Tas", 50, 0)
	pencil := testutil.CreateProduct(t, db, "Pensil", 10, 3)

	_, err := svc.CreateOrder(ctx, studentActor(student), soldOut.ID)
	assertAppError(t, err, http.StatusUnprocessableEntity, MsgOutOfStock)

	order, err := svc.CreateOrder(ctx, studentActor(student), pencil.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, order.Status)
}

func TestListOrders_CacheFollowsApproval(t *testing.T) {
	svc, db, mr := newRedisTestService(t)
	ctx := context.Background()

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 100, nil)
	product := testutil.CreateProduct(t, db, "Buku", 40, 2)

	order, err := svc.CreateOrder(ctx, studentActor(student), product.ID)
	require.NoError(t, err)

	pending, err := svc.ListOrders(ctx, adminActor(), entity.OrderPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	generation, err := mr.Get(cacheGenerationKey)
	require.NoError(t, err)
	staleKey := cacheKey(1, entity.OrderPending)
	assert.Equal(t, "1", generation)
	require.True(t, mr.Exists(staleKey))
	stalePayload, err := mr.Get(staleKey)
	require.NoError(t, err)

	_, err = svc.ApproveOrder(ctx, adminActor(), order.ID)
	require.NoError(t, err)

	// a list computed before the approval and written after it
	require.NoError(t, mr.Set(staleKey, stalePayload))

	pending, err = svc.ListOrders(ctx, adminActor(), entity.OrderPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := svc.ListOrders(ctx, adminActor(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.OrderApproved, all[0].Status)
}

func TestListOrders_CacheFollowsRejection(t *testing.T) {
	svc, db, _ := newRedisTestService(t)
	ctx := context.Background()

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 100, nil)
	product := testutil.CreateProduct(t, db, "Buku", 40, 2)

	order, err := svc.CreateOrder(ctx, studentActor(student), product.ID)
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, adminActor(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.OrderPending, all[0].Status)

	_, err = svc.RejectOrder(ctx, adminActor(), order.ID)
	require.NoError(t, err)

	all, err = svc.ListOrders(ctx, adminActor(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.OrderRejected, all[0].Status)

	rejected, err := svc.ListOrders(ctx, adminActor(), entity.OrderRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}
