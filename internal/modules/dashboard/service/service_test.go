package service

import (
	"context"
	"net/http"
	"testing"

	"anoa.com/portalsekolah/internal/entity"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	contentDto "anoa.com/portalsekolah/internal/modules/content/dto"
	contentRepo "anoa.com/portalsekolah/internal/modules/content/repository"
	contentService "anoa.com/portalsekolah/internal/modules/content/service"
	notifRepo "anoa.com/portalsekolah/internal/modules/notification/repository"
	notifService "anoa.com/portalsekolah/internal/modules/notification/service"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	orderService "anoa.com/portalsekolah/internal/modules/order/service"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	pointService "anoa.com/portalsekolah/internal/modules/point/service"
	productRepo "anoa.com/portalsekolah/internal/modules/product/repository"
	searchService "anoa.com/portalsekolah/internal/modules/search/service"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/internal/testutil"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc      DashboardService
	orders   orderService.OrderService
	contents contentService.ContentService
	db       *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db := testutil.NewDB(t)
	users := userRepo.NewUserRepository(db)
	products := productRepo.NewProductRepository(db)
	classes := classRepo.NewClassRepository(db)
	notifs := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)

	orders := orderService.NewOrderService(orderRepo.NewOrderRepository(db), products, users, notifs, nil, orderService.Options{})
	points := pointService.NewPointService(pointRepo.NewPointRepository(db), users, classes, notifs)
	contents := contentService.NewContentService(contentRepo.NewContentRepository(db), searchService.NewMeiliSearchService(nil))

	return fixture{
		svc:      NewDashboardService(users, products, classes, orders, points, contents),
		orders:   orders,
		contents: contents,
		db:       db,
	}
}

func TestAdminDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := testutil.CreateProfile(t, f.db, entity.RoleAdmin, 0, nil)
	testutil.CreateProfile(t, f.db, entity.RoleGuru, 0, nil)
	student := testutil.CreateProfile(t, f.db, entity.RoleSiswa, 100, nil)
	testutil.CreateProfile(t, f.db, entity.RoleSiswa, 0, nil)
	pen := testutil.CreateProduct(t, f.db, "Pulpen", 10, 3)
	testutil.CreateProduct(t, f.db, "Buku", 20, 0)

	_, err := f.orders.CreateOrder(ctx, &entity.Actor{ID: student.ID, Role: entity.RoleSiswa}, pen.ID)
	require.NoError(t, err)

	res, err := f.svc.Admin(ctx, &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.TotalProfiles)
	assert.Equal(t, int64(2), res.TotalProducts)
	assert.Equal(t, int64(1), res.RoleCounts[entity.RoleAdmin])
	assert.Equal(t, int64(1), res.RoleCounts[entity.RoleGuru])
	assert.Equal(t, int64(2), res.RoleCounts[entity.RoleSiswa])
	assert.Equal(t, int64(1), res.PendingOrders)
	require.Len(t, res.OrdersPerDay, 7)
	assert.Equal(t, int64(1), res.OrdersPerDay[6].Total)

	_, err = f.svc.Admin(ctx, &entity.Actor{ID: student.ID, Role: entity.RoleSiswa})
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))
}

func TestGuruDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	guru := testutil.CreateProfile(t, f.db, entity.RoleGuru, 0, nil)
	actor := &entity.Actor{ID: guru.ID, Role: entity.RoleGuru}

	res, err := f.svc.Guru(ctx, actor)
	require.NoError(t, err)
	assert.Nil(t, res.ClassID)
	assert.Zero(t, res.TotalStudents)

	class := testutil.CreateClass(t, f.db, "6A", &guru.ID)
	testutil.CreateProfile(t, f.db, entity.RoleSiswa, 0, &class.ID)
	testutil.CreateProfile(t, f.db, entity.RoleSiswa, 0, &class.ID)
	testutil.CreateProfile(t, f.db, entity.RoleSiswa, 0, nil)

	res, err = f.svc.Guru(ctx, actor)
	require.NoError(t, err)
	require.NotNil(t, res.ClassID)
	assert.Equal(t, "6A", res.ClassName)
	assert.Equal(t, int64(2), res.TotalStudents)
}

func TestSiswaDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := testutil.CreateProfile(t, f.db, entity.RoleAdmin, 0, nil)
	student := testutil.CreateProfile(t, f.db, entity.RoleSiswa, 30, nil)

	_, err := f.contents.Add(ctx, &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}, contentDto.ContentRequest{Title: "Upacara", Body: "Senin pagi"})
	require.NoError(t, err)

	res, err := f.svc.Siswa(ctx, &entity.Actor{ID: student.ID, Role: entity.RoleSiswa})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Profile.Points)
	require.Len(t, res.Announcements, 1)
	assert.Equal(t, "Upacara", res.Announcements[0].Title)
	assert.NotEmpty(t, res.Rank.RankName)

	_, err = f.svc.Siswa(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
