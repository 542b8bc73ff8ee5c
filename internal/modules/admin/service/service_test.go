package service

import (
	"context"
	"net/http"
	"testing"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/admin/dto"
	classRepo "anoa.com/portalsekolah/internal/modules/class/repository"
	orderRepo "anoa.com/portalsekolah/internal/modules/order/repository"
	pointRepo "anoa.com/portalsekolah/internal/modules/point/repository"
	userRepo "anoa.com/portalsekolah/internal/modules/user/repository"
	"anoa.com/portalsekolah/internal/testutil"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (AdminService, *gorm.DB) {
	t.Helper()

	db := testutil.NewDB(t)
	svc := NewAdminService(
		userRepo.NewUserRepository(db),
		classRepo.NewClassRepository(db),
		pointRepo.NewPointRepository(db),
		orderRepo.NewOrderRepository(db),
		nil,
	)
	return svc, db
}

func TestInviteUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	class := testutil.CreateClass(t, db, "8B", nil)

	res, err := svc.InviteUser(ctx, dto.CreateUserInput{
		FullName: "  Budi Santoso ",
		Email:    "Budi@Sekolah.id",
		Password: "rahasia123",
		Role:     "siswa",
		ClassID:  &class.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "budi@sekolah.id", res.User.Email)
	assert.Equal(t, "Budi Santoso", res.Profile.FullName)
	assert.Equal(t, 0, res.Profile.Points)
	require.NotNil(t, res.Profile.ClassID)
	assert.Equal(t, class.ID, *res.Profile.ClassID)

	stored := testutil.ReloadProfile(t, db, res.User.ID)
	assert.Equal(t, entity.RoleSiswa, stored.Role)

	_, err = svc.InviteUser(ctx, dto.CreateUserInput{
		FullName: "Budi Lain",
		Email:    "budi@sekolah.id",
		Password: "rahasia123",
		Role:     "siswa",
	}, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperror.MapErrorToStatus(err))
	assert.Equal(t, MsgEmailTaken, err.Error())
}

func TestInviteUser_ClassOnlyForStudents(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	class := testutil.CreateClass(t, db, "9C", nil)

	res, err := svc.InviteUser(ctx, dto.CreateUserInput{
		FullName: "Bu Sari",
		Email:    "sari@sekolah.id",
		Password: "rahasia123",
		Role:     "guru",
		ClassID:  &class.ID,
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Profile.ClassID)

	missing := uint(999)
	_, err = svc.InviteUser(ctx, dto.CreateUserInput{
		FullName: "Ani",
		Email:    "ani@sekolah.id",
		Password: "rahasia123",
		Role:     "siswa",
		ClassID:  &missing,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, MsgClassNotFound, err.Error())
}

func TestEditProfile_ClearsClassWhenLeavingSiswa(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	class := testutil.CreateClass(t, db, "7A", nil)
	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 40, &class.ID)

	updated, err := svc.EditProfile(ctx, student.ID, dto.UpdateUserInput{
		FullName: "Guru Baru",
		Role:     "guru",
		ClassID:  &class.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleGuru, updated.Role)
	assert.Nil(t, updated.ClassID)

	stored := testutil.ReloadProfile(t, db, student.ID)
	assert.Nil(t, stored.ClassID)
	assert.Equal(t, 40, stored.Points)
}

func TestDeleteUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	admin := testutil.CreateProfile(t, db, entity.RoleAdmin, 0, nil)
	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)
	actor := &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}

	err := svc.DeleteUser(ctx, actor, admin.ID)
	require.Error(t, err)
	assert.Equal(t, MsgDeleteSelf, err.Error())

	require.NoError(t, svc.DeleteUser(ctx, actor, student.ID))

	err = svc.DeleteUser(ctx, actor, student.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestUserDetails(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)
	require.NoError(t, pointRepo.NewPointRepository(db).Credit(ctx, &entity.PointHistory{
		UserID: student.ID,
		Amount: 15,
		Reason: "Kebersihan kelas",
	}))

	details, err := svc.UserDetails(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, details.Profile.Points)
	require.Len(t, details.History, 1)
	assert.Equal(t, "Kebersihan kelas", details.History[0].Reason)
	assert.Empty(t, details.Orders)
}
