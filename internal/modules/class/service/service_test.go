package service

import (
	"context"
	"net/http"
	"testing"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/class/dto"
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

func newTestService(t *testing.T) (ClassService, *gorm.DB) {
	t.Helper()

	db := testutil.NewDB(t)
	svc := NewClassService(
		classRepo.NewClassRepository(db),
		userRepo.NewUserRepository(db),
		pointRepo.NewPointRepository(db),
		orderRepo.NewOrderRepository(db),
	)
	return svc, db
}

func TestCreateAndListClasses(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	guru := testutil.CreateProfile(t, db, entity.RoleGuru, 0, nil)
	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, nil)

	_, err := svc.Create(ctx, dto.ClassRequest{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, MsgClassNameRequired, err.Error())

	_, err = svc.Create(ctx, dto.ClassRequest{Name: "X IPA", TeacherID: &student.ID})
	require.Error(t, err)
	assert.Equal(t, MsgTeacherInvalid, err.Error())

	created, err := svc.Create(ctx, dto.ClassRequest{Name: "X IPA", TeacherID: &guru.ID})
	require.NoError(t, err)
	assert.Equal(t, guru.FullName, created.TeacherName)

	_, err = svc.Create(ctx, dto.ClassRequest{Name: "IX A"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "IX A", list[0].Name)
	assert.Equal(t, "X IPA", list[1].Name)
}

func TestDeleteClassDetachesStudents(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	class := testutil.CreateClass(t, db, "7A", nil)
	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, &class.ID)

	require.NoError(t, svc.Delete(ctx, class.ID))
	assert.Nil(t, testutil.ReloadProfile(t, db, student.ID).ClassID)

	err := svc.Delete(ctx, class.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestMyClassAndStudentSummary(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	guru := testutil.CreateProfile(t, db, entity.RoleGuru, 0, nil)
	other := testutil.CreateProfile(t, db, entity.RoleGuru, 0, nil)
	class := testutil.CreateClass(t, db, "8A", &guru.ID)

	student := testutil.CreateProfile(t, db, entity.RoleSiswa, 0, &class.ID)
	testutil.CreateProfile(t, db, entity.RoleSiswa, 0, &class.ID)

	actor := &entity.Actor{ID: guru.ID, Role: entity.RoleGuru}

	mine, err := svc.MyClass(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "8A", mine.Class.Name)
	assert.Len(t, mine.Students, 2)

	_, err = svc.MyClass(ctx, &entity.Actor{ID: other.ID, Role: entity.RoleGuru})
	require.Error(t, err)
	assert.Equal(t, MsgNoClass, err.Error())

	points := pointRepo.NewPointRepository(db)
	require.NoError(t, points.Credit(ctx, &entity.PointHistory{UserID: student.ID, Amount: 10, Reason: "Piket"}))
	require.NoError(t, points.Credit(ctx, &entity.PointHistory{UserID: student.ID, Amount: 5, Reason: "Piket"}))
	require.NoError(t, points.Credit(ctx, &entity.PointHistory{UserID: student.ID, Amount: 5, Reason: "Aktif bertanya"}))

	summary, err := svc.StudentSummary(ctx, actor, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aktif bertanya", "Piket"}, summary.PointReasons)
	assert.Empty(t, summary.RedeemedProducts)

	_, err = svc.StudentSummary(ctx, &entity.Actor{ID: other.ID, Role: entity.RoleGuru}, student.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))
}
