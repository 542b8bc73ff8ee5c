package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"anoa.com/portalsekolah/internal/modules/content/dto"
	contentRepo "anoa.com/portalsekolah/internal/modules/content/repository"
	searchService "anoa.com/portalsekolah/internal/modules/search/service"
	"anoa.com/portalsekolah/internal/testutil"
	"anoa.com/portalsekolah/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPublishesAndSanitizes(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewContentService(contentRepo.NewContentRepository(db), searchService.NewMeiliSearchService(nil)).(*contentService)
	fixed := time.Date(2024, 8, 1, 7, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return fixed }

	admin := testutil.CreateProfile(t, db, entity.RoleAdmin, 0, nil)
	actor := &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}

	res, err := svc.Add(context.Background(), actor, dto.ContentRequest{
		Title: "  Libur Semester ",
		Body:  `<p>Libur mulai Senin</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	assert.Equal(t, "Libur Semester", res.Title)
	assert.Equal(t, "<p>Libur mulai Senin</p>", res.Body)
	assert.Equal(t, string(entity.ContentPublished), res.Status)
	require.NotNil(t, res.PublishedAt)
	assert.True(t, fixed.Equal(*res.PublishedAt))
}

func TestContentValidationAndAccess(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewContentService(contentRepo.NewContentRepository(db), searchService.NewMeiliSearchService(nil))
	ctx := context.Background()

	admin := testutil.CreateProfile(t, db, entity.RoleAdmin, 0, nil)
	guru := testutil.CreateProfile(t, db, entity.RoleGuru, 0, nil)

	_, err := svc.Add(ctx, &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}, dto.ContentRequest{Title: " "})
	require.Error(t, err)
	assert.Equal(t, MsgTitleRequired, err.Error())

	_, err = svc.Add(ctx, &entity.Actor{ID: guru.ID, Role: entity.RoleGuru}, dto.ContentRequest{Title: "Rapat"})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))

	_, err = svc.Add(ctx, nil, dto.ContentRequest{Title: "Rapat"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Edit(ctx, &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}, 99, dto.ContentRequest{Title: "Rapat"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestEditDeleteAndRecent(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewContentService(contentRepo.NewContentRepository(db), searchService.NewMeiliSearchService(nil)).(*contentService)
	ctx := context.Background()

	admin := testutil.CreateProfile(t, db, entity.RoleAdmin, 0, nil)
	actor := &entity.Actor{ID: admin.ID, Role: entity.RoleAdmin}

	base := time.Date(2024, 8, 1, 7, 0, 0, 0, time.Local)
	var ids []uint
	for i := 0; i < 7; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		res, err := svc.Add(ctx, actor, dto.ContentRequest{Title: "Info", Body: "isi"})
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}

	edited, err := svc.Edit(ctx, actor, ids[0], dto.ContentRequest{Title: "Info baru", Body: "isi baru"})
	require.NoError(t, err)
	assert.Equal(t, "Info baru", edited.Title)
	assert.Equal(t, admin.FullName, edited.AuthorName)

	require.NoError(t, svc.Delete(ctx, actor, ids[6]))
	err = svc.Delete(ctx, actor, ids[6])
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	recent, err := svc.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, ids[5], recent[0].ID)
	assert.Equal(t, ids[1], recent[4].ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}
