package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/portalsekolah/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialFilter(t *testing.T) {
	now := time.Unix(1725240000, 0)
	classID := uint(7)

	assert.Empty(t, MaterialFilter(entity.RoleAdmin, nil, now))
	assert.Empty(t, MaterialFilter(entity.RoleGuru, &classID, now))
	assert.Equal(t, "status = 'visible' AND class_id = 7 AND scheduled_for <= 1725240000",
		MaterialFilter(entity.RoleSiswa, &classID, now))
	assert.Equal(t, "class_id = 0", MaterialFilter(entity.RoleSiswa, nil, now))
	assert.Equal(t, "class_id = 0", MaterialFilter(entity.Role("tamu"), &classID, now))
}

func TestCleanTextStripsMarkup(t *testing.T) {
	s := NewMeiliSearchService(nil).(*meiliSearchService)
	got := s.cleanText("<p>Ujian &amp; remedial</p><br><div><b>Senin</b></div>")
	assert.Equal(t, "Ujian & remedial Senin", got)
}

func TestDisabledSearchIsNoop(t *testing.T) {
	s := NewMeiliSearchService(nil)

	require.NoError(t, s.IndexAnnouncement(&entity.Content{ID: 1, Title: "x"}))
	require.NoError(t, s.IndexMaterial(&entity.Material{ID: 1, Title: "x"}))
	require.NoError(t, s.DeleteAnnouncement(1))
	require.NoError(t, s.DeleteMaterial(1))

	res, err := s.Search(context.Background(), &entity.Actor{ID: uuid.New(), Role: entity.RoleSiswa}, nil, "ujian")
	require.NoError(t, err)
	assert.Equal(t, "ujian", res.Query)
	assert.Empty(t, res.Announcements)
	assert.Empty(t, res.Materials)
}
