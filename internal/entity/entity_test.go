package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Guru ")
	require.NoError(t, err)
	assert.Equal(t, RoleGuru, r)

	_, err = ParseRole("kepala_sekolah")
	assert.Error(t, err)
}

func TestHomePath(t *testing.T) {
	cases := []struct {
		role   Role
		portal Portal
		path   string
		ok     bool
	}{
		{RoleAdmin, PortalPanel, "/admin/dashboard", true},
		{RoleGuru, PortalPanel, "/admin/kelas-saya", true},
		{RoleSiswa, PortalPanel, "", false},
		{RoleGuru, PortalUser, "/admin/dashboard", true},
		{RoleSiswa, PortalUser, "/siswa/dashboard", true},
		{RoleAdmin, PortalUser, "", false},
		{Role("tamu"), PortalUser, "", false},
	}

	for _, tc := range cases {
		path, ok := tc.role.HomePath(tc.portal)
		assert.Equal(t, tc.ok, ok, "%s/%s", tc.role, tc.portal)
		assert.Equal(t, tc.path, path, "%s/%s", tc.role, tc.portal)
	}
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageOrders())
	assert.True(t, RoleGuru.CanManageOrders())
	assert.False(t, RoleSiswa.CanManageOrders())

	assert.True(t, RoleSiswa.CanRedeem())
	assert.False(t, RoleGuru.CanRedeem())

	assert.False(t, RoleSiswa.CanCreditPoints())
	assert.True(t, RoleSiswa.HasClass())
	assert.False(t, RoleGuru.HasClass())
	assert.False(t, Role("").CanManageOrders())
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderPending.CanTransitionTo(OrderApproved))
	assert.True(t, OrderPending.CanTransitionTo(OrderRejected))
	assert.False(t, OrderPending.CanTransitionTo(OrderPending))

	for _, terminal := range []OrderStatus{OrderApproved, OrderRejected} {
		assert.True(t, terminal.Terminal())
		for _, next := range []OrderStatus{OrderPending, OrderApproved, OrderRejected} {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}

	assert.False(t, OrderStatus("cancelled").Valid())
}

func TestMaterialVisibleAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	m := Material{Status: MaterialVisible, ScheduledFor: now.Add(time.Hour)}
	assert.False(t, m.VisibleAt(now))
	assert.True(t, m.VisibleAt(now.Add(time.Hour)))

	m.Status = MaterialHidden
	assert.False(t, m.VisibleAt(now.Add(2*time.Hour)))
}
