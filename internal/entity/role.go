package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role is the closed set of account kinds. Every access decision switches over it exhaustively.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleGuru  Role = "guru"
	RoleSiswa Role = "siswa"
)

// Portal is the login surface a user signs in through.
type Portal string

const (
	// PortalPanel is the management panel used by admin and guru.
	PortalPanel Portal = "panel"
	// PortalUser is the regular portal used by guru and siswa.
	PortalUser Portal = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleGuru:
		return RoleGuru, nil
	case RoleSiswa:
		return RoleSiswa, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// HomePath is where a freshly authenticated user lands for the given portal.
// ok is false when the role may not use that portal.
func (r Role) HomePath(p Portal) (path string, ok bool) {
	switch p {
	case PortalPanel:
		switch r {
		case RoleAdmin:
			return "/admin/dashboard", true
		case RoleGuru:
			return "/admin/kelas-saya", true
		case RoleSiswa:
			return "", false
		}
	case PortalUser:
		switch r {
		case RoleGuru:
			return "/admin/dashboard", true
		case RoleSiswa:
			return "/siswa/dashboard", true
		case RoleAdmin:
			return "", false
		}
	}
	return "", false
}

// CanManageOrders reports whether the role may approve or reject redemption orders.
func (r Role) CanManageOrders() bool {
	switch r {
	case RoleAdmin, RoleGuru:
		return true
	case RoleSiswa:
		return false
	}
	return false
}

// CanRedeem reports whether the role may place redemption orders.
func (r Role) CanRedeem() bool {
	switch r {
	case RoleSiswa:
		return true
	case RoleAdmin, RoleGuru:
		return false
	}
	return false
}

// CanCreditPoints reports whether the role may hand out points at all.
// Guru are further limited to students of their own class.
func (r Role) CanCreditPoints() bool {
	switch r {
	case RoleAdmin, RoleGuru:
		return true
	case RoleSiswa:
		return false
	}
	return false
}

// CanManageMaterials reports whether the role may publish learning materials.
func (r Role) CanManageMaterials() bool {
	switch r {
	case RoleAdmin, RoleGuru:
		return true
	case RoleSiswa:
		return false
	}
	return false
}

// HasClass reports whether a profile of this role belongs to a class as a member.
func (r Role) HasClass() bool {
	switch r {
	case RoleSiswa:
		return true
	case RoleAdmin, RoleGuru:
		return false
	}
	return false
}

// Actor is the resolved identity of the caller, passed explicitly into services.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
