package dto

import (
	"anoa.com/portalsekolah/internal/entity"
	contentDto "anoa.com/portalsekolah/internal/modules/content/dto"
	orderDto "anoa.com/portalsekolah/internal/modules/order/dto"
	commonDto "anoa.com/portalsekolah/pkg/dto"
)

type AdminDashboard struct {
	TotalProfiles int64                 `json:"total_profiles"`
	TotalProducts int64                 `json:"total_products"`
	RoleCounts    map[entity.Role]int64 `json:"role_counts"`
	OrdersPerDay  []orderDto.DailyCount `json:"orders_per_day"`
	PendingOrders int64                 `json:"pending_orders"`
}

type GuruDashboard struct {
	ClassID       *uint  `json:"class_id"`
	ClassName     string `json:"class_name,omitempty"`
	TotalStudents int64  `json:"total_students"`
}

type SiswaDashboard struct {
	Profile       entity.Profile               `json:"profile"`
	Rank          commonDto.GamificationStatus `json:"rank"`
	Announcements []contentDto.ContentResponse `json:"announcements"`
}
