package dto

import (
	commonDto "anoa.com/portalsekolah/pkg/dto"
	"github.com/google/uuid"
)

// CreditPointsRequest is validated by the service so the messages stay in one place.
type CreditPointsRequest struct {
	UserID uuid.UUID `json:"user_id" form:"user_id"`
	Amount int       `json:"amount" form:"amount"`
	Reason string    `json:"reason" form:"reason"`
}

// LeaderboardEntry is one student in the leaderboard, Position is 1-based.
type LeaderboardEntry struct {
	UserID             uuid.UUID                    `json:"user_id"`
	FullName           string                       `json:"full_name"`
	AvatarURL          *string                      `json:"avatar_url,omitempty"`
	ClassID            *uint                        `json:"class_id,omitempty"`
	Points             int                          `json:"points"`
	PeriodPoints       int                          `json:"period_points"`
	Position           int                          `json:"position"`
	GamificationStatus commonDto.GamificationStatus `json:"gamification_status"`
}
