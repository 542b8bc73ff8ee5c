package dto

import "io"

type GamificationStatus struct {
	RankName      string  `json:"rank_name"`
	NextRank      string  `json:"next_rank"`
	CurrentPoints int     `json:"current_points"`
	TargetPoints  int     `json:"target_points"`
	Progress      float64 `json:"progress"` // Percentage
	WeeklyPoints  int     `json:"weekly_points"`
	WeeklyLabel   string  `json:"weekly_label"`
}

// UploadFile is a multipart file handed from a handler to a service.
type UploadFile struct {
	Reader   io.Reader
	FileName string
	Size     int64
}
