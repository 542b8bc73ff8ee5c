package service

import (
	"math"

	"anoa.com/portalsekolah/pkg/dto"
)

// rank is one step of the permanent ladder. A student holds the highest rank whose
// threshold is covered by the points they have ever earned; spending points never demotes.
type rank struct {
	Name      string
	Threshold int
}

var rankLadder = []rank{
	{"Pemula", 0},
	{"Rajin", 50},
	{"Berprestasi", 150},
	{"Teladan", 400},
	{"Bintang Kelas", 1000},
	{"Juara", 2500},
}

// Weekly activity thresholds, applied to points earned in the last 7 days.
const (
	WeeklyOnFire   = 100
	WeeklyTrending = 50
	WeeklyActive   = 20
)

// GetGamificationStatus returns the rank for all-time earned points only.
func GetGamificationStatus(earnedPoints int) dto.GamificationStatus {
	return GetGamificationStatusWithWeekly(earnedPoints, 0)
}

func GetGamificationStatusWithWeekly(earnedPoints, weeklyPoints int) dto.GamificationStatus {
	if earnedPoints < 0 {
		earnedPoints = 0
	}

	status := dto.GamificationStatus{
		CurrentPoints: earnedPoints,
		WeeklyPoints:  weeklyPoints,
		WeeklyLabel:   weeklyLabel(weeklyPoints),
	}

	idx := 0
	for i, r := range rankLadder {
		if earnedPoints >= r.Threshold {
			idx = i
		}
	}
	status.RankName = rankLadder[idx].Name

	if idx == len(rankLadder)-1 {
		status.NextRank = "Max Level"
		status.TargetPoints = rankLadder[idx].Threshold
		status.Progress = 100
		return status
	}

	next := rankLadder[idx+1]
	status.NextRank = next.Name
	status.TargetPoints = next.Threshold
	status.Progress = math.Round(float64(earnedPoints)/float64(next.Threshold)*100*100) / 100

	return status
}

func weeklyLabel(points int) string {
	switch {
	case points >= WeeklyOnFire:
		return "🔥 On Fire!"
	case points >= WeeklyTrending:
		return "⚡ Trending"
	case points >= WeeklyActive:
		return "📈 Active"
	default:
		return ""
	}
}
