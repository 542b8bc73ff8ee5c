package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGamificationStatus(t *testing.T) {
	tests := []struct {
		earned   int
		rank     string
		next     string
		target   int
		progress float64
	}{
		{0, "Pemula", "Rajin", 50, 0},
		{-5, "Pemula", "Rajin", 50, 0},
		{25, "Pemula", "Rajin", 50, 50},
		{50, "Rajin", "Berprestasi", 150, 33.33},
		{399, "Berprestasi", "Teladan", 400, 99.75},
		{1000, "Bintang Kelas", "Juara", 2500, 40},
		{2500, "Juara", "Max Level", 2500, 100},
		{9000, "Juara", "Max Level", 2500, 100},
	}

	for _, tt := range tests {
		got := GetGamificationStatus(tt.earned)
		assert.Equal(t, tt.rank, got.RankName, "earned=%d", tt.earned)
		assert.Equal(t, tt.next, got.NextRank, "earned=%d", tt.earned)
		assert.Equal(t, tt.target, got.TargetPoints, "earned=%d", tt.earned)
		assert.InDelta(t, tt.progress, got.Progress, 0.001, "earned=%d", tt.earned)
	}
}

func TestWeeklyLabel(t *testing.T) {
	assert.Equal(t, "", GetGamificationStatusWithWeekly(0, 19).WeeklyLabel)
	assert.Equal(t, "📈 Active", GetGamificationStatusWithWeekly(0, 20).WeeklyLabel)
	assert.Equal(t, "⚡ Trending", GetGamificationStatusWithWeekly(0, 50).WeeklyLabel)
	assert.Equal(t, "🔥 On Fire!", GetGamificationStatusWithWeekly(0, 100).WeeklyLabel)
}
