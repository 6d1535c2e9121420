package service

import (
	"testing"

	"github.com/salingbantu/impact-engine/internal/model"
)

func TestAchievementProgress(t *testing.T) {
	stats := &model.UserStats{
		TotalScoreAllTime: 350,
		HelpsCompleted:    7,
		EmergencyHelps:    2,
		DonationsCount:    12,
		VolunteerHours:    18.5,
		ConnectionsCount:  4,
		ActivitiesCount:   40,
	}

	tests := []struct {
		name        string
		achievement model.Achievement
		want        int
	}{
		{
			name:        "helps in progress",
			achievement: model.Achievement{Metric: model.MetricHelpsCompleted, MaxProgress: 10},
			want:        7,
		},
		{
			name:        "clamped at max",
			achievement: model.Achievement{Metric: model.MetricDonationsCount, MaxProgress: 10},
			want:        10,
		},
		{
			name:        "volunteer hours truncate to int",
			achievement: model.Achievement{Metric: model.MetricVolunteerHours, MaxProgress: 100},
			want:        18,
		},
		{
			name:        "emergency helps",
			achievement: model.Achievement{Metric: model.MetricEmergencyHelps, MaxProgress: 5},
			want:        2,
		},
		{
			name:        "connections",
			achievement: model.Achievement{Metric: model.MetricConnections, MaxProgress: 25},
			want:        4,
		},
		{
			name:        "total score",
			achievement: model.Achievement{Metric: model.MetricTotalScore, MaxProgress: 10000},
			want:        350,
		},
		{
			name:        "unknown metric reports zero",
			achievement: model.Achievement{Metric: "stargazing", MaxProgress: 10},
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AchievementProgress(&tt.achievement, stats); got != tt.want {
				t.Errorf("AchievementProgress(%s) = %d, want %d", tt.achievement.Metric, got, tt.want)
			}
		})
	}
}

func TestAchievementProgressNilStats(t *testing.T) {
	a := &model.Achievement{Metric: model.MetricHelpsCompleted, MaxProgress: 10}
	if got := AchievementProgress(a, nil); got != 0 {
		t.Errorf("AchievementProgress(nil stats) = %d, want 0", got)
	}
}
