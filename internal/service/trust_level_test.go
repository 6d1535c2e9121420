package service

import (
	"testing"

	"github.com/salingbantu/impact-engine/internal/model"
)

func TestResolveTrustLevel(t *testing.T) {
	tests := []struct {
		score int
		want  TrustLevel
	}{
		{0, TrustNewUser},
		{39, TrustNewUser},
		{40, TrustVerifiedHelper},
		{59, TrustVerifiedHelper},
		{60, TrustTrustedHelper},
		{74, TrustTrustedHelper},
		{75, TrustCommunityLeader},
		{89, TrustCommunityLeader},
		{90, TrustImpactChampion},
		{100, TrustImpactChampion},
	}

	for _, tt := range tests {
		if got := ResolveTrustLevel(tt.score); got != tt.want {
			t.Errorf("ResolveTrustLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestResolveTrustLevelMonotonic(t *testing.T) {
	prev := ResolveTrustLevel(0)
	for score := 1; score <= 100; score++ {
		current := ResolveTrustLevel(score)
		if trustRank[current] < trustRank[prev] {
			t.Fatalf("level dropped from %s to %s at score %d", prev, current, score)
		}
		prev = current
	}
}

func TestTrustLevelAtLeast(t *testing.T) {
	if !TrustImpactChampion.AtLeast(TrustNewUser) {
		t.Error("impact_champion should satisfy new_user requirement")
	}
	if !TrustTrustedHelper.AtLeast(TrustTrustedHelper) {
		t.Error("a level should satisfy itself")
	}
	if TrustVerifiedHelper.AtLeast(TrustCommunityLeader) {
		t.Error("verified_helper should not satisfy community_leader requirement")
	}
}

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name  string
		stats *model.UserStats
		want  int
	}{
		{
			name:  "nil stats",
			stats: nil,
			want:  0,
		},
		{
			name:  "zero stats",
			stats: &model.UserStats{},
			want:  0,
		},
		{
			name: "helps below cap",
			stats: &model.UserStats{
				HelpsCompleted:  5,
				ActivitiesCount: 5,
			},
			want: 22, // 5*4 + 5*0.5
		},
		{
			name: "every component capped",
			stats: &model.UserStats{
				HelpsCompleted:   100,
				EmergencyHelps:   100,
				VolunteerHours:   1000,
				DonationsCount:   100,
				ConnectionsCount: 100,
				ActivitiesCount:  1000,
			},
			want: 100,
		},
		{
			name: "single behavior cannot dominate",
			stats: &model.UserStats{
				DonationsCount: 10000,
			},
			want: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrustScore(tt.stats); got != tt.want {
				t.Errorf("TrustScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrustScoreRange(t *testing.T) {
	stats := &model.UserStats{
		HelpsCompleted:   1 << 20,
		EmergencyHelps:   1 << 20,
		VolunteerHours:   1e9,
		DonationsCount:   1 << 20,
		ConnectionsCount: 1 << 20,
		ActivitiesCount:  1 << 20,
	}
	if got := TrustScore(stats); got < 0 || got > 100 {
		t.Errorf("TrustScore() = %d, want within [0, 100]", got)
	}
}

func TestTrustStatusFor(t *testing.T) {
	status := TrustStatusFor(45)
	if status.Level != string(TrustVerifiedHelper) {
		t.Errorf("Level = %s, want %s", status.Level, TrustVerifiedHelper)
	}
	if status.NextLevel != string(TrustTrustedHelper) {
		t.Errorf("NextLevel = %s, want %s", status.NextLevel, TrustTrustedHelper)
	}
	if status.TargetScore != ScoreTrustedHelper {
		t.Errorf("TargetScore = %d, want %d", status.TargetScore, ScoreTrustedHelper)
	}
	if status.Progress != 75.0 {
		t.Errorf("Progress = %v, want 75.0", status.Progress)
	}

	top := TrustStatusFor(95)
	if top.Level != string(TrustImpactChampion) {
		t.Errorf("Level = %s, want %s", top.Level, TrustImpactChampion)
	}
	if top.NextLevel != "max" {
		t.Errorf("NextLevel = %s, want max", top.NextLevel)
	}
	if top.Progress != 100 {
		t.Errorf("Progress = %v, want 100", top.Progress)
	}
}

func TestIsValidTrustLevel(t *testing.T) {
	for _, level := range []string{"new_user", "verified_helper", "trusted_helper", "community_leader", "impact_champion"} {
		if !IsValidTrustLevel(level) {
			t.Errorf("IsValidTrustLevel(%s) = false, want true", level)
		}
	}
	if IsValidTrustLevel("super_admin") {
		t.Error("IsValidTrustLevel(super_admin) = true, want false")
	}
}
