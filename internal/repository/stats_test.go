package repository

import (
	"testing"

	"github.com/salingbantu/impact-engine/internal/model"
)

func TestDeltasForActivity(t *testing.T) {
	hours := 3.5

	tests := []struct {
		name     string
		activity model.ImpactActivity
		want     StatDeltas
	}{
		{
			name:     "help completed",
			activity: model.ImpactActivity{Category: model.CategoryHelpCompleted, Points: 50},
			want:     StatDeltas{Points: 50, HelpsCompleted: 1, ActivitiesCount: 1},
		},
		{
			name:     "emergency help",
			activity: model.ImpactActivity{Category: model.CategoryEmergencyHelp, Points: 75},
			want:     StatDeltas{Points: 75, EmergencyHelps: 1, ActivitiesCount: 1},
		},
		{
			name:     "donation",
			activity: model.ImpactActivity{Category: model.CategoryDonation, Points: 5},
			want:     StatDeltas{Points: 5, DonationsCount: 1, ActivitiesCount: 1},
		},
		{
			name:     "volunteer with hours",
			activity: model.ImpactActivity{Category: model.CategoryVolunteer, Points: 9, HoursContributed: &hours},
			want:     StatDeltas{Points: 9, VolunteerHours: 3.5, ActivitiesCount: 1},
		},
		{
			name:     "volunteer work with hours",
			activity: model.ImpactActivity{Category: model.CategoryVolunteerWork, Points: 28, HoursContributed: &hours},
			want:     StatDeltas{Points: 28, VolunteerHours: 3.5, ActivitiesCount: 1},
		},
		{
			name:     "volunteer without hours",
			activity: model.ImpactActivity{Category: model.CategoryVolunteer, Points: 0},
			want:     StatDeltas{ActivitiesCount: 1},
		},
		{
			name:     "connection",
			activity: model.ImpactActivity{Category: model.CategoryConnection, Points: 5},
			want:     StatDeltas{Points: 5, Connections: 1, ActivitiesCount: 1},
		},
		{
			name:     "engagement counts only score",
			activity: model.ImpactActivity{Category: model.CategoryEngagement, Points: 2},
			want:     StatDeltas{Points: 2, ActivitiesCount: 1},
		},
		{
			name:     "achievement bonus counts only score",
			activity: model.ImpactActivity{Category: model.CategoryAchievementBonus, Points: 100},
			want:     StatDeltas{Points: 100, ActivitiesCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeltasForActivity(&tt.activity); got != tt.want {
				t.Errorf("DeltasForActivity() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
