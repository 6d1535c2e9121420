package repository

import (
	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatDeltas is the per-category counter change a single activating ledger
// entry contributes. All fields are additive, so concurrent applications
// commute regardless of insert order.
type StatDeltas struct {
	Points          int
	HelpsCompleted  int
	EmergencyHelps  int
	DonationsCount  int
	VolunteerHours  float64
	Connections     int
	ActivitiesCount int
}

// DeltasForActivity derives the counter changes for an activity that just
// became active.
func DeltasForActivity(a *model.ImpactActivity) StatDeltas {
	d := StatDeltas{Points: a.Points, ActivitiesCount: 1}
	switch a.Category {
	case model.CategoryHelpCompleted:
		d.HelpsCompleted = 1
	case model.CategoryEmergencyHelp:
		d.EmergencyHelps = 1
	case model.CategoryDonation:
		d.DonationsCount = 1
	case model.CategoryVolunteer, model.CategoryVolunteerWork:
		if a.HoursContributed != nil {
			d.VolunteerHours = *a.HoursContributed
		}
	case model.CategoryConnection:
		d.Connections = 1
	}
	return d
}

// applyStatDeltas upserts user_stats with additive expressions. Called inside
// the same transaction as the ledger write it accounts for.
func applyStatDeltas(tx *gorm.DB, userID uuid.UUID, d StatDeltas) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_score_all_time": gorm.Expr("user_stats.total_score_all_time + ?", d.Points),
			"total_score_monthly":  gorm.Expr("user_stats.total_score_monthly + ?", d.Points),
			"total_score_weekly":   gorm.Expr("user_stats.total_score_weekly + ?", d.Points),
			"helps_completed":      gorm.Expr("user_stats.helps_completed + ?", d.HelpsCompleted),
			"emergency_helps":      gorm.Expr("user_stats.emergency_helps + ?", d.EmergencyHelps),
			"donations_count":      gorm.Expr("user_stats.donations_count + ?", d.DonationsCount),
			"volunteer_hours":      gorm.Expr("user_stats.volunteer_hours + ?", d.VolunteerHours),
			"connections_count":    gorm.Expr("user_stats.connections_count + ?", d.Connections),
			"activities_count":     gorm.Expr("user_stats.activities_count + ?", d.ActivitiesCount),
			"last_updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&model.UserStats{
		UserID:            userID,
		TotalScoreAllTime: d.Points,
		TotalScoreMonthly: d.Points,
		TotalScoreWeekly:  d.Points,
		HelpsCompleted:    d.HelpsCompleted,
		EmergencyHelps:    d.EmergencyHelps,
		DonationsCount:    d.DonationsCount,
		VolunteerHours:    d.VolunteerHours,
		ConnectionsCount:  d.Connections,
		ActivitiesCount:   d.ActivitiesCount,
	}).Error
}
