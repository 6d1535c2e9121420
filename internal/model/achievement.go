package model

import (
	"time"

	"github.com/google/uuid"
)

// Achievement metrics map onto UserStats counters
const (
	MetricHelpsCompleted  = "helps_completed"
	MetricEmergencyHelps  = "emergency_helps"
	MetricDonationsCount  = "donations_count"
	MetricVolunteerHours  = "volunteer_hours"
	MetricConnections     = "connections_count"
	MetricActivitiesCount = "activities_count"
	MetricTotalScore      = "total_score"
)

// Achievement is an immutable catalog row seeded at boot. SortOrder fixes the
// evaluation order so simultaneous unlocks get deterministic timestamps.
type Achievement struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Rarity       string    `gorm:"size:20;not null" json:"rarity"` // common, rare, epic, legendary
	Metric       string    `gorm:"size:50;not null" json:"metric"`
	MaxProgress  int       `gorm:"not null" json:"max_progress"`
	PointsReward int       `gorm:"default:0" json:"points_reward"`
	SortOrder    int       `gorm:"not null;index" json:"sort_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement records an unlock. The unique index makes the unlock (and
// everything keyed off its insert) happen at most once per user.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_user_achievement,unique,priority:1" json:"user_id"`
	AchievementID uint      `gorm:"not null;index:idx_user_achievement,unique,priority:2" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"-"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}
