package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Activity categories. Counter-attested categories enter the ledger pending
// and only count after a second party confirms them.
const (
	CategoryHelpCompleted    = "help_completed"
	CategoryEmergencyHelp    = "emergency_help"
	CategoryDonation         = "donation"
	CategoryVolunteer        = "volunteer"
	CategoryVolunteerWork    = "volunteer_work"
	CategoryConnection       = "connection"
	CategoryEngagement       = "engagement"
	CategoryAchievementBonus = "achievement_bonus"
)

// Points state of a ledger entry
const (
	PointsActive   = "active"
	PointsPending  = "pending"
	PointsReversed = "reversed"
)

// Confirmation status of a ledger entry
const (
	ConfirmationNone      = "none"
	ConfirmationPending   = "pending"
	ConfirmationConfirmed = "confirmed"
	ConfirmationRejected  = "rejected"
)

type ImpactActivity struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID        `gorm:"type:uuid;index:idx_activity_user_date,priority:1;not null" json:"user_id"`
	User             User             `gorm:"foreignKey:UserID" json:"-"`
	Category         string           `gorm:"size:50;not null;index" json:"category"`
	EngagementType   *string          `gorm:"size:50" json:"engagement_type,omitempty"`
	Points           int              `gorm:"not null" json:"points_earned"`
	Description      string           `gorm:"type:text" json:"description"`
	HoursContributed *float64         `json:"hours_contributed,omitempty"`
	Skill            *string          `gorm:"size:100" json:"skill,omitempty"`
	MarketValue      *decimal.Decimal `gorm:"type:numeric(12,2)" json:"market_value,omitempty"`
	Verified         bool             `gorm:"default:false" json:"verified"`
	PointsState      string           `gorm:"size:20;not null;index" json:"points_state"`
	ConfirmStatus    string           `gorm:"size:20;not null;default:none" json:"confirmation_status"`
	ScopeType        *string          `gorm:"size:20" json:"scope_type,omitempty"` // 'post' or 'organization'
	ScopeID          *uuid.UUID       `gorm:"type:uuid" json:"scope_id,omitempty"`
	IdempotencyKey   *string          `gorm:"size:100;index:idx_activity_idem,unique,priority:2" json:"-"`
	IdemUserID       *uuid.UUID       `gorm:"type:uuid;index:idx_activity_idem,unique,priority:1" json:"-"`
	CreatedAt        time.Time        `gorm:"index:idx_activity_user_date,priority:2;index:idx_activity_date" json:"created_at"`
}

// UniqueIndex: idx_activity_idem on (idem_user_id, idempotency_key).
// A retried insert with the same client key hits the index instead of
// double-awarding; NULL keys never collide.

func (a *ImpactActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserStats carries the running totals and per-category counters updated in
// the same transaction as each activating ledger insert. Achievements and the
// all-time leaderboard read these instead of re-scanning history.
type UserStats struct {
	UserID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User              User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	TotalScoreAllTime int       `gorm:"default:0" json:"total_score_all_time"`
	TotalScoreMonthly int       `gorm:"default:0" json:"total_score_monthly"`
	TotalScoreWeekly  int       `gorm:"default:0" json:"total_score_weekly"`
	HelpsCompleted    int       `gorm:"default:0" json:"helps_completed"`
	EmergencyHelps    int       `gorm:"default:0" json:"emergency_helps"`
	DonationsCount    int       `gorm:"default:0" json:"donations_count"`
	VolunteerHours    float64   `gorm:"default:0" json:"volunteer_hours"`
	ConnectionsCount  int       `gorm:"default:0" json:"connections_count"`
	ActivitiesCount   int       `gorm:"default:0" json:"activities_count"`
	PointsSpent       int       `gorm:"default:0" json:"points_spent"`
	LastUpdatedAt     time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}
