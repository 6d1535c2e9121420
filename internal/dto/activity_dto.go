package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RecordActivityRequest struct {
	Category       string  `json:"category" binding:"required,max=50"`
	Description    string  `json:"description" binding:"max=2000"`
	EngagementType string  `json:"engagement_type,omitempty" binding:"max=50"`
	IdempotencyKey string  `json:"idempotency_key,omitempty" binding:"max=100"`
	ScopeType      string  `json:"scope_type,omitempty" binding:"omitempty,oneof=post organization"`
	ScopeID        string  `json:"scope_id,omitempty" binding:"omitempty,uuid"`
	Skill          string  `json:"skill,omitempty" binding:"max=100"`
	Hours          float64 `json:"hours,omitempty" binding:"omitempty,gt=0"`

	// donation context
	Amount    decimal.Decimal `json:"amount,omitempty"`
	Recurring bool            `json:"recurring,omitempty"`
	Matching  bool            `json:"matching,omitempty"`

	// volunteer_work context
	MarketRate decimal.Decimal `json:"market_rate,omitempty"`
}

type ActivityResponse struct {
	ID                 uuid.UUID `json:"id"`
	Category           string    `json:"category"`
	PointsEarned       int       `json:"points_earned"`
	Description        string    `json:"description"`
	Verified           bool      `json:"verified"`
	PointsState        string    `json:"points_state"`
	ConfirmationStatus string    `json:"confirmation_status"`
	CreatedAt          time.Time `json:"created_at"`
}

// CategoryBreakdown is one row of the per-category aggregate.
type CategoryBreakdown struct {
	Category   string     `json:"category"`
	Points     int        `json:"points"`
	Count      int        `json:"count"`
	LastEarned *time.Time `json:"last_earned,omitempty"`
}

type PointsBreakdownResponse struct {
	TotalPoints     int                 `json:"total_points"`
	AvailablePoints int                 `json:"available_points"`
	Categories      []CategoryBreakdown `json:"categories"`
}
