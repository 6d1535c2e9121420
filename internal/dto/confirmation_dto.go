package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitClaimRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=help_completion volunteer_work"`
	ScopeType string `json:"scope_type" binding:"required,oneof=post organization"`
	ScopeID   string `json:"scope_id" binding:"required,uuid"`
	Message   string `json:"message" binding:"required,max=2000"`

	// help_completion evidence
	EffortLevel int    `json:"effort_level,omitempty" binding:"omitempty,min=1,max=5"`
	TimeBucket  string `json:"time_bucket,omitempty" binding:"omitempty,oneof=under_30m 30m_2h 2h_half_day half_day_plus"`

	// volunteer_work evidence
	Skill      string  `json:"skill,omitempty" binding:"max=100"`
	Hours      float64 `json:"hours,omitempty" binding:"omitempty,gt=0"`
	MarketRate float64 `json:"market_rate,omitempty" binding:"omitempty,gt=0"`

	IdempotencyKey string `json:"idempotency_key,omitempty" binding:"max=100"`
}

type ReviewClaimRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Reason   string `json:"reason,omitempty" binding:"max=2000"`
	Rating   int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
}

type ConfirmationResponse struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	SubmitterID uuid.UUID  `json:"submitter_id"`
	ActivityID  uuid.UUID  `json:"activity_id"`
	ScopeType   string     `json:"scope_type"`
	ScopeID     uuid.UUID  `json:"scope_id"`
	Status      string     `json:"status"`
	Feedback    *string    `json:"feedback,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}
