package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claim kinds sharing one review state machine with different reviewer scopes
const (
	ClaimHelpCompletion = "help_completion"
	ClaimVolunteerWork  = "volunteer_work"
)

// Review states. Pending leaves exactly once; both outcomes are terminal.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Reviewer scope types
const (
	ScopePost         = "post"
	ScopeOrganization = "organization"
)

type ConfirmationRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        string     `gorm:"size:30;not null" json:"kind"`
	SubmitterID uuid.UUID  `gorm:"type:uuid;not null;index" json:"submitter_id"`
	Submitter   User       `gorm:"foreignKey:SubmitterID" json:"-"`
	ActivityID  uuid.UUID  `gorm:"type:uuid;not null" json:"activity_id"`
	ScopeType   string     `gorm:"size:20;not null" json:"scope_type"`
	ScopeID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"scope_id"`
	Message     string     `gorm:"type:text" json:"message"`
	EffortLevel *int       `json:"effort_level,omitempty"` // 1-5
	TimeBucket  *string    `gorm:"size:30" json:"time_bucket,omitempty"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Feedback    *string    `gorm:"type:text" json:"feedback,omitempty"`
	Rating      *int       `json:"rating,omitempty"` // reviewer's 1-5 rating, set on approval
	ReviewerID  *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

func (r *ConfirmationRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
