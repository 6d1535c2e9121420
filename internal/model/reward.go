package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reward struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string    `gorm:"size:100;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	Category           string    `gorm:"size:50;not null;index" json:"category"`
	PointsCost         int       `gorm:"not null" json:"points_cost"`
	Stock              *int      `json:"stock,omitempty"` // nil = unlimited
	RequiredTrustLevel *string   `gorm:"size:30" json:"required_trust_level,omitempty"`
	ImageURL           *string   `gorm:"type:text" json:"image_url,omitempty"`
	Available          bool      `gorm:"default:true;index" json:"available"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RedemptionTransaction is immutable once created. PointsSpent snapshots the
// reward cost at redemption time.
type RedemptionTransaction struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	RewardID       uuid.UUID  `gorm:"type:uuid;not null" json:"reward_id"`
	Reward         Reward     `gorm:"foreignKey:RewardID" json:"-"`
	PointsSpent    int        `gorm:"not null" json:"points_spent"`
	Status         string     `gorm:"size:20;not null;default:completed" json:"status"`
	IdempotencyKey *string    `gorm:"size:100;index:idx_redemption_idem,unique,priority:2" json:"-"`
	IdemUserID     *uuid.UUID `gorm:"type:uuid;index:idx_redemption_idem,unique,priority:1" json:"-"`
	RedeemedAt     time.Time  `gorm:"autoCreateTime" json:"redeemed_at"`
}

func (t *RedemptionTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
