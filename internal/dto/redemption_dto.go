package dto

import (
	"time"

	"github.com/google/uuid"
)

type RedeemRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty" binding:"max=100"`
}

type RedemptionResult struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	Transaction *RedemptionTxnDetail `json:"transaction,omitempty"`
}

type RedemptionTxnDetail struct {
	ID          uuid.UUID `json:"id"`
	RewardID    uuid.UUID `json:"reward_id"`
	RewardTitle string    `json:"reward_title"`
	PointsSpent int       `json:"points_spent"`
	Status      string    `json:"status"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

type AchievementResponse struct {
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Rarity       string     `json:"rarity"`
	PointsReward int        `json:"points_reward"`
	Progress     int        `json:"progress"`
	MaxProgress  int        `json:"max_progress"`
	Unlocked     bool       `json:"unlocked"`
	UnlockedAt   *time.Time `json:"unlocked_at,omitempty"`
}

type RateLimitStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
