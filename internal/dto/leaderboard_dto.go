package dto

// TrustStatus describes a user's derived trust tier and the distance to the
// next one. It is computed per request and never stored.
type TrustStatus struct {
	Level        string  `json:"level"`
	NextLevel    string  `json:"next_level"`
	CurrentScore int     `json:"current_score"`
	TargetScore  int     `json:"target_score"`
	Progress     float64 `json:"progress"` // 0-100 toward the next level
}

// LeaderboardEntry is one ranked row. Rank is dense and 1-based.
type LeaderboardEntry struct {
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	AvatarURL   *string     `json:"avatar_url,omitempty"`
	Score       int         `json:"score"`
	PeriodScore int         `json:"period_score"`
	Rank        int         `json:"rank"`
	TrustStatus TrustStatus `json:"trust_status"`
}

type LeaderboardResponse struct {
	Window        string             `json:"window"`
	Entries       []LeaderboardEntry `json:"entries"`
	RequesterRank int                `json:"requester_rank"`
}
