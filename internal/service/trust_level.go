package service

import (
	"math"

	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/model"
)

// TrustLevel is an ordered tier derived from a 0-100 trust score. It is
// computed per request and never persisted.
type TrustLevel string

const (
	TrustNewUser         TrustLevel = "new_user"
	TrustVerifiedHelper  TrustLevel = "verified_helper"
	TrustTrustedHelper   TrustLevel = "trusted_helper"
	TrustCommunityLeader TrustLevel = "community_leader"
	TrustImpactChampion  TrustLevel = "impact_champion"
)

// Score thresholds. Monotonic: a higher score never maps to a lower tier.
const (
	ScoreImpactChampion  = 90
	ScoreCommunityLeader = 75
	ScoreTrustedHelper   = 60
	ScoreVerifiedHelper  = 40
)

var trustRank = map[TrustLevel]int{
	TrustNewUser:         0,
	TrustVerifiedHelper:  1,
	TrustTrustedHelper:   2,
	TrustCommunityLeader: 3,
	TrustImpactChampion:  4,
}

// ResolveTrustLevel maps a trust score to its tier.
func ResolveTrustLevel(score int) TrustLevel {
	switch {
	case score >= ScoreImpactChampion:
		return TrustImpactChampion
	case score >= ScoreCommunityLeader:
		return TrustCommunityLeader
	case score >= ScoreTrustedHelper:
		return TrustTrustedHelper
	case score >= ScoreVerifiedHelper:
		return TrustVerifiedHelper
	default:
		return TrustNewUser
	}
}

// AtLeast reports whether t meets the given tier requirement.
func (t TrustLevel) AtLeast(required TrustLevel) bool {
	return trustRank[t] >= trustRank[required]
}

// IsValidTrustLevel reports whether s names a known tier.
func IsValidTrustLevel(s string) bool {
	_, ok := trustRank[TrustLevel(s)]
	return ok
}

// TrustStatusFor expands a score into the tier plus the distance to the next
// one for display.
func TrustStatusFor(score int) dto.TrustStatus {
	status := dto.TrustStatus{CurrentScore: score}

	switch {
	case score >= ScoreImpactChampion:
		status.Level = string(TrustImpactChampion)
		status.NextLevel = "max"
		status.TargetScore = ScoreImpactChampion
		status.Progress = 100

	case score >= ScoreCommunityLeader:
		status.Level = string(TrustCommunityLeader)
		status.NextLevel = string(TrustImpactChampion)
		status.TargetScore = ScoreImpactChampion
		status.Progress = (float64(score) / float64(ScoreImpactChampion)) * 100

	case score >= ScoreTrustedHelper:
		status.Level = string(TrustTrustedHelper)
		status.NextLevel = string(TrustCommunityLeader)
		status.TargetScore = ScoreCommunityLeader
		status.Progress = (float64(score) / float64(ScoreCommunityLeader)) * 100

	case score >= ScoreVerifiedHelper:
		status.Level = string(TrustVerifiedHelper)
		status.NextLevel = string(TrustTrustedHelper)
		status.TargetScore = ScoreTrustedHelper
		status.Progress = (float64(score) / float64(ScoreTrustedHelper)) * 100

	default:
		status.Level = string(TrustNewUser)
		status.NextLevel = string(TrustVerifiedHelper)
		status.TargetScore = ScoreVerifiedHelper
		status.Progress = (float64(score) / float64(ScoreVerifiedHelper)) * 100
	}

	status.Progress = math.Round(status.Progress*100) / 100
	return status
}

// Trust score component caps. Each factor contributes up to its cap so a
// single behavior cannot carry a user to the top tier alone.
const (
	trustCapHelps       = 40.0
	trustCapVolunteer   = 20.0
	trustCapDonations   = 15.0
	trustCapConnections = 10.0
	trustCapActivities  = 15.0
)

// TrustScore derives a 0-100 trust score from verified activity counters.
func TrustScore(stats *model.UserStats) int {
	if stats == nil {
		return 0
	}

	score := capped(float64(stats.HelpsCompleted+stats.EmergencyHelps)*4, trustCapHelps) +
		capped(stats.VolunteerHours*0.5, trustCapVolunteer) +
		capped(float64(stats.DonationsCount)*2, trustCapDonations) +
		capped(float64(stats.ConnectionsCount), trustCapConnections) +
		capped(float64(stats.ActivitiesCount)*0.5, trustCapActivities)

	return int(math.Floor(score))
}

func capped(value, limit float64) float64 {
	if value > limit {
		return limit
	}
	return value
}
