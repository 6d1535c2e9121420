package service

import (
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/shopspring/decimal"
)

// Base point values per activity category
const (
	PointsHelpCompleted = 50
	PointsEmergencyHelp = 75
	PointsConnection    = 5
	PointsUnknown       = 1

	VolunteerPointsPerHour = 3
)

// Donation conversion: one point per ten currency units donated, with
// multiplicative bonuses applied to the amount before conversion.
var (
	donationRate        = decimal.NewFromFloat(0.1)
	recurringMultiplier = decimal.NewFromFloat(1.2)
	matchingMultiplier  = decimal.NewFromInt(2)
)

// Engagement sub-type point values
var engagementPoints = map[string]int{
	"post_created":      2,
	"comment_received":  5,
	"like_received":     1,
	"share":             2,
	"profile_completed": 10,
}

// PointsContext carries the category-specific inputs to the calculator.
type PointsContext struct {
	Amount         decimal.Decimal
	Recurring      bool
	Matching       bool
	Hours          float64
	MarketRate     decimal.Decimal
	ConversionRate float64
	EngagementType string
}

// CalculatePoints converts an activity into its point value. Pure and
// deterministic; never returns a negative amount. The second return reports
// whether the category was recognized. An unknown category falls back to a
// minimal award instead of blocking the action, and the caller logs it.
func CalculatePoints(category string, ctx PointsContext) (int, bool) {
	switch category {
	case model.CategoryHelpCompleted:
		return PointsHelpCompleted, true

	case model.CategoryEmergencyHelp:
		return PointsEmergencyHelp, true

	case model.CategoryDonation:
		amount := ctx.Amount
		if ctx.Recurring {
			amount = amount.Mul(recurringMultiplier)
		}
		if ctx.Matching {
			amount = amount.Mul(matchingMultiplier)
		}
		points := amount.Mul(donationRate).Floor().IntPart()
		return clampNonNegative(int(points)), true

	case model.CategoryVolunteer:
		return clampNonNegative(int(ctx.Hours) * VolunteerPointsPerHour), true

	case model.CategoryVolunteerWork:
		points := ctx.MarketRate.
			Mul(decimal.NewFromFloat(ctx.Hours)).
			Mul(decimal.NewFromFloat(ctx.ConversionRate)).
			Round(0).IntPart()
		return clampNonNegative(int(points)), true

	case model.CategoryConnection:
		return PointsConnection, true

	case model.CategoryEngagement:
		if points, ok := engagementPoints[ctx.EngagementType]; ok {
			return points, true
		}
		return PointsUnknown, false

	default:
		return PointsUnknown, false
	}
}

func clampNonNegative(points int) int {
	if points < 0 {
		return 0
	}
	return points
}
