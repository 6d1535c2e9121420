package service

import (
	"testing"

	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/shopspring/decimal"
)

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		ctx       PointsContext
		want      int
		wantKnown bool
	}{
		{
			name:      "help completed",
			category:  model.CategoryHelpCompleted,
			want:      50,
			wantKnown: true,
		},
		{
			name:      "emergency help",
			category:  model.CategoryEmergencyHelp,
			want:      75,
			wantKnown: true,
		},
		{
			name:      "connection",
			category:  model.CategoryConnection,
			want:      5,
			wantKnown: true,
		},
		{
			name:      "donation base rate",
			category:  model.CategoryDonation,
			ctx:       PointsContext{Amount: decimal.NewFromInt(50)},
			want:      5,
			wantKnown: true,
		},
		{
			name:      "donation recurring bonus",
			category:  model.CategoryDonation,
			ctx:       PointsContext{Amount: decimal.NewFromInt(50), Recurring: true},
			want:      6,
			wantKnown: true,
		},
		{
			name:      "donation matching bonus",
			category:  model.CategoryDonation,
			ctx:       PointsContext{Amount: decimal.NewFromInt(50), Matching: true},
			want:      10,
			wantKnown: true,
		},
		{
			name:      "donation stacked bonuses",
			category:  model.CategoryDonation,
			ctx:       PointsContext{Amount: decimal.NewFromInt(50), Recurring: true, Matching: true},
			want:      12,
			wantKnown: true,
		},
		{
			name:      "donation fraction floors",
			category:  model.CategoryDonation,
			ctx:       PointsContext{Amount: decimal.NewFromInt(19)},
			want:      1,
			wantKnown: true,
		},
		{
			name:      "donation below one point",
			category:  model.CategoryDonation,
			ctx:       PointsContext{Amount: decimal.NewFromInt(5)},
			want:      0,
			wantKnown: true,
		},
		{
			name:      "volunteer hours",
			category:  model.CategoryVolunteer,
			ctx:       PointsContext{Hours: 4},
			want:      12,
			wantKnown: true,
		},
		{
			name:      "volunteer partial hour truncates",
			category:  model.CategoryVolunteer,
			ctx:       PointsContext{Hours: 2.9},
			want:      6,
			wantKnown: true,
		},
		{
			name:     "volunteer work market conversion",
			category: model.CategoryVolunteerWork,
			ctx: PointsContext{
				Hours:          10,
				MarketRate:     decimal.NewFromInt(80),
				ConversionRate: 0.1,
			},
			want:      80,
			wantKnown: true,
		},
		{
			name:      "engagement post created",
			category:  model.CategoryEngagement,
			ctx:       PointsContext{EngagementType: "post_created"},
			want:      2,
			wantKnown: true,
		},
		{
			name:      "engagement profile completed",
			category:  model.CategoryEngagement,
			ctx:       PointsContext{EngagementType: "profile_completed"},
			want:      10,
			wantKnown: true,
		},
		{
			name:      "engagement unknown subtype falls back",
			category:  model.CategoryEngagement,
			ctx:       PointsContext{EngagementType: "mystery"},
			want:      1,
			wantKnown: false,
		},
		{
			name:      "unknown category falls back",
			category:  "teleportation",
			want:      1,
			wantKnown: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := CalculatePoints(tt.category, tt.ctx)
			if got != tt.want {
				t.Errorf("CalculatePoints(%s) = %d, want %d", tt.category, got, tt.want)
			}
			if known != tt.wantKnown {
				t.Errorf("CalculatePoints(%s) known = %v, want %v", tt.category, known, tt.wantKnown)
			}
		})
	}
}

func TestCalculatePointsDeterministic(t *testing.T) {
	ctx := PointsContext{Amount: decimal.NewFromFloat(123.45), Recurring: true}
	first, _ := CalculatePoints(model.CategoryDonation, ctx)
	for i := 0; i < 100; i++ {
		got, _ := CalculatePoints(model.CategoryDonation, ctx)
		if got != first {
			t.Fatalf("run %d returned %d, first run returned %d", i, got, first)
		}
	}
}

func TestCalculatePointsNeverNegative(t *testing.T) {
	contexts := []PointsContext{
		{Amount: decimal.NewFromInt(-100)},
		{Hours: -5},
		{Hours: -1, MarketRate: decimal.NewFromInt(50), ConversionRate: 0.1},
	}
	categories := []string{
		model.CategoryDonation,
		model.CategoryVolunteer,
		model.CategoryVolunteerWork,
	}

	for i, category := range categories {
		got, _ := CalculatePoints(category, contexts[i])
		if got < 0 {
			t.Errorf("CalculatePoints(%s) = %d, want non-negative", category, got)
		}
	}
}
