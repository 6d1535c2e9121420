package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/internal/repository"
	"github.com/salingbantu/impact-engine/pkg/apperror"
	"github.com/shopspring/decimal"
)

type stubActivityRepo struct {
	created []*model.ImpactActivity
}

func (r *stubActivityRepo) Create(ctx context.Context, activity *model.ImpactActivity) (bool, error) {
	r.created = append(r.created, activity)
	return true, nil
}

func (r *stubActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ImpactActivity, error) {
	return nil, apperror.ErrNotFound
}

func (r *stubActivityRepo) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*model.ImpactActivity, error) {
	return nil, apperror.ErrNotFound
}

func (r *stubActivityRepo) Aggregate(ctx context.Context, userID uuid.UUID) ([]repository.CategoryAggregate, error) {
	return nil, nil
}

func (r *stubActivityRepo) WeeklySkillHours(ctx context.Context, userID uuid.UUID, skill string, since time.Time) (float64, error) {
	return 0, nil
}

func (r *stubActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ImpactActivity, error) {
	return nil, nil
}

func newTestActivityService(repo *stubActivityRepo) *activityService {
	return &activityService{
		repo:                repo,
		rateLimiter:         newMemoryRateLimiter(1000, time.Minute),
		skillConversionRate: 0.1,
		weeklyHoursCap:      40,
	}
}

func TestRequiresConfirmation(t *testing.T) {
	attested := []string{
		model.CategoryHelpCompleted,
		model.CategoryEmergencyHelp,
		model.CategoryVolunteerWork,
	}
	for _, category := range attested {
		if !requiresConfirmation(category) {
			t.Errorf("requiresConfirmation(%s) = false, want true", category)
		}
	}

	selfReported := []string{
		model.CategoryDonation,
		model.CategoryVolunteer,
		model.CategoryConnection,
		model.CategoryEngagement,
		model.CategoryAchievementBonus,
	}
	for _, category := range selfReported {
		if requiresConfirmation(category) {
			t.Errorf("requiresConfirmation(%s) = true, want false", category)
		}
	}
}

func TestRecordActivityRejectsCounterAttestedCategories(t *testing.T) {
	repo := &stubActivityRepo{}
	s := newTestActivityService(repo)
	userID := uuid.New()

	tests := []struct {
		name string
		req  dto.RecordActivityRequest
	}{
		{
			name: "help completed",
			req:  dto.RecordActivityRequest{Category: model.CategoryHelpCompleted},
		},
		{
			name: "emergency help",
			req:  dto.RecordActivityRequest{Category: model.CategoryEmergencyHelp},
		},
		{
			name: "volunteer work",
			req: dto.RecordActivityRequest{
				Category:   model.CategoryVolunteerWork,
				Skill:      "plumbing",
				Hours:      4,
				MarketRate: decimal.NewFromInt(80),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RecordActivity(context.Background(), userID, tt.req)
			if !errors.Is(err, apperror.ErrInvalidInput) {
				t.Fatalf("RecordActivity(%s) error = %v, want ErrInvalidInput", tt.req.Category, err)
			}
		})
	}

	if len(repo.created) != 0 {
		t.Errorf("counter-attested categories wrote %d ledger entries, want 0", len(repo.created))
	}
}

func TestRecordActivityRejectsZeroPointAmounts(t *testing.T) {
	repo := &stubActivityRepo{}
	s := newTestActivityService(repo)
	userID := uuid.New()

	tests := []struct {
		name string
		req  dto.RecordActivityRequest
	}{
		{
			name: "donation below one point",
			req: dto.RecordActivityRequest{
				Category: model.CategoryDonation,
				Amount:   decimal.NewFromInt(5),
			},
		},
		{
			name: "volunteer under one hour",
			req: dto.RecordActivityRequest{
				Category: model.CategoryVolunteer,
				Hours:    0.2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RecordActivity(context.Background(), userID, tt.req)
			if !errors.Is(err, apperror.ErrInvalidInput) {
				t.Fatalf("RecordActivity(%s) error = %v, want ErrInvalidInput", tt.name, err)
			}
		})
	}

	if len(repo.created) != 0 {
		t.Errorf("zero-point activities wrote %d ledger entries, want 0", len(repo.created))
	}
}

func TestBuildActivityAlwaysActive(t *testing.T) {
	s := &activityService{}
	userID := uuid.New()

	activity := s.buildActivity(userID, dto.RecordActivityRequest{
		Category:       model.CategoryConnection,
		IdempotencyKey: "conn-1",
	}, 5)
	if activity.PointsState != model.PointsActive {
		t.Errorf("PointsState = %s, want %s", activity.PointsState, model.PointsActive)
	}
	if !activity.Verified {
		t.Error("recorded activity should be verified")
	}
	if activity.ConfirmStatus != model.ConfirmationNone {
		t.Errorf("ConfirmStatus = %s, want %s", activity.ConfirmStatus, model.ConfirmationNone)
	}
	if activity.IdempotencyKey == nil || *activity.IdempotencyKey != "conn-1" {
		t.Error("idempotency key not carried onto the activity")
	}
	if activity.IdemUserID == nil || *activity.IdemUserID != userID {
		t.Error("idempotency user id not carried onto the activity")
	}

	// Without a client key the column stays NULL so rows never collide.
	bare := s.buildActivity(userID, dto.RecordActivityRequest{
		Category: model.CategoryConnection,
	}, 5)
	if bare.IdempotencyKey != nil {
		t.Error("absent idempotency key should stay nil")
	}
}
