package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/internal/repository"
	"github.com/salingbantu/impact-engine/pkg/apperror"
)

// WeeklyCapWindow is the rolling window the volunteer hour cap covers.
const WeeklyCapWindow = 7 * 24 * time.Hour

type ActivityService interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, req dto.RecordActivityRequest) (*dto.ActivityResponse, error)
	GetPointsBreakdown(ctx context.Context, userID uuid.UUID) (*dto.PointsBreakdownResponse, error)
	ListActivities(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo                repository.ActivityRepository
	statsRepo           repository.LeaderboardRepository
	rateLimiter         RateLimiter
	achievementService  AchievementService
	notificationService NotificationService

	skillConversionRate float64
	weeklyHoursCap      float64
}

func NewActivityService(
	repo repository.ActivityRepository,
	statsRepo repository.LeaderboardRepository,
	rateLimiter RateLimiter,
	achievementService AchievementService,
	notificationService NotificationService,
	skillConversionRate float64,
	weeklyHoursCap float64,
) ActivityService {
	return &activityService{
		repo:                repo,
		statsRepo:           statsRepo,
		rateLimiter:         rateLimiter,
		achievementService:  achievementService,
		notificationService: notificationService,
		skillConversionRate: skillConversionRate,
		weeklyHoursCap:      weeklyHoursCap,
	}
}

// Counter-attested categories may only enter the ledger through the
// confirmation workflow, which pairs the pending entry with a reviewable
// claim. The plain record endpoint rejects them.
func requiresConfirmation(category string) bool {
	switch category {
	case model.CategoryHelpCompleted, model.CategoryEmergencyHelp, model.CategoryVolunteerWork:
		return true
	}
	return false
}

func (s *activityService) RecordActivity(ctx context.Context, userID uuid.UUID, req dto.RecordActivityRequest) (*dto.ActivityResponse, error) {
	status, err := s.rateLimiter.RecordAttempt(ctx, OpRecordActivity, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, fmt.Errorf("%w: retry after %s", apperror.ErrRateLimitExceeded, status.ResetAt.Format(time.RFC3339))
	}

	if err := s.validateCategoryInput(&req); err != nil {
		return nil, err
	}

	points, known := CalculatePoints(req.Category, PointsContext{
		Amount:         req.Amount,
		Recurring:      req.Recurring,
		Matching:       req.Matching,
		Hours:          req.Hours,
		MarketRate:     req.MarketRate,
		ConversionRate: s.skillConversionRate,
		EngagementType: req.EngagementType,
	})
	if !known {
		// Non-fatal: the action still earns the minimal default
		log.Printf("Unknown activity category %q (engagement %q) from user %s, awarding default points", req.Category, req.EngagementType, userID)
	}
	if points < 1 {
		// Verified ledger entries always carry at least one point; an amount
		// that floors to zero is rejected rather than recorded worthless.
		return nil, fmt.Errorf("%w: %s is too small to earn any points", apperror.ErrInvalidInput, req.Category)
	}

	activity := s.buildActivity(userID, req, points)

	created, err := s.repo.Create(ctx, activity)
	if err != nil {
		return nil, err
	}
	if !created {
		existing, err := s.repo.FindByIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		return toActivityResponse(existing), nil
	}

	s.afterActivation(userID, activity.Points)

	return toActivityResponse(activity), nil
}

func (s *activityService) validateCategoryInput(req *dto.RecordActivityRequest) error {
	if requiresConfirmation(req.Category) {
		return fmt.Errorf("%w: %s must be submitted as a confirmation claim", apperror.ErrInvalidInput, req.Category)
	}

	switch req.Category {
	case model.CategoryDonation:
		if !req.Amount.IsPositive() {
			return fmt.Errorf("%w: donation amount must be positive", apperror.ErrInvalidInput)
		}
	case model.CategoryVolunteer:
		if req.Hours <= 0 {
			return fmt.Errorf("%w: volunteer hours must be positive", apperror.ErrInvalidInput)
		}
	}
	return nil
}

func (s *activityService) buildActivity(userID uuid.UUID, req dto.RecordActivityRequest, points int) *model.ImpactActivity {
	activity := &model.ImpactActivity{
		UserID:      userID,
		Category:    req.Category,
		Points:      points,
		Description: req.Description,
	}

	if req.EngagementType != "" {
		activity.EngagementType = &req.EngagementType
	}
	if req.Hours > 0 {
		activity.HoursContributed = &req.Hours
	}
	if req.Skill != "" {
		activity.Skill = &req.Skill
	}
	if req.Amount.IsPositive() {
		amount := req.Amount
		activity.MarketValue = &amount
	}
	if req.ScopeType != "" {
		activity.ScopeType = &req.ScopeType
		if scopeID, err := uuid.Parse(req.ScopeID); err == nil {
			activity.ScopeID = &scopeID
		}
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		activity.IdempotencyKey = &key
		activity.IdemUserID = &userID
	}

	// Counter-attested categories never reach this path, so every entry the
	// record endpoint creates is active and verified from birth.
	activity.PointsState = model.PointsActive
	activity.ConfirmStatus = model.ConfirmationNone
	activity.Verified = true

	return activity
}

// afterActivation runs the consumers of newly active points in the
// background: achievement evaluation and the trust tier change notification.
func (s *activityService) afterActivation(userID uuid.UUID, points int) {
	go func() {
		ctx := context.Background()

		stats, err := s.statsRepo.GetUserStats(ctx, userID)
		if err != nil {
			log.Printf("Failed to load stats for user %s: %v", userID, err)
			return
		}

		// Stats already include this activity; rewind to compare tiers.
		before := *stats
		before.TotalScoreAllTime -= points
		prevLevel := ResolveTrustLevel(TrustScore(&before))
		newLevel := ResolveTrustLevel(TrustScore(stats))

		if newLevel != prevLevel && s.notificationService != nil {
			notification := &model.Notification{
				UserID:     userID,
				ActorID:    userID,
				EntityID:   userID,
				EntityType: "activity",
				Type:       "trust_level_up",
				Message:    fmt.Sprintf("Your trust level is now %s", newLevel),
			}
			if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
				log.Printf("Failed to send trust level notification to user %s: %v", userID, err)
			}
		}

		if err := s.achievementService.Evaluate(ctx, userID); err != nil {
			log.Printf("Failed to evaluate achievements for user %s: %v", userID, err)
		}
	}()
}

func (s *activityService) GetPointsBreakdown(ctx context.Context, userID uuid.UUID) (*dto.PointsBreakdownResponse, error) {
	rows, err := s.repo.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PointsBreakdownResponse{
		TotalPoints:     stats.TotalScoreAllTime,
		AvailablePoints: stats.TotalScoreAllTime - stats.PointsSpent,
		Categories:      make([]dto.CategoryBreakdown, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Categories = append(resp.Categories, dto.CategoryBreakdown{
			Category:   row.Category,
			Points:     row.Points,
			Count:      row.Count,
			LastEarned: row.LastEarned,
		})
	}

	return resp, nil
}

func (s *activityService) ListActivities(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ActivityResponse, error) {
	activities, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		result = append(result, *toActivityResponse(&activities[i]))
	}
	return result, nil
}

func toActivityResponse(a *model.ImpactActivity) *dto.ActivityResponse {
	return &dto.ActivityResponse{
		ID:                 a.ID,
		Category:           a.Category,
		PointsEarned:       a.Points,
		Description:        a.Description,
		Verified:           a.Verified,
		PointsState:        a.PointsState,
		ConfirmationStatus: a.ConfirmStatus,
		CreatedAt:          a.CreatedAt,
	}
}
