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
	"github.com/shopspring/decimal"
)

type ConfirmationService interface {
	SubmitClaim(ctx context.Context, submitterID uuid.UUID, req dto.SubmitClaimRequest) (*dto.ConfirmationResponse, error)
	ReviewClaim(ctx context.Context, reviewerID, requestID uuid.UUID, req dto.ReviewClaimRequest) (*dto.ConfirmationResponse, error)
	// QuickApprove is the one-tap approval path: same transition as an
	// approve review, with a canned feedback message and maximum rating.
	QuickApprove(ctx context.Context, reviewerID, requestID uuid.UUID) (*dto.ConfirmationResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ConfirmationResponse, error)
	ListPendingForReviewer(ctx context.Context, reviewerID uuid.UUID, scopeType string, scopeID uuid.UUID) ([]dto.ConfirmationResponse, error)
}

type confirmationService struct {
	repo                repository.ConfirmationRepository
	activityRepo        repository.ActivityRepository
	orgRepo             repository.OrgRepository
	rateLimiter         RateLimiter
	achievementService  AchievementService
	notificationService NotificationService

	skillConversionRate float64
	weeklyHoursCap      float64
}

func NewConfirmationService(
	repo repository.ConfirmationRepository,
	activityRepo repository.ActivityRepository,
	orgRepo repository.OrgRepository,
	rateLimiter RateLimiter,
	achievementService AchievementService,
	notificationService NotificationService,
	skillConversionRate float64,
	weeklyHoursCap float64,
) ConfirmationService {
	return &confirmationService{
		repo:                repo,
		activityRepo:        activityRepo,
		orgRepo:             orgRepo,
		rateLimiter:         rateLimiter,
		achievementService:  achievementService,
		notificationService: notificationService,
		skillConversionRate: skillConversionRate,
		weeklyHoursCap:      weeklyHoursCap,
	}
}

func (s *confirmationService) SubmitClaim(ctx context.Context, submitterID uuid.UUID, req dto.SubmitClaimRequest) (*dto.ConfirmationResponse, error) {
	status, err := s.rateLimiter.RecordAttempt(ctx, OpRequestConfirmation, submitterID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, fmt.Errorf("%w: retry after %s", apperror.ErrRateLimitExceeded, status.ResetAt.Format(time.RFC3339))
	}

	scopeID, err := uuid.Parse(req.ScopeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid scope id", apperror.ErrInvalidInput)
	}

	category, points, err := s.prepareClaim(ctx, submitterID, scopeID, &req)
	if err != nil {
		return nil, err
	}

	activity := &model.ImpactActivity{
		UserID:        submitterID,
		Category:      category,
		Points:        points,
		Description:   req.Message,
		Verified:      false,
		PointsState:   model.PointsPending,
		ConfirmStatus: model.ConfirmationPending,
		ScopeType:     &req.ScopeType,
		ScopeID:       &scopeID,
	}
	if req.Skill != "" {
		activity.Skill = &req.Skill
	}
	if req.Hours > 0 {
		activity.HoursContributed = &req.Hours
	}
	if req.MarketRate > 0 {
		rate := decimal.NewFromFloat(req.MarketRate)
		activity.MarketValue = &rate
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		activity.IdempotencyKey = &key
		activity.IdemUserID = &submitterID
	}

	confirmation := &model.ConfirmationRequest{
		Kind:        req.Kind,
		SubmitterID: submitterID,
		ScopeType:   req.ScopeType,
		ScopeID:     scopeID,
		Message:     req.Message,
		Status:      model.ReviewPending,
	}
	if req.EffortLevel > 0 {
		effort := req.EffortLevel
		confirmation.EffortLevel = &effort
	}
	if req.TimeBucket != "" {
		bucket := req.TimeBucket
		confirmation.TimeBucket = &bucket
	}

	created, err := s.repo.Create(ctx, confirmation, activity)
	if err != nil {
		return nil, err
	}
	if !created {
		existing, err := s.activityRepo.FindByIdempotencyKey(ctx, submitterID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		stored, err := s.repo.FindByActivityID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		return toConfirmationResponse(stored), nil
	}

	return toConfirmationResponse(confirmation), nil
}

// prepareClaim validates the claim's scope and evidence and returns the
// category and point value its pending ledger entry should carry.
func (s *confirmationService) prepareClaim(ctx context.Context, submitterID, scopeID uuid.UUID, req *dto.SubmitClaimRequest) (string, int, error) {
	switch req.Kind {
	case model.ClaimHelpCompletion:
		if req.ScopeType != model.ScopePost {
			return "", 0, fmt.Errorf("%w: help completion claims are scoped to a post", apperror.ErrInvalidInput)
		}
		if req.EffortLevel < 1 || req.EffortLevel > 5 || req.TimeBucket == "" {
			return "", 0, fmt.Errorf("%w: help completion claims require an effort level (1-5) and a time bucket", apperror.ErrInvalidInput)
		}
		post, err := s.orgRepo.FindPost(ctx, scopeID)
		if err != nil {
			return "", 0, err
		}
		if post.AuthorID == submitterID {
			return "", 0, fmt.Errorf("%w: cannot claim completion of your own post", apperror.ErrInvalidInput)
		}
		category := model.CategoryHelpCompleted
		if post.Emergency {
			category = model.CategoryEmergencyHelp
		}
		points, _ := CalculatePoints(category, PointsContext{})
		return category, points, nil

	case model.ClaimVolunteerWork:
		if req.Skill == "" || req.Hours <= 0 || req.MarketRate <= 0 {
			return "", 0, fmt.Errorf("%w: volunteer work requires skill, hours and market rate", apperror.ErrInvalidInput)
		}
		if err := s.checkScopeExists(ctx, req.ScopeType, scopeID); err != nil {
			return "", 0, err
		}
		since := time.Now().Add(-WeeklyCapWindow)
		logged, err := s.activityRepo.WeeklySkillHours(ctx, submitterID, req.Skill, since)
		if err != nil {
			return "", 0, err
		}
		if logged+req.Hours > s.weeklyHoursCap {
			return "", 0, fmt.Errorf("%w: %.1f hours would exceed the %.0f-hour weekly cap for %s (%.1f already logged)",
				apperror.ErrInvalidInput, req.Hours, s.weeklyHoursCap, req.Skill, logged)
		}
		points, _ := CalculatePoints(model.CategoryVolunteerWork, PointsContext{
			Hours:          req.Hours,
			MarketRate:     decimal.NewFromFloat(req.MarketRate),
			ConversionRate: s.skillConversionRate,
		})
		return model.CategoryVolunteerWork, points, nil

	default:
		return "", 0, fmt.Errorf("%w: unknown claim kind %q", apperror.ErrInvalidInput, req.Kind)
	}
}

func (s *confirmationService) checkScopeExists(ctx context.Context, scopeType string, scopeID uuid.UUID) error {
	switch scopeType {
	case model.ScopePost:
		_, err := s.orgRepo.FindPost(ctx, scopeID)
		return err
	case model.ScopeOrganization:
		_, err := s.orgRepo.FindOrganization(ctx, scopeID)
		return err
	}
	return fmt.Errorf("%w: unknown scope type %q", apperror.ErrInvalidInput, scopeType)
}

func (s *confirmationService) ReviewClaim(ctx context.Context, reviewerID, requestID uuid.UUID, req dto.ReviewClaimRequest) (*dto.ConfirmationResponse, error) {
	approve := req.Decision == "approve"
	if !approve && req.Reason == "" {
		return nil, fmt.Errorf("%w: a rejection requires a reason", apperror.ErrInvalidInput)
	}

	var feedback *string
	if req.Reason != "" {
		reason := req.Reason
		feedback = &reason
	}
	var rating *int
	if approve && req.Rating > 0 {
		r := req.Rating
		rating = &r
	}

	return s.review(ctx, reviewerID, requestID, approve, feedback, rating)
}

func (s *confirmationService) QuickApprove(ctx context.Context, reviewerID, requestID uuid.UUID) (*dto.ConfirmationResponse, error) {
	feedback := "Confirmed"
	rating := 5
	return s.review(ctx, reviewerID, requestID, true, &feedback, &rating)
}

func (s *confirmationService) review(ctx context.Context, reviewerID, requestID uuid.UUID, approve bool, feedback *string, rating *int) (*dto.ConfirmationResponse, error) {
	confirmation, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if confirmation.SubmitterID == reviewerID {
		return nil, fmt.Errorf("%w: you cannot review your own claim", apperror.ErrForbidden)
	}
	if err := s.authorizeReviewer(ctx, reviewerID, confirmation); err != nil {
		return nil, err
	}

	reviewed, err := s.repo.Review(ctx, requestID, reviewerID, approve, feedback, rating)
	if err != nil {
		return nil, err
	}

	s.afterReview(reviewed, approve)

	return toConfirmationResponse(reviewed), nil
}

// authorizeReviewer enforces the per-kind reviewer scope: a help completion
// claim is reviewed by the post's author, volunteer work by the post's author
// or a member of the scoped organization.
func (s *confirmationService) authorizeReviewer(ctx context.Context, reviewerID uuid.UUID, confirmation *model.ConfirmationRequest) error {
	switch confirmation.ScopeType {
	case model.ScopePost:
		post, err := s.orgRepo.FindPost(ctx, confirmation.ScopeID)
		if err != nil {
			return err
		}
		if post.AuthorID != reviewerID {
			return fmt.Errorf("%w: only the post author can review this claim", apperror.ErrForbidden)
		}
		return nil

	case model.ScopeOrganization:
		member, err := s.orgRepo.IsMember(ctx, confirmation.ScopeID, reviewerID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("%w: only organization members can review this claim", apperror.ErrForbidden)
		}
		return nil
	}

	return apperror.ErrForbidden
}

// afterReview notifies the submitter of the outcome and, on approval, runs
// achievement evaluation against the newly active points.
func (s *confirmationService) afterReview(confirmation *model.ConfirmationRequest, approve bool) {
	go func() {
		ctx := context.Background()

		if s.notificationService != nil {
			notifType := "claim_rejected"
			message := "Your claim was not confirmed"
			if approve {
				notifType = "claim_approved"
				message = "Your claim was confirmed and your points are now active"
			}
			notification := &model.Notification{
				UserID:     confirmation.SubmitterID,
				ActorID:    *confirmation.ReviewerID,
				EntityID:   confirmation.ID,
				EntityType: "confirmation",
				Type:       notifType,
				Message:    message,
			}
			if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
				log.Printf("Failed to send review notification to user %s: %v", confirmation.SubmitterID, err)
			}
		}

		if approve {
			if err := s.achievementService.Evaluate(ctx, confirmation.SubmitterID); err != nil {
				log.Printf("Failed to evaluate achievements for user %s: %v", confirmation.SubmitterID, err)
			}
		}
	}()
}

func (s *confirmationService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ConfirmationResponse, error) {
	confirmations, err := s.repo.ListBySubmitter(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toConfirmationResponses(confirmations), nil
}

func (s *confirmationService) ListPendingForReviewer(ctx context.Context, reviewerID uuid.UUID, scopeType string, scopeID uuid.UUID) ([]dto.ConfirmationResponse, error) {
	switch scopeType {
	case model.ScopePost:
		post, err := s.orgRepo.FindPost(ctx, scopeID)
		if err != nil {
			return nil, err
		}
		if post.AuthorID != reviewerID {
			return nil, apperror.ErrForbidden
		}
	case model.ScopeOrganization:
		member, err := s.orgRepo.IsMember(ctx, scopeID, reviewerID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, apperror.ErrForbidden
		}
	default:
		return nil, fmt.Errorf("%w: unknown scope type %q", apperror.ErrInvalidInput, scopeType)
	}

	confirmations, err := s.repo.ListPendingByScope(ctx, scopeType, scopeID)
	if err != nil {
		return nil, err
	}
	return toConfirmationResponses(confirmations), nil
}

func toConfirmationResponse(c *model.ConfirmationRequest) *dto.ConfirmationResponse {
	return &dto.ConfirmationResponse{
		ID:          c.ID,
		Kind:        c.Kind,
		SubmitterID: c.SubmitterID,
		ActivityID:  c.ActivityID,
		ScopeType:   c.ScopeType,
		ScopeID:     c.ScopeID,
		Status:      c.Status,
		Feedback:    c.Feedback,
		Rating:      c.Rating,
		CreatedAt:   c.CreatedAt,
		ReviewedAt:  c.ReviewedAt,
	}
}

func toConfirmationResponses(confirmations []model.ConfirmationRequest) []dto.ConfirmationResponse {
	result := make([]dto.ConfirmationResponse, 0, len(confirmations))
	for i := range confirmations {
		result = append(result, *toConfirmationResponse(&confirmations[i]))
	}
	return result
}
