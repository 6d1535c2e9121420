package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/pkg/apperror"
)

type stubConfirmationRepo struct {
	confirmation *model.ConfirmationRequest
	reviewCalls  int
}

func (r *stubConfirmationRepo) Create(ctx context.Context, req *model.ConfirmationRequest, activity *model.ImpactActivity) (bool, error) {
	return true, nil
}

func (r *stubConfirmationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ConfirmationRequest, error) {
	if r.confirmation == nil || r.confirmation.ID != id {
		return nil, apperror.ErrNotFound
	}
	copied := *r.confirmation
	return &copied, nil
}

func (r *stubConfirmationRepo) FindByActivityID(ctx context.Context, activityID uuid.UUID) (*model.ConfirmationRequest, error) {
	return nil, apperror.ErrNotFound
}

func (r *stubConfirmationRepo) ListBySubmitter(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ConfirmationRequest, error) {
	return nil, nil
}

func (r *stubConfirmationRepo) ListPendingByScope(ctx context.Context, scopeType string, scopeID uuid.UUID) ([]model.ConfirmationRequest, error) {
	return nil, nil
}

// Review mirrors the conditional update: only a pending request transitions,
// a second attempt observes the terminal status.
func (r *stubConfirmationRepo) Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, approve bool, feedback *string, rating *int) (*model.ConfirmationRequest, error) {
	r.reviewCalls++
	if r.confirmation == nil || r.confirmation.ID != id {
		return nil, apperror.ErrNotFound
	}
	if r.confirmation.Status != model.ReviewPending {
		return nil, apperror.ErrAlreadyReviewed
	}
	status := model.ReviewRejected
	if approve {
		status = model.ReviewApproved
	}
	now := time.Now()
	r.confirmation.Status = status
	r.confirmation.Feedback = feedback
	r.confirmation.Rating = rating
	r.confirmation.ReviewerID = &reviewerID
	r.confirmation.ReviewedAt = &now
	copied := *r.confirmation
	return &copied, nil
}

type stubOrgRepo struct {
	post    *model.HelpPost
	org     *model.Organization
	members map[uuid.UUID]bool
}

func (r *stubOrgRepo) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	return r.members[userID], nil
}

func (r *stubOrgRepo) FindPost(ctx context.Context, postID uuid.UUID) (*model.HelpPost, error) {
	if r.post == nil || r.post.ID != postID {
		return nil, apperror.ErrNotFound
	}
	return r.post, nil
}

func (r *stubOrgRepo) FindOrganization(ctx context.Context, orgID uuid.UUID) (*model.Organization, error) {
	if r.org == nil || r.org.ID != orgID {
		return nil, apperror.ErrNotFound
	}
	return r.org, nil
}

type stubAchievementService struct{}

func (s *stubAchievementService) Evaluate(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (s *stubAchievementService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error) {
	return nil, nil
}

func newReviewFixture() (*confirmationService, *stubConfirmationRepo, *model.ConfirmationRequest, uuid.UUID) {
	submitter := uuid.New()
	author := uuid.New()
	post := &model.HelpPost{ID: uuid.New(), AuthorID: author}

	confirmation := &model.ConfirmationRequest{
		ID:          uuid.New(),
		Kind:        model.ClaimHelpCompletion,
		SubmitterID: submitter,
		ActivityID:  uuid.New(),
		ScopeType:   model.ScopePost,
		ScopeID:     post.ID,
		Status:      model.ReviewPending,
	}

	repo := &stubConfirmationRepo{confirmation: confirmation}
	s := &confirmationService{
		repo:               repo,
		orgRepo:            &stubOrgRepo{post: post},
		achievementService: &stubAchievementService{},
	}
	return s, repo, confirmation, author
}

func TestReviewClaimSelfReviewForbidden(t *testing.T) {
	s, repo, confirmation, _ := newReviewFixture()

	_, err := s.ReviewClaim(context.Background(), confirmation.SubmitterID, confirmation.ID, dto.ReviewClaimRequest{
		Decision: "approve",
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("self review error = %v, want ErrForbidden", err)
	}
	if repo.reviewCalls != 0 {
		t.Errorf("self review reached the repository %d times, want 0", repo.reviewCalls)
	}

	// Quick approve enforces the same rule.
	if _, err := s.QuickApprove(context.Background(), confirmation.SubmitterID, confirmation.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("self quick-approve error = %v, want ErrForbidden", err)
	}
}

func TestReviewClaimRejectionRequiresReason(t *testing.T) {
	s, repo, confirmation, author := newReviewFixture()

	_, err := s.ReviewClaim(context.Background(), author, confirmation.ID, dto.ReviewClaimRequest{
		Decision: "reject",
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("reject without reason error = %v, want ErrInvalidInput", err)
	}
	if repo.reviewCalls != 0 {
		t.Errorf("invalid rejection reached the repository %d times, want 0", repo.reviewCalls)
	}
}

func TestReviewClaimUnauthorizedReviewer(t *testing.T) {
	s, _, confirmation, _ := newReviewFixture()
	stranger := uuid.New()

	_, err := s.ReviewClaim(context.Background(), stranger, confirmation.ID, dto.ReviewClaimRequest{
		Decision: "approve",
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("non-author review error = %v, want ErrForbidden", err)
	}
}

func TestReviewClaimSecondReviewAlreadyReviewed(t *testing.T) {
	s, _, confirmation, author := newReviewFixture()
	ctx := context.Background()

	res, err := s.ReviewClaim(ctx, author, confirmation.ID, dto.ReviewClaimRequest{
		Decision: "approve",
		Rating:   4,
	})
	if err != nil {
		t.Fatalf("first review: unexpected error: %v", err)
	}
	if res.Status != model.ReviewApproved {
		t.Errorf("Status = %s, want %s", res.Status, model.ReviewApproved)
	}
	if res.Rating == nil || *res.Rating != 4 {
		t.Error("reviewer rating not recorded")
	}

	_, err = s.ReviewClaim(ctx, author, confirmation.ID, dto.ReviewClaimRequest{
		Decision: "reject",
		Reason:   "changed my mind",
	})
	if !errors.Is(err, apperror.ErrAlreadyReviewed) {
		t.Fatalf("second review error = %v, want ErrAlreadyReviewed", err)
	}
}

func TestQuickApproveSetsMaximumRating(t *testing.T) {
	s, _, confirmation, author := newReviewFixture()

	res, err := s.QuickApprove(context.Background(), author, confirmation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != model.ReviewApproved {
		t.Errorf("Status = %s, want %s", res.Status, model.ReviewApproved)
	}
	if res.Rating == nil || *res.Rating != 5 {
		t.Error("quick approve should record the maximum rating")
	}
}

func TestOrgScopedReviewRequiresMembership(t *testing.T) {
	submitter := uuid.New()
	member := uuid.New()
	outsider := uuid.New()
	org := &model.Organization{ID: uuid.New()}

	confirmation := &model.ConfirmationRequest{
		ID:          uuid.New(),
		Kind:        model.ClaimVolunteerWork,
		SubmitterID: submitter,
		ActivityID:  uuid.New(),
		ScopeType:   model.ScopeOrganization,
		ScopeID:     org.ID,
		Status:      model.ReviewPending,
	}

	s := &confirmationService{
		repo:               &stubConfirmationRepo{confirmation: confirmation},
		orgRepo:            &stubOrgRepo{org: org, members: map[uuid.UUID]bool{member: true}},
		achievementService: &stubAchievementService{},
	}
	ctx := context.Background()

	if _, err := s.ReviewClaim(ctx, outsider, confirmation.ID, dto.ReviewClaimRequest{Decision: "approve"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("outsider review error = %v, want ErrForbidden", err)
	}

	res, err := s.ReviewClaim(ctx, member, confirmation.ID, dto.ReviewClaimRequest{Decision: "approve"})
	if err != nil {
		t.Fatalf("member review: unexpected error: %v", err)
	}
	if res.Status != model.ReviewApproved {
		t.Errorf("Status = %s, want %s", res.Status, model.ReviewApproved)
	}
}

func TestPrepareClaimHelpCompletionEvidence(t *testing.T) {
	submitter := uuid.New()
	author := uuid.New()
	post := &model.HelpPost{ID: uuid.New(), AuthorID: author}
	emergency := &model.HelpPost{ID: uuid.New(), AuthorID: author, Emergency: true}

	s := &confirmationService{orgRepo: &stubOrgRepo{post: post}}
	bucket := "30m_2h"

	// Evidence is mandatory for help completion claims.
	_, _, err := s.prepareClaim(context.Background(), submitter, post.ID, &dto.SubmitClaimRequest{
		Kind:      model.ClaimHelpCompletion,
		ScopeType: model.ScopePost,
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("missing evidence error = %v, want ErrInvalidInput", err)
	}

	category, points, err := s.prepareClaim(context.Background(), submitter, post.ID, &dto.SubmitClaimRequest{
		Kind:        model.ClaimHelpCompletion,
		ScopeType:   model.ScopePost,
		EffortLevel: 3,
		TimeBucket:  bucket,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != model.CategoryHelpCompleted || points != PointsHelpCompleted {
		t.Errorf("prepareClaim = (%s, %d), want (%s, %d)", category, points, model.CategoryHelpCompleted, PointsHelpCompleted)
	}

	// Claiming your own post is rejected.
	_, _, err = s.prepareClaim(context.Background(), author, post.ID, &dto.SubmitClaimRequest{
		Kind:        model.ClaimHelpCompletion,
		ScopeType:   model.ScopePost,
		EffortLevel: 3,
		TimeBucket:  bucket,
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("own-post claim error = %v, want ErrInvalidInput", err)
	}

	// An emergency post upgrades the category and point value.
	s.orgRepo = &stubOrgRepo{post: emergency}
	category, points, err = s.prepareClaim(context.Background(), submitter, emergency.ID, &dto.SubmitClaimRequest{
		Kind:        model.ClaimHelpCompletion,
		ScopeType:   model.ScopePost,
		EffortLevel: 5,
		TimeBucket:  bucket,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != model.CategoryEmergencyHelp || points != PointsEmergencyHelp {
		t.Errorf("prepareClaim = (%s, %d), want (%s, %d)", category, points, model.CategoryEmergencyHelp, PointsEmergencyHelp)
	}
}
