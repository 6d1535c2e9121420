package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/internal/repository"
	"github.com/salingbantu/impact-engine/pkg/apperror"
)

type RedemptionService interface {
	ListRewards(ctx context.Context) ([]model.Reward, error)
	// Redeem checks eligibility in a fixed order and reports the first
	// failure: reward exists, is available, trust tier, balance, stock.
	Redeem(ctx context.Context, userID, rewardID uuid.UUID, req dto.RedeemRequest) (*dto.RedemptionResult, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.RedemptionTransaction, error)
}

type redemptionService struct {
	repo                repository.RewardRepository
	statsRepo           repository.LeaderboardRepository
	rateLimiter         RateLimiter
	notificationService NotificationService
	search              RewardSearch
}

func NewRedemptionService(
	repo repository.RewardRepository,
	statsRepo repository.LeaderboardRepository,
	rateLimiter RateLimiter,
	notificationService NotificationService,
	search RewardSearch,
) RedemptionService {
	return &redemptionService{
		repo:                repo,
		statsRepo:           statsRepo,
		rateLimiter:         rateLimiter,
		notificationService: notificationService,
		search:              search,
	}
}

func (s *redemptionService) ListRewards(ctx context.Context) ([]model.Reward, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *redemptionService) Redeem(ctx context.Context, userID, rewardID uuid.UUID, req dto.RedeemRequest) (*dto.RedemptionResult, error) {
	status, err := s.rateLimiter.RecordAttempt(ctx, OpRedeem, userID)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, fmt.Errorf("%w: retry after %s", apperror.ErrRateLimitExceeded, status.ResetAt.Format(time.RFC3339))
	}

	reward, err := s.repo.FindByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	// Pre-flight checks give precise errors; the transaction's conditional
	// updates remain the authority under concurrency.
	if !reward.Available {
		return nil, fmt.Errorf("%w: %s is not available", apperror.ErrRewardUnavailable, reward.Title)
	}

	stats, err := s.statsRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	if reward.RequiredTrustLevel != nil {
		level := ResolveTrustLevel(TrustScore(stats))
		if !level.AtLeast(TrustLevel(*reward.RequiredTrustLevel)) {
			return nil, fmt.Errorf("%w: %s requires %s trust", apperror.ErrInsufficientTrust, reward.Title, *reward.RequiredTrustLevel)
		}
	}

	if stats.TotalScoreAllTime-stats.PointsSpent < reward.PointsCost {
		return nil, fmt.Errorf("%w: %s costs %d points", apperror.ErrInsufficientBalance, reward.Title, reward.PointsCost)
	}

	if reward.Stock != nil && *reward.Stock <= 0 {
		return nil, fmt.Errorf("%w: %s is out of stock", apperror.ErrOutOfStock, reward.Title)
	}

	txn := &model.RedemptionTransaction{
		UserID:      userID,
		RewardID:    reward.ID,
		PointsSpent: reward.PointsCost,
		Status:      "completed",
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		txn.IdempotencyKey = &key
		txn.IdemUserID = &userID
	}

	txn, err = s.repo.Redeem(ctx, txn, reward)
	if err != nil {
		if errors.Is(err, apperror.ErrInsufficientBalance) || errors.Is(err, apperror.ErrOutOfStock) {
			return nil, fmt.Errorf("%w: %s", err, reward.Title)
		}
		return nil, err
	}

	s.afterRedemption(userID, reward)

	return &dto.RedemptionResult{
		Success: true,
		Message: fmt.Sprintf("Redeemed %s for %d points", reward.Title, txn.PointsSpent),
		Transaction: &dto.RedemptionTxnDetail{
			ID:          txn.ID,
			RewardID:    reward.ID,
			RewardTitle: reward.Title,
			PointsSpent: txn.PointsSpent,
			Status:      txn.Status,
			RedeemedAt:  txn.RedeemedAt,
		},
	}, nil
}

// afterRedemption confirms the redemption to the user and refreshes the
// reward's search document with the new stock.
func (s *redemptionService) afterRedemption(userID uuid.UUID, reward *model.Reward) {
	go func() {
		ctx := context.Background()

		if s.notificationService != nil {
			notification := &model.Notification{
				UserID:     userID,
				ActorID:    userID,
				EntityID:   reward.ID,
				EntityType: "reward",
				Type:       "reward_redeemed",
				Message:    fmt.Sprintf("You redeemed %s", reward.Title),
			}
			if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
				log.Printf("Failed to send redemption notification to user %s: %v", userID, err)
			}
		}

		if s.search != nil {
			if err := s.search.IndexReward(ctx, reward.ID); err != nil {
				log.Printf("Failed to reindex reward %s: %v", reward.ID, err)
			}
		}
	}()
}

func (s *redemptionService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.RedemptionTransaction, error) {
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
