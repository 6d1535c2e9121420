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
)

type AchievementService interface {
	// Evaluate recomputes progress for the user's locked achievements from
	// the stats counters and unlocks any that reached their target. Safe to
	// call repeatedly; unlocked achievements are no-ops.
	Evaluate(ctx context.Context, userID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error)
}

type achievementService struct {
	repo                repository.AchievementRepository
	statsRepo           repository.LeaderboardRepository
	activityRepo        repository.ActivityRepository
	notificationService NotificationService
}

func NewAchievementService(
	repo repository.AchievementRepository,
	statsRepo repository.LeaderboardRepository,
	activityRepo repository.ActivityRepository,
	notificationService NotificationService,
) AchievementService {
	return &achievementService{
		repo:                repo,
		statsRepo:           statsRepo,
		activityRepo:        activityRepo,
		notificationService: notificationService,
	}
}

// AchievementProgress computes current progress toward one achievement from
// the stats counters. Pure; never exceeds MaxProgress.
func AchievementProgress(a *model.Achievement, stats *model.UserStats) int {
	if stats == nil {
		return 0
	}

	var value int
	switch a.Metric {
	case model.MetricHelpsCompleted:
		value = stats.HelpsCompleted
	case model.MetricEmergencyHelps:
		value = stats.EmergencyHelps
	case model.MetricDonationsCount:
		value = stats.DonationsCount
	case model.MetricVolunteerHours:
		value = int(stats.VolunteerHours)
	case model.MetricConnections:
		value = stats.ConnectionsCount
	case model.MetricActivitiesCount:
		value = stats.ActivitiesCount
	case model.MetricTotalScore:
		value = stats.TotalScoreAllTime
	default:
		return 0
	}

	if value < 0 {
		return 0
	}
	if value > a.MaxProgress {
		return a.MaxProgress
	}
	return value
}

func (s *achievementService) Evaluate(ctx context.Context, userID uuid.UUID) error {
	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return err
	}

	unlocked, err := s.repo.ListUnlocked(ctx, userID)
	if err != nil {
		return err
	}
	unlockedSet := make(map[uint]bool, len(unlocked))
	for _, ua := range unlocked {
		unlockedSet[ua.AchievementID] = true
	}

	stats, err := s.statsRepo.GetUserStats(ctx, userID)
	if err != nil {
		return err
	}

	// Catalog order is fixed, so simultaneous unlocks always land in the
	// same sequence.
	for i := range catalog {
		a := &catalog[i]
		if unlockedSet[a.ID] {
			continue
		}
		if AchievementProgress(a, stats) < a.MaxProgress {
			continue
		}

		created, err := s.repo.InsertUnlock(ctx, userID, a.ID, time.Now())
		if err != nil {
			return err
		}
		if !created {
			// A concurrent evaluation won the unlock
			continue
		}

		s.notifyUnlock(ctx, userID, a)

		if a.PointsReward > 0 {
			if err := s.awardBonus(ctx, userID, a); err != nil {
				log.Printf("Failed to award achievement bonus %s to user %s: %v", a.Code, userID, err)
			}
		}
	}

	return nil
}

// awardBonus credits the achievement's point reward through a separate,
// idempotency-keyed ledger insert. The key pins the award to the achievement
// so a re-run can never credit it twice.
func (s *achievementService) awardBonus(ctx context.Context, userID uuid.UUID, a *model.Achievement) error {
	idemKey := fmt.Sprintf("achievement:%s", a.Code)
	activity := &model.ImpactActivity{
		UserID:         userID,
		Category:       model.CategoryAchievementBonus,
		Points:         a.PointsReward,
		Description:    fmt.Sprintf("Achievement unlocked: %s", a.Title),
		Verified:       true,
		PointsState:    model.PointsActive,
		ConfirmStatus:  model.ConfirmationNone,
		IdempotencyKey: &idemKey,
		IdemUserID:     &userID,
	}
	_, err := s.activityRepo.Create(ctx, activity)
	return err
}

func (s *achievementService) notifyUnlock(ctx context.Context, userID uuid.UUID, a *model.Achievement) {
	if s.notificationService == nil {
		return
	}
	notification := &model.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   userID,
		EntityType: "achievement",
		Type:       "achievement_unlocked",
		Message:    fmt.Sprintf("Achievement unlocked: %s (+%d points)", a.Title, a.PointsReward),
	}
	if err := s.notificationService.CreateNotification(ctx, notification); err != nil {
		log.Printf("Failed to send unlock notification to user %s: %v", userID, err)
	}
}

func (s *achievementService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dto.AchievementResponse, error) {
	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.repo.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[uint]time.Time, len(unlocked))
	for _, ua := range unlocked {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	stats, err := s.statsRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AchievementResponse, 0, len(catalog))
	for i := range catalog {
		a := &catalog[i]
		resp := dto.AchievementResponse{
			Code:         a.Code,
			Title:        a.Title,
			Description:  a.Description,
			Rarity:       a.Rarity,
			PointsReward: a.PointsReward,
			MaxProgress:  a.MaxProgress,
		}
		if at, ok := unlockedAt[a.ID]; ok {
			resp.Unlocked = true
			resp.Progress = a.MaxProgress
			t := at
			resp.UnlockedAt = &t
		} else {
			resp.Progress = AchievementProgress(a, stats)
		}
		result = append(result, resp)
	}

	return result, nil
}
