package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"gorm.io/gorm"
)

// Leaderboard windows
const (
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowAllTime = "all_time"
)

type LeaderboardRepository interface {
	// GetTopUsers returns the top entries for the window, ordered by score
	// descending with user id as the deterministic tie-break.
	GetTopUsers(ctx context.Context, limit int, window string) ([]model.UserStats, error)
	// WindowScore is one user's aggregate for the window.
	WindowScore(ctx context.Context, userID uuid.UUID, window string) (int, error)
	// CountUsersWithGreaterScore supports off-window rank lookup:
	// rank = 1 + count(strictly greater), no full sort needed.
	CountUsersWithGreaterScore(ctx context.Context, window string, score int) (int64, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error)
	// ResetPeriodScores zeroes weekly or monthly running totals; the rollover
	// job calls it at period boundaries.
	ResetPeriodScores(ctx context.Context, window string) error
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func windowStart(window string, now time.Time) time.Time {
	switch window {
	case WindowWeekly:
		return now.AddDate(0, 0, -7)
	case WindowMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

func (r *leaderboardRepository) GetTopUsers(ctx context.Context, limit int, window string) ([]model.UserStats, error) {
	var stats []model.UserStats

	if window == "" || window == WindowAllTime {
		err := r.db.WithContext(ctx).
			Preload("User").Preload("User.Profile").
			Order("total_score_all_time DESC, user_id ASC").
			Limit(limit).
			Find(&stats).Error
		return stats, err
	}

	startDate := windowStart(window, time.Now())

	type result struct {
		UserID uuid.UUID
		Score  int
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&model.ImpactActivity{}).
		Select("user_id, SUM(points) as score").
		Where("points_state = ? AND created_at >= ?", model.PointsActive, startDate).
		Group("user_id").
		Order("score DESC, user_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return stats, nil
	}

	userIDs := make([]uuid.UUID, 0, len(results))
	for _, res := range results {
		userIDs = append(userIDs, res.UserID)
	}

	// All-time totals drive the trust tier shown next to the period score
	var realStats []model.UserStats
	if err := r.db.WithContext(ctx).
		Preload("User").Preload("User.Profile").
		Where("user_id IN ?", userIDs).
		Find(&realStats).Error; err != nil {
		return nil, err
	}

	statsMap := make(map[uuid.UUID]model.UserStats, len(realStats))
	for _, rs := range realStats {
		statsMap[rs.UserID] = rs
	}

	for _, res := range results {
		s, ok := statsMap[res.UserID]
		if !ok {
			s = model.UserStats{UserID: res.UserID}
		}
		if window == WindowWeekly {
			s.TotalScoreWeekly = res.Score
		} else {
			s.TotalScoreMonthly = res.Score
		}
		stats = append(stats, s)
	}

	return stats, nil
}

func (r *leaderboardRepository) WindowScore(ctx context.Context, userID uuid.UUID, window string) (int, error) {
	if window == "" || window == WindowAllTime {
		stats, err := r.GetUserStats(ctx, userID)
		if err != nil {
			return 0, err
		}
		return stats.TotalScoreAllTime, nil
	}

	startDate := windowStart(window, time.Now())
	var score int
	err := r.db.WithContext(ctx).Model(&model.ImpactActivity{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND points_state = ? AND created_at >= ?", userID, model.PointsActive, startDate).
		Scan(&score).Error
	return score, err
}

func (r *leaderboardRepository) CountUsersWithGreaterScore(ctx context.Context, window string, score int) (int64, error) {
	var count int64

	if window == "" || window == WindowAllTime {
		err := r.db.WithContext(ctx).Model(&model.UserStats{}).
			Where("total_score_all_time > ?", score).
			Count(&count).Error
		return count, err
	}

	startDate := windowStart(window, time.Now())
	err := r.db.WithContext(ctx).
		Table("(?) as window_scores",
			r.db.Model(&model.ImpactActivity{}).
				Select("user_id, SUM(points) as score").
				Where("points_state = ? AND created_at >= ?", model.PointsActive, startDate).
				Group("user_id"),
		).
		Where("score > ?", score).
		Count(&count).Error
	return count, err
}

func (r *leaderboardRepository) GetUserStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Zero stats for users with no activity yet
			return &model.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

func (r *leaderboardRepository) ResetPeriodScores(ctx context.Context, window string) error {
	column := "total_score_weekly"
	if window == WindowMonthly {
		column = "total_score_monthly"
	}
	return r.db.WithContext(ctx).Model(&model.UserStats{}).
		Where(column+" <> 0").
		Update(column, 0).Error
}
