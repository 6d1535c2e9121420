package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/internal/repository"
	"github.com/salingbantu/impact-engine/pkg/apperror"
)

const DefaultLeaderboardSize = 50

type LeaderboardService interface {
	// GetLeaderboard returns the ranked window plus the requester's own rank,
	// computed even when they fall outside the visible page.
	GetLeaderboard(ctx context.Context, requesterID uuid.UUID, window string, limit int) (*dto.LeaderboardResponse, error)
	GetTrustStatus(ctx context.Context, userID uuid.UUID) (*dto.TrustStatus, error)
}

type leaderboardService struct {
	repo repository.LeaderboardRepository
}

func NewLeaderboardService(repo repository.LeaderboardRepository) LeaderboardService {
	return &leaderboardService{repo: repo}
}

func validWindow(window string) bool {
	switch window {
	case "", repository.WindowWeekly, repository.WindowMonthly, repository.WindowAllTime:
		return true
	}
	return false
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, requesterID uuid.UUID, window string, limit int) (*dto.LeaderboardResponse, error) {
	if !validWindow(window) {
		return nil, fmt.Errorf("%w: unknown leaderboard window %q", apperror.ErrInvalidInput, window)
	}
	if window == "" {
		window = repository.WindowAllTime
	}
	if limit <= 0 || limit > DefaultLeaderboardSize {
		limit = DefaultLeaderboardSize
	}

	stats, err := s.repo.GetTopUsers(ctx, limit, window)
	if err != nil {
		return nil, err
	}

	resp := &dto.LeaderboardResponse{
		Window:  window,
		Entries: make([]dto.LeaderboardEntry, 0, len(stats)),
	}

	requesterRank := 0
	for i := range stats {
		entry := s.toEntry(&stats[i], window, i+1)
		if stats[i].UserID == requesterID {
			requesterRank = entry.Rank
		}
		resp.Entries = append(resp.Entries, entry)
	}

	if requesterRank == 0 {
		requesterRank, err = s.rankOf(ctx, requesterID, window)
		if err != nil {
			return nil, err
		}
	}
	resp.RequesterRank = requesterRank

	return resp, nil
}

// rankOf computes a rank without sorting the whole board: one more than the
// number of users with a strictly greater score. Ties share a rank.
func (s *leaderboardService) rankOf(ctx context.Context, userID uuid.UUID, window string) (int, error) {
	score, err := s.repo.WindowScore(ctx, userID, window)
	if err != nil {
		return 0, err
	}
	greater, err := s.repo.CountUsersWithGreaterScore(ctx, window, score)
	if err != nil {
		return 0, err
	}
	return int(greater) + 1, nil
}

func (s *leaderboardService) toEntry(stats *model.UserStats, window string, rank int) dto.LeaderboardEntry {
	periodScore := stats.TotalScoreAllTime
	switch window {
	case repository.WindowWeekly:
		periodScore = stats.TotalScoreWeekly
	case repository.WindowMonthly:
		periodScore = stats.TotalScoreMonthly
	}

	entry := dto.LeaderboardEntry{
		UserID:      stats.UserID.String(),
		DisplayName: stats.User.Username,
		AvatarURL:   stats.User.AvatarURL,
		Score:       stats.TotalScoreAllTime,
		PeriodScore: periodScore,
		Rank:        rank,
		TrustStatus: TrustStatusFor(TrustScore(stats)),
	}
	if stats.User.Profile != nil && stats.User.Profile.DisplayName != "" {
		entry.DisplayName = stats.User.Profile.DisplayName
	}
	return entry
}

func (s *leaderboardService) GetTrustStatus(ctx context.Context, userID uuid.UUID) (*dto.TrustStatus, error) {
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	status := TrustStatusFor(TrustScore(stats))
	return &status, nil
}
