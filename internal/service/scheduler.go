package service

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/salingbantu/impact-engine/internal/repository"
)

// RolloverScheduler owns the periodic jobs: weekly and monthly score resets
// and a periodic reward reindex into Meilisearch.
type RolloverScheduler struct {
	statsRepo repository.LeaderboardRepository
	search    RewardSearch
	sched     gocron.Scheduler
}

func NewRolloverScheduler(statsRepo repository.LeaderboardRepository, search RewardSearch) *RolloverScheduler {
	return &RolloverScheduler{
		statsRepo: statsRepo,
		search:    search,
	}
}

func (s *RolloverScheduler) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	// Monday 00:00: weekly scores roll over
	_, err = sched.NewJob(
		gocron.CronJob("0 0 * * 1", false),
		gocron.NewTask(func() {
			if err := s.statsRepo.ResetPeriodScores(context.Background(), repository.WindowWeekly); err != nil {
				log.Printf("[Scheduler] Failed to reset weekly scores: %v", err)
				return
			}
			log.Println("✅ Weekly scores reset")
		}),
	)
	if err != nil {
		return err
	}

	// First of the month 00:00: monthly scores roll over
	_, err = sched.NewJob(
		gocron.CronJob("0 0 1 * *", false),
		gocron.NewTask(func() {
			if err := s.statsRepo.ResetPeriodScores(context.Background(), repository.WindowMonthly); err != nil {
				log.Printf("[Scheduler] Failed to reset monthly scores: %v", err)
				return
			}
			log.Println("✅ Monthly scores reset")
		}),
	)
	if err != nil {
		return err
	}

	// Every 12 hours: refresh the reward search index from the catalog
	if s.search != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(12*time.Hour),
			gocron.NewTask(func() {
				if err := s.search.IndexAll(context.Background()); err != nil {
					log.Printf("[Scheduler] Failed to reindex rewards: %v", err)
				}
			}),
		)
		if err != nil {
			return err
		}
	}

	sched.Start()
	return nil
}

func (s *RolloverScheduler) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}
