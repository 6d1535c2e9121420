package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/salingbantu/impact-engine/internal/bootstrap"
	"github.com/salingbantu/impact-engine/internal/config"
	"github.com/salingbantu/impact-engine/internal/repository"
	"github.com/salingbantu/impact-engine/internal/server"
	"github.com/salingbantu/impact-engine/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	ctx := context.Background()
	if err := repository.NewAchievementRepository(db).SeedCatalog(ctx, bootstrap.AchievementCatalog()); err != nil {
		log.Fatalf("failed to seed achievement catalog: %v", err)
	}
	if err := repository.NewRewardRepository(db).SeedCatalog(ctx, bootstrap.RewardCatalog()); err != nil {
		log.Fatalf("failed to seed reward catalog: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		if err := bootstrap.SeedDevData(db); err != nil {
			log.Fatalf("failed to seed development data: %v", err)
		}
	}

	redisClient := connectRedis(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)
	defer srv.Shutdown()

	log.Printf("Listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// engine then falls back to in-process rate limiting and skips pub/sub fanout.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without Redis")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: invalid REDIS_URL, running without Redis: %v", err)
		return nil
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("WARNING: redis unreachable, running without Redis: %v", err)
		return nil
	}

	return client
}
