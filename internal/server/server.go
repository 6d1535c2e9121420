package server

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/salingbantu/impact-engine/internal/config"
	"github.com/salingbantu/impact-engine/internal/handler"
	"github.com/salingbantu/impact-engine/internal/middleware"
	"github.com/salingbantu/impact-engine/internal/repository"
	"github.com/salingbantu/impact-engine/internal/service"
	"github.com/salingbantu/impact-engine/pkg/storage"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *service.RolloverScheduler
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	confirmationRepo := repository.NewConfirmationRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	orgRepo := repository.NewOrgRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("WARNING: cloudinary storage unavailable, avatar uploads disabled: %v", err)
		imageStorage = nil
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	rewardSearch := service.NewRewardSearch(meiliClient, rewardRepo)

	rateLimiter := service.NewRateLimiter(redisClient, cfg.RateLimitMaxAttempts, cfg.RateLimitWindow)

	notificationService := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationService, redisClient)

	authService := service.NewAuthService(userRepo, imageStorage)
	authHandler := handler.NewAuthHandler(authService)

	profileService := service.NewProfileService(userRepo, imageStorage)
	profileHandler := handler.NewProfileHandler(profileService)

	achievementService := service.NewAchievementService(achievementRepo, leaderboardRepo, activityRepo, notificationService)
	achievementHandler := handler.NewAchievementHandler(achievementService)

	activityService := service.NewActivityService(
		activityRepo, leaderboardRepo, rateLimiter, achievementService, notificationService,
		cfg.SkillConversionRate, cfg.WeeklyHoursCap,
	)
	activityHandler := handler.NewActivityHandler(activityService, rateLimiter)

	confirmationService := service.NewConfirmationService(
		confirmationRepo, activityRepo, orgRepo, rateLimiter, achievementService, notificationService,
		cfg.SkillConversionRate, cfg.WeeklyHoursCap,
	)
	confirmationHandler := handler.NewConfirmationHandler(confirmationService)

	leaderboardService := service.NewLeaderboardService(leaderboardRepo)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)

	redemptionService := service.NewRedemptionService(rewardRepo, leaderboardRepo, rateLimiter, notificationService, rewardSearch)
	redemptionHandler := handler.NewRedemptionHandler(redemptionService, rewardSearch)

	scheduler := service.NewRolloverScheduler(leaderboardRepo, rewardSearch)
	if err := scheduler.Start(); err != nil {
		log.Printf("WARNING: failed to start rollover scheduler: %v", err)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Activity ledger
		protected.POST("/activities", activityHandler.RecordActivity)
		protected.GET("/activities", activityHandler.ListActivities)
		protected.GET("/points/breakdown", activityHandler.GetPointsBreakdown)
		protected.GET("/rate-limit/:operation", activityHandler.GetRateLimitStatus)

		// Confirmation workflow
		protected.POST("/confirmations", confirmationHandler.SubmitClaim)
		protected.GET("/confirmations/mine", confirmationHandler.ListMine)
		protected.GET("/confirmations/pending", confirmationHandler.ListPending)
		protected.PUT("/confirmations/:id/review", confirmationHandler.ReviewClaim)
		protected.PUT("/confirmations/:id/quick-approve", confirmationHandler.QuickApprove)

		// Leaderboard and trust
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/trust-level", leaderboardHandler.GetTrustLevel)
		protected.GET("/trust-status", leaderboardHandler.GetTrustStatus)

		// Achievements
		protected.GET("/achievements", achievementHandler.ListAchievements)

		// Redemption store
		protected.GET("/rewards", redemptionHandler.ListRewards)
		protected.GET("/rewards/search", redemptionHandler.SearchRewards)
		protected.POST("/rewards/:id/redeem", redemptionHandler.Redeem)
		protected.GET("/redemptions", redemptionHandler.ListTransactions)

		// Profile
		protected.GET("/profile/me", profileHandler.GetProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		// Notifications
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   scheduler,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) Shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
