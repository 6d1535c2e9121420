package bootstrap

import (
	"log"

	"github.com/salingbantu/impact-engine/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Profile{},
		&model.Organization{},
		&model.OrgMember{},
		&model.HelpPost{},
		&model.ImpactActivity{},
		&model.UserStats{},
		&model.ConfirmationRequest{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Reward{},
		&model.RedemptionTransaction{},
		&model.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Super administrator"},
		{Name: "member", Description: "Community member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// AchievementCatalog is the fixed set of achievements evaluated against the
// stats counters. SortOrder fixes the evaluation sequence.
func AchievementCatalog() []model.Achievement {
	return []model.Achievement{
		{Code: "first_help", Title: "First Help", Description: "Complete your first confirmed help", Rarity: "common", Metric: model.MetricHelpsCompleted, MaxProgress: 1, PointsReward: 10, SortOrder: 1},
		{Code: "helping_hand", Title: "Helping Hand", Description: "Complete 10 confirmed helps", Rarity: "rare", Metric: model.MetricHelpsCompleted, MaxProgress: 10, PointsReward: 50, SortOrder: 2},
		{Code: "neighborhood_hero", Title: "Neighborhood Hero", Description: "Complete 50 confirmed helps", Rarity: "epic", Metric: model.MetricHelpsCompleted, MaxProgress: 50, PointsReward: 200, SortOrder: 3},
		{Code: "first_responder", Title: "First Responder", Description: "Complete 5 emergency helps", Rarity: "epic", Metric: model.MetricEmergencyHelps, MaxProgress: 5, PointsReward: 100, SortOrder: 4},
		{Code: "generous_giver", Title: "Generous Giver", Description: "Make 10 donations", Rarity: "rare", Metric: model.MetricDonationsCount, MaxProgress: 10, PointsReward: 50, SortOrder: 5},
		{Code: "time_well_spent", Title: "Time Well Spent", Description: "Log 100 volunteer hours", Rarity: "epic", Metric: model.MetricVolunteerHours, MaxProgress: 100, PointsReward: 150, SortOrder: 6},
		{Code: "connector", Title: "Connector", Description: "Make 25 connections", Rarity: "common", Metric: model.MetricConnections, MaxProgress: 25, PointsReward: 25, SortOrder: 7},
		{Code: "busy_bee", Title: "Busy Bee", Description: "Record 100 activities", Rarity: "rare", Metric: model.MetricActivitiesCount, MaxProgress: 100, PointsReward: 75, SortOrder: 8},
		{Code: "point_millionaire", Title: "Point Collector", Description: "Earn 10000 points all time", Rarity: "legendary", Metric: model.MetricTotalScore, MaxProgress: 10000, PointsReward: 500, SortOrder: 9},
	}
}

// RewardCatalog seeds the redemption store for fresh deployments.
func RewardCatalog() []model.Reward {
	trusted := "trusted_helper"
	leader := "community_leader"
	stock50 := 50
	stock10 := 10
	return []model.Reward{
		{Title: "Community Sticker Pack", Description: "Digital sticker pack for your profile", Category: "digital", PointsCost: 50, Available: true},
		{Title: "Profile Badge", Description: "Exclusive supporter badge", Category: "digital", PointsCost: 150, Available: true},
		{Title: "Local Cafe Voucher", Description: "Coffee on us at a partner cafe", Category: "voucher", PointsCost: 500, Stock: &stock50, Available: true},
		{Title: "Community T-Shirt", Description: "Limited edition community t-shirt", Category: "merch", PointsCost: 1200, Stock: &stock10, RequiredTrustLevel: &trusted, Available: true},
		{Title: "Event VIP Pass", Description: "VIP access to the annual community event", Category: "event", PointsCost: 3000, Stock: &stock10, RequiredTrustLevel: &leader, Available: true},
	}
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@salingbantu.id").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@salingbantu.id",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	adminProfile := model.Profile{
		UserID:      adminUser.ID,
		DisplayName: "Administrator",
		Bio:         stringPtr("System Administrator"),
	}

	if err := db.Create(&adminProfile).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@salingbantu.id")
	log.Println("   Password: admin123")

	return nil
}

// SeedDevData creates an organization and a couple of help posts so the
// confirmation flow can be exercised on a development database.
func SeedDevData(db *gorm.DB) error {
	var admin model.User
	if err := db.Where("email = ?", "admin@salingbantu.id").First(&admin).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.Organization{}).
		Where("name = ?", "Saling Bantu Collective").
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	org := model.Organization{Name: "Saling Bantu Collective"}
	if err := db.Create(&org).Error; err != nil {
		return err
	}
	if err := db.Create(&model.OrgMember{OrgID: org.ID, UserID: admin.ID, Role: "admin"}).Error; err != nil {
		return err
	}

	posts := []model.HelpPost{
		{AuthorID: admin.ID, Title: "Need help moving furniture this weekend"},
		{AuthorID: admin.ID, Title: "Flood cleanup volunteers needed", Emergency: true},
	}
	for i := range posts {
		if err := db.Create(&posts[i]).Error; err != nil {
			return err
		}
	}

	log.Println("✅ Development data seeded successfully")
	return nil
}

func stringPtr(s string) *string {
	return &s
}
