package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	// ListCatalog returns the immutable catalog in declaration order.
	ListCatalog(ctx context.Context) ([]model.Achievement, error)
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)
	// InsertUnlock records an unlock at most once per (user, achievement);
	// a repeat insert reports false without error.
	InsertUnlock(ctx context.Context, userID uuid.UUID, achievementID uint, at time.Time) (bool, error)
	SeedCatalog(ctx context.Context, achievements []model.Achievement) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) ListCatalog(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).Order("sort_order asc").Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var unlocked []model.UserAchievement
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&unlocked).Error
	return unlocked, err
}

func (r *achievementRepository) InsertUnlock(ctx context.Context, userID uuid.UUID, achievementID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		UnlockedAt:    at,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *achievementRepository) SeedCatalog(ctx context.Context, achievements []model.Achievement) error {
	for _, a := range achievements {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Achievement{}).
			Where("code = ?", a.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
