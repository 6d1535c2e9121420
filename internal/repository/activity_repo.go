package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryAggregate is one row of the active-points breakdown.
type CategoryAggregate struct {
	Category   string
	Points     int
	Count      int
	LastEarned *time.Time
}

type ActivityRepository interface {
	// Create inserts the activity and, when it is born active, applies its
	// stat deltas in the same transaction. Returns false when the client's
	// idempotency key already exists; the stored row is left untouched.
	Create(ctx context.Context, activity *model.ImpactActivity) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ImpactActivity, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*model.ImpactActivity, error)
	Aggregate(ctx context.Context, userID uuid.UUID) ([]CategoryAggregate, error)
	// WeeklySkillHours sums hours a user logged for one skill over the
	// rolling window, counting pending entries so an unconfirmed backlog
	// cannot be used to overshoot the cap.
	WeeklySkillHours(ctx context.Context, userID uuid.UUID, skill string, since time.Time) (float64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ImpactActivity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *model.ImpactActivity) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idem_user_id"}, {Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(activity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Retry with a key we already honored
			return nil
		}
		created = true

		if activity.PointsState == model.PointsActive {
			return applyStatDeltas(tx, activity.UserID, DeltasForActivity(activity))
		}
		return nil
	})
	return created, err
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ImpactActivity, error) {
	var activity model.ImpactActivity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepository) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*model.ImpactActivity, error) {
	var activity model.ImpactActivity
	if err := r.db.WithContext(ctx).
		Where("idem_user_id = ? AND idempotency_key = ?", userID, key).
		First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepository) Aggregate(ctx context.Context, userID uuid.UUID) ([]CategoryAggregate, error) {
	var rows []CategoryAggregate
	err := r.db.WithContext(ctx).Model(&model.ImpactActivity{}).
		Select("category, SUM(points) as points, COUNT(*) as count, MAX(created_at) as last_earned").
		Where("user_id = ? AND points_state = ?", userID, model.PointsActive).
		Group("category").
		Order("points DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *activityRepository) WeeklySkillHours(ctx context.Context, userID uuid.UUID, skill string, since time.Time) (float64, error) {
	var hours float64
	err := r.db.WithContext(ctx).Model(&model.ImpactActivity{}).
		Select("COALESCE(SUM(hours_contributed), 0)").
		Where("user_id = ? AND category = ? AND skill = ? AND points_state <> ? AND created_at >= ?",
			userID, model.CategoryVolunteerWork, skill, model.PointsReversed, since).
		Scan(&hours).Error
	return hours, err
}

func (r *activityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ImpactActivity, error) {
	var activities []model.ImpactActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	return activities, err
}
