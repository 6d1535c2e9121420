package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RewardRepository interface {
	ListAvailable(ctx context.Context) ([]model.Reward, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reward, error)
	// Redeem runs the whole success path as one transaction: idempotent
	// transaction insert, conditional balance debit, conditional stock
	// decrement. Any failing guard rolls back the rest.
	Redeem(ctx context.Context, txn *model.RedemptionTransaction, reward *model.Reward) (*model.RedemptionTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.RedemptionTransaction, error)
	SeedCatalog(ctx context.Context, rewards []model.Reward) error
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) ListAvailable(ctx context.Context) ([]model.Reward, error) {
	var rewards []model.Reward
	err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("points_cost asc").
		Find(&rewards).Error
	return rewards, err
}

func (r *rewardRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reward, error) {
	var reward model.Reward
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &reward, nil
}

func (r *rewardRepository) Redeem(ctx context.Context, txn *model.RedemptionTransaction, reward *model.Reward) (*model.RedemptionTransaction, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotent retry: a transaction with the same client key already
		// exists, return it without touching stock or balance again.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idem_user_id"}, {Name: "idempotency_key"}},
			DoNothing: true,
		}).Create(txn)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Where("idem_user_id = ? AND idempotency_key = ?", txn.UserID, txn.IdempotencyKey).
				First(txn).Error
		}

		// Conditional balance debit: fails when a concurrent redemption
		// already spent the points this one counted on.
		debit := tx.Model(&model.UserStats{}).
			Where("user_id = ? AND total_score_all_time - points_spent >= ?", txn.UserID, txn.PointsSpent).
			Update("points_spent", gorm.Expr("points_spent + ?", txn.PointsSpent))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return apperror.ErrInsufficientBalance
		}

		// Conditional stock decrement; nil stock means unlimited.
		if reward.Stock != nil {
			dec := tx.Model(&model.Reward{}).
				Where("id = ? AND stock > 0", reward.ID).
				Update("stock", gorm.Expr("stock - 1"))
			if dec.Error != nil {
				return dec.Error
			}
			if dec.RowsAffected == 0 {
				return apperror.ErrOutOfStock
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *rewardRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.RedemptionTransaction, error) {
	var txns []model.RedemptionTransaction
	err := r.db.WithContext(ctx).
		Preload("Reward").
		Where("user_id = ?", userID).
		Order("redeemed_at desc").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	return txns, err
}

func (r *rewardRepository) SeedCatalog(ctx context.Context, rewards []model.Reward) error {
	for _, reward := range rewards {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Reward{}).
			Where("title = ?", reward.Title).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := r.db.WithContext(ctx).Create(&reward).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
