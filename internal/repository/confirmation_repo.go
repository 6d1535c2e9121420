package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfirmationRepository interface {
	// Create inserts the pending ledger entry and its confirmation request in
	// one transaction. Returns false when the activity's idempotency key was
	// already honored; the existing request is returned instead.
	Create(ctx context.Context, req *model.ConfirmationRequest, activity *model.ImpactActivity) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ConfirmationRequest, error)
	FindByActivityID(ctx context.Context, activityID uuid.UUID) (*model.ConfirmationRequest, error)
	ListBySubmitter(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ConfirmationRequest, error)
	ListPendingByScope(ctx context.Context, scopeType string, scopeID uuid.UUID) ([]model.ConfirmationRequest, error)
	// Review applies the pending -> terminal transition with compare-and-set
	// semantics: of two racing reviews exactly one wins, the loser gets
	// ErrAlreadyReviewed. Approval activates the underlying activity and
	// updates counters in the same transaction.
	Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, approve bool, feedback *string, rating *int) (*model.ConfirmationRequest, error)
}

type confirmationRepository struct {
	db *gorm.DB
}

func NewConfirmationRepository(db *gorm.DB) ConfirmationRepository {
	return &confirmationRepository{db: db}
}

func (r *confirmationRepository) Create(ctx context.Context, req *model.ConfirmationRequest, activity *model.ImpactActivity) (bool, error) {
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
			return nil
		}
		created = true

		req.ActivityID = activity.ID
		return tx.Create(req).Error
	})
	return created, err
}

func (r *confirmationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ConfirmationRequest, error) {
	var req model.ConfirmationRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *confirmationRepository) FindByActivityID(ctx context.Context, activityID uuid.UUID) (*model.ConfirmationRequest, error) {
	var req model.ConfirmationRequest
	if err := r.db.WithContext(ctx).Where("activity_id = ?", activityID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *confirmationRepository) ListBySubmitter(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ConfirmationRequest, error) {
	var reqs []model.ConfirmationRequest
	err := r.db.WithContext(ctx).
		Where("submitter_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&reqs).Error
	return reqs, err
}

func (r *confirmationRepository) ListPendingByScope(ctx context.Context, scopeType string, scopeID uuid.UUID) ([]model.ConfirmationRequest, error) {
	var reqs []model.ConfirmationRequest
	err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ? AND status = ?", scopeType, scopeID, model.ReviewPending).
		Order("created_at asc").
		Find(&reqs).Error
	return reqs, err
}

func (r *confirmationRepository) Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, approve bool, feedback *string, rating *int) (*model.ConfirmationRequest, error) {
	var reviewed model.ConfirmationRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status := model.ReviewRejected
		if approve {
			status = model.ReviewApproved
		}
		now := time.Now()

		// Conditional update guarded on pending: the losing racer affects 0 rows.
		res := tx.Model(&model.ConfirmationRequest{}).
			Where("id = ? AND status = ?", id, model.ReviewPending).
			Updates(map[string]interface{}{
				"status":      status,
				"feedback":    feedback,
				"rating":      rating,
				"reviewer_id": reviewerID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Where("id = ?", id).First(&model.ConfirmationRequest{}).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.ErrNotFound
				}
				return err
			}
			return apperror.ErrAlreadyReviewed
		}

		if err := tx.Where("id = ?", id).First(&reviewed).Error; err != nil {
			return err
		}

		var activity model.ImpactActivity
		if err := tx.Where("id = ?", reviewed.ActivityID).First(&activity).Error; err != nil {
			return err
		}

		if approve {
			// Flip pending points to active and verified as one unit with the
			// review; no observable half-confirmed state.
			flip := tx.Model(&model.ImpactActivity{}).
				Where("id = ? AND points_state = ?", activity.ID, model.PointsPending).
				Updates(map[string]interface{}{
					"points_state":   model.PointsActive,
					"verified":       true,
					"confirm_status": model.ConfirmationConfirmed,
				})
			if flip.Error != nil {
				return flip.Error
			}
			if flip.RowsAffected == 0 {
				return apperror.ErrAlreadyReviewed
			}
			return applyStatDeltas(tx, activity.UserID, DeltasForActivity(&activity))
		}

		return tx.Model(&model.ImpactActivity{}).
			Where("id = ? AND points_state = ?", activity.ID, model.PointsPending).
			Updates(map[string]interface{}{
				"points_state":   model.PointsReversed,
				"confirm_status": model.ConfirmationRejected,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &reviewed, nil
}
