package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/model"
	"github.com/salingbantu/impact-engine/pkg/apperror"
	"gorm.io/gorm"
)

type OrgRepository interface {
	IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
	FindPost(ctx context.Context, postID uuid.UUID) (*model.HelpPost, error)
	FindOrganization(ctx context.Context, orgID uuid.UUID) (*model.Organization, error)
}

type orgRepository struct {
	db *gorm.DB
}

func NewOrgRepository(db *gorm.DB) OrgRepository {
	return &orgRepository{db: db}
}

func (r *orgRepository) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrgMember{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *orgRepository) FindPost(ctx context.Context, postID uuid.UUID) (*model.HelpPost, error) {
	var post model.HelpPost
	if err := r.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *orgRepository) FindOrganization(ctx context.Context, orgID uuid.UUID) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", orgID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}
