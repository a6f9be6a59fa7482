package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"gorm.io/gorm"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Group, error)
}

type UserGroupRepository interface {
	Create(ctx context.Context, ug *domain.UserGroup) error
	ListByUserID(ctx context.Context, userID int) ([]domain.UserGroup, error)
}

type GormGroupRepo struct {
	db *gorm.DB
}

func NewGormGroupRepo(db *gorm.DB) *GormGroupRepo {
	return &GormGroupRepo{db: db}
}

func (r *GormGroupRepo) GetByID(ctx context.Context, id int) (*domain.Group, error) {
	var model GroupModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return groupModelToDomain(&model), nil
}

type GormUserGroupRepo struct {
	db *gorm.DB
}

func NewGormUserGroupRepo(db *gorm.DB) *GormUserGroupRepo {
	return &GormUserGroupRepo{db: db}
}

func (r *GormUserGroupRepo) Create(ctx context.Context, ug *domain.UserGroup) error {
	if ug == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(&UserGroupModel{
		UserID:  ug.UserID,
		GroupID: ug.GroupID,
		Profile: ug.Profile,
	}).Error
}

func (r *GormUserGroupRepo) ListByUserID(ctx context.Context, userID int) ([]domain.UserGroup, error) {
	var models []UserGroupModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("group_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	memberships := make([]domain.UserGroup, 0, len(models))
	for _, m := range models {
		memberships = append(memberships, domain.UserGroup{
			UserID:  m.UserID,
			GroupID: m.GroupID,
			Profile: m.Profile,
		})
	}
	return memberships, nil
}
