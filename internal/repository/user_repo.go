package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type GormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{db: db}
}

// Create inserts the user row, then its email addresses and postal addresses.
// Children are inserted explicitly so that a unique violation on an email
// address surfaces as an error instead of being swallowed by gorm's
// association upsert.
func (r *GormUserRepo) Create(ctx context.Context, u *domain.User) error {
	model := userModelFromDomain(u)
	if model == nil {
		return nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}

	for i := range model.EmailAddresses {
		model.EmailAddresses[i].UserID = model.ID
	}
	if len(model.EmailAddresses) > 0 {
		if err := db.Create(&model.EmailAddresses).Error; err != nil {
			return err
		}
	}

	for i := range model.Addresses {
		model.Addresses[i].UserID = model.ID
	}
	if len(model.Addresses) > 0 {
		if err := db.Create(&model.Addresses).Error; err != nil {
			return err
		}
	}

	*u = *userModelToDomain(model)
	return nil
}

func (r *GormUserRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx).Where("users.id = ?", id))
}

func (r *GormUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	query := r.db.WithContext(ctx).
		Joins("JOIN email_addresses ON email_addresses.user_id = users.id").
		Where("email_addresses.email = ?", email)
	return r.first(query)
}

func (r *GormUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(r.db.WithContext(ctx).Where("users.username = ?", strings.TrimSpace(username)))
}

func (r *GormUserRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormUserRepo) first(query *gorm.DB) (*domain.User, error) {
	var model UserModel
	err := query.
		Preload("EmailAddresses").
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("users.id ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return userModelToDomain(&model), nil
}
