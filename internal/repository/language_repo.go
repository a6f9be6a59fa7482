package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"gorm.io/gorm"
)

type LanguageRepository interface {
	List(ctx context.Context) ([]domain.IsoLanguage, error)
	GetByCode(ctx context.Context, code string) (*domain.IsoLanguage, error)
}

type GormLanguageRepo struct {
	db *gorm.DB
}

func NewGormLanguageRepo(db *gorm.DB) *GormLanguageRepo {
	return &GormLanguageRepo{db: db}
}

func (r *GormLanguageRepo) List(ctx context.Context) ([]domain.IsoLanguage, error) {
	var models []IsoLanguageModel
	err := r.db.WithContext(ctx).
		Preload("Labels").
		Order("code ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	languages := make([]domain.IsoLanguage, 0, len(models))
	for i := range models {
		languages = append(languages, *isoLanguageModelToDomain(&models[i]))
	}
	return languages, nil
}

func (r *GormLanguageRepo) GetByCode(ctx context.Context, code string) (*domain.IsoLanguage, error) {
	var model IsoLanguageModel
	err := r.db.WithContext(ctx).
		Preload("Labels").
		First(&model, "code = ?", strings.ToLower(strings.TrimSpace(code))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return isoLanguageModelToDomain(&model), nil
}
