package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, name string) (string, error)
	GetMany(ctx context.Context, names []string) (map[string]string, error)
	List(ctx context.Context) ([]domain.Setting, error)
	Set(ctx context.Context, name string, value string) error
}

type GormSettingRepo struct {
	db *gorm.DB
}

func NewGormSettingRepo(db *gorm.DB) *GormSettingRepo {
	return &GormSettingRepo{db: db}
}

func (r *GormSettingRepo) Get(ctx context.Context, name string) (string, error) {
	var model SettingModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.Value, nil
}

// GetMany returns the values of the requested settings. Names without a row
// are absent from the result.
func (r *GormSettingRepo) GetMany(ctx context.Context, names []string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	if len(names) == 0 {
		return values, nil
	}

	var models []SettingModel
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		values[m.Name] = m.Value
	}
	return values, nil
}

func (r *GormSettingRepo) List(ctx context.Context) ([]domain.Setting, error) {
	var models []SettingModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	settings := make([]domain.Setting, 0, len(models))
	for _, m := range models {
		settings = append(settings, domain.Setting{Name: m.Name, Value: m.Value})
	}
	return settings, nil
}

func (r *GormSettingRepo) Set(ctx context.Context, name string, value string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&SettingModel{Name: name, Value: value}).Error
}
