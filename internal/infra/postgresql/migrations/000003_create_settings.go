package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A fresh catalog has no mail server and the placeholder site name, so self
// registration stays closed until an operator configures it.
var defaultSettings = []repository.SettingModel{
	{Name: domain.SettingMailServerHost, Value: ""},
	{Name: domain.SettingMailServerPort, Value: "25"},
	{Name: domain.SettingFeedbackEmail, Value: ""},
	{Name: domain.SettingSiteName, Value: domain.UnconfiguredSiteName},
	{Name: domain.SettingServerProtocol, Value: "http"},
	{Name: domain.SettingServerHost, Value: "localhost"},
	{Name: domain.SettingServerPort, Value: "8080"},
}

func createSettingsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_settings",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.SettingModel{}); err != nil {
				return err
			}

			settings := append([]repository.SettingModel(nil), defaultSettings...)
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SettingModel{})
		},
	}
}
