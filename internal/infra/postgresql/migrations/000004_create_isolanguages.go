package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"gorm.io/gorm"
)

func seedLanguages() []repository.IsoLanguageModel {
	labels := func(eng, fre, ger, spa string) []repository.IsoLanguageLabelModel {
		return []repository.IsoLanguageLabelModel{
			{LangID: "eng", Label: eng},
			{LangID: "fre", Label: fre},
			{LangID: "ger", Label: ger},
			{LangID: "spa", Label: spa},
		}
	}

	return []repository.IsoLanguageModel{
		{Code: "eng", ShortCode: "en", Labels: labels("English", "Anglais", "Englisch", "Inglés")},
		{Code: "fre", ShortCode: "fr", Labels: labels("French", "Français", "Französisch", "Francés")},
		{Code: "ger", ShortCode: "de", Labels: labels("German", "Allemand", "Deutsch", "Alemán")},
		{Code: "spa", ShortCode: "es", Labels: labels("Spanish", "Espagnol", "Spanisch", "Español")},
	}
}

func createIsoLanguagesTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_isolanguages",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.IsoLanguageModel{}, &repository.IsoLanguageLabelModel{}); err != nil {
				return err
			}

			languages := seedLanguages()
			return tx.Create(&languages).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return execAll(tx, []string{
				`DROP TABLE IF EXISTS isolanguagesdes`,
				`DROP TABLE IF EXISTS isolanguages`,
			})
		},
	}
}
