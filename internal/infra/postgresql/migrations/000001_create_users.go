package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"gorm.io/gorm"
)

func createUsersTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_users",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&repository.UserModel{},
				&repository.UserEmailModel{},
				&repository.UserAddressModel{},
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&repository.UserAddressModel{},
				&repository.UserEmailModel{},
				&repository.UserModel{},
			)
		},
	}
}
