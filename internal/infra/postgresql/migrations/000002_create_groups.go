package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"gorm.io/gorm"
)

var reservedGroups = []repository.GroupModel{
	{ID: domain.ReservedGroupAll.ID(), Name: domain.ReservedGroupAll.String(), Description: "All users"},
	{ID: domain.ReservedGroupIntranet.ID(), Name: domain.ReservedGroupIntranet.String(), Description: "Intranet users"},
	{ID: domain.ReservedGroupGuest.ID(), Name: domain.ReservedGroupGuest.String(), Description: "Self registered and anonymous users"},
}

func createGroupsTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_groups",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.GroupModel{}, &repository.UserGroupModel{}); err != nil {
				return err
			}
			if err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_user_groups_group_id ON user_groups (group_id)`).Error; err != nil {
				return err
			}

			// Raw inserts: gorm would treat the intranet id 0 as unset.
			for _, g := range reservedGroups {
				err := tx.Exec(
					`INSERT INTO "groups" (id, name, description, email) VALUES (?, ?, ?, '') ON CONFLICT DO NOTHING`,
					g.ID, g.Name, g.Description,
				).Error
				if err != nil {
					return err
				}
			}

			// Explicit ids leave the serial sequence behind.
			if isPostgres(tx) {
				return tx.Exec(`SELECT setval(pg_get_serial_sequence('groups', 'id'), (SELECT GREATEST(MAX(id), 1) FROM "groups"))`).Error
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.UserGroupModel{}, &repository.GroupModel{})
		},
	}
}
