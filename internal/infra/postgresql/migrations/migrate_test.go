package migrations

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMigratedDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateSeedsReservedGroups(t *testing.T) {
	t.Parallel()

	db := newMigratedDB(t, "migrate_groups")
	groups := repository.NewGormGroupRepo(db)

	for _, reserved := range []domain.ReservedGroup{
		domain.ReservedGroupAll,
		domain.ReservedGroupIntranet,
		domain.ReservedGroupGuest,
	} {
		group, err := groups.GetByID(context.Background(), reserved.ID())
		require.NoError(t, err, "group %s", reserved)
		require.Equal(t, reserved.String(), group.Name)
	}
}

func TestMigrateSeedsUnconfiguredSite(t *testing.T) {
	t.Parallel()

	db := newMigratedDB(t, "migrate_settings")
	settings := repository.NewGormSettingRepo(db)

	name, err := settings.Get(context.Background(), domain.SettingSiteName)
	require.NoError(t, err)
	require.Equal(t, domain.UnconfiguredSiteName, name)

	host, err := settings.Get(context.Background(), domain.SettingMailServerHost)
	require.NoError(t, err)
	require.Empty(t, host)
}

func TestMigrateSeedsLanguages(t *testing.T) {
	t.Parallel()

	db := newMigratedDB(t, "migrate_languages")

	languages, err := repository.NewGormLanguageRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, languages, 4)

	codes := make([]string, 0, len(languages))
	for _, l := range languages {
		codes = append(codes, l.Code)
	}
	require.Equal(t, []string{"eng", "fre", "ger", "spa"}, codes)
	require.Equal(t, "Deutsch", languages[2].Label("ger"))
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newMigratedDB(t, "migrate_twice")
	require.NoError(t, Migrate(db))

	var groups int64
	require.NoError(t, db.Model(&repository.GroupModel{}).Count(&groups).Error)
	require.EqualValues(t, 3, groups)
}
