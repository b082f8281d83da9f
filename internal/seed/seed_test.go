package seed

import (
	"testing"

	"picstream/internal/database"
	"picstream/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestSeederRun(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	opts := Options{Users: 10, Posts: 30, Clean: true, Password: "password123"}
	require.NoError(t, s.Run(opts))

	var userCount, postCount, followCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Follow{}).Count(&followCount)

	assert.EqualValues(t, 10, userCount)
	assert.EqualValues(t, 30, postCount)
	assert.NotZero(t, followCount, "the follow mesh should produce edges")

	// No self-follows in the mesh.
	var selfFollows int64
	db.Model(&models.Follow{}).Where("follower_id = followee_id").Count(&selfFollows)
	assert.Zero(t, selfFollows)
}

func TestSeederClearAll(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)
	require.NoError(t, s.Run(Options{Users: 5, Posts: 10, Clean: false, Password: "password123"}))

	require.NoError(t, s.ClearAll())

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Zero(t, userCount)
}
