package database

import (
	"picstream/internal/models"

	"gorm.io/gorm"
)

// AllModels returns every model registered for auto-migration, in an order
// that satisfies foreign key dependencies.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.SavedPost{},
	}
}

// Migrate runs GORM auto-migration for all registered models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
