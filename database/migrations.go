package database

import (
	"gorm.io/gorm"

	"helphive/models"
)

// Migrate runs AutoMigrate for every model the platform owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskHelper{},
		&models.SwapRequest{},
		&models.Review{},
		&models.CreditEntry{},
	)
}
