package database

import "landmarket/server/internal/models"

func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Inquiry{},
		&models.ModerationEvent{},
	)
}
