package database

import (
	"jukebox/internal/models"
	"jukebox/pkg/logger"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.Artist{},
		&models.Album{},
		&models.Song{},
		&models.Playlist{},
		&models.PlaylistSong{},
		&models.PlaylistArtist{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}
