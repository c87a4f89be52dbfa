package database

import (
	"github.com/cardvault/backend/internal/logger"
	"github.com/cardvault/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to SQLite and migrates the schema. TranslateError is on so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// achievement service relies on for idempotent awarding.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("path", dbPath).Msg("Database connected")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.CardCondition{},
		&models.Holding{},
		&models.CollectionSnapshot{},
		&models.Achievement{},
		&models.AchievementGrant{},
		&models.WishlistEntry{},
	); err != nil {
		return nil, err
	}

	if err := Seed(db); err != nil {
		return nil, err
	}

	logger.Info().Msg("Database migration completed")
	return db, nil
}
