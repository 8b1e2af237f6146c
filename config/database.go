package config

import (
	"fmt"

	"github.com/ye11ow-banana/main-be/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func InitDB(cfg DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate enables the text-search extensions the product matcher relies
// on, migrates every table and creates the trigram index on product names.
func Migrate(db *gorm.DB) error {
	for _, stmt := range []string{
		`CREATE EXTENSION IF NOT EXISTS pg_trgm;`,
		`CREATE EXTENSION IF NOT EXISTS fuzzystrmatch;`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("enable extension: %w", err)
		}
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.VerificationCode{},
		&models.UserDevice{},
		&models.Product{},
		&models.Day{},
		&models.DayProduct{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return db.Exec(`CREATE INDEX IF NOT EXISTS ix_products_name_trgm ON products USING gin (lower(name) gin_trgm_ops);`).Error
}
