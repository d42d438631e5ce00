package config

import (
	"fmt"

	"github.com/andrewpaige1/mindmap-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens postgres when DBURL is set and a local sqlite file otherwise,
// then migrates the schema.
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DBURL != "" {
		dialector = postgres.Open(cfg.DBURL)
	} else {
		dialector = sqlite.Open(cfg.DBPath)
	}
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.SavedMindMap{}); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}
