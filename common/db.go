package common

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func ConnectDb(dbFile string, log zerolog.Logger) (*gorm.DB, error) {
	if dbFile == "" {
		return nil, fmt.Errorf("sqlite database path not set")
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	log.Info().Str("path", dbFile).Msg("opened sqlite db")
	return db, nil
}
