// Package sqlstore implements the repositories on PostgreSQL through GORM.
package sqlstore

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kenolive/internal/repository"
)

// Open connects to dsn and migrates the schema
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the store uses
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&playerRow{},
		&roomRow{},
		&roomPlayerRow{},
		&matchRow{},
		&betRow{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// New wires every repository to db
func New(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Rooms:   &roomRepo{db: db},
		Players: &playerRepo{db: db},
		Matches: &matchRepo{db: db},
		Bets:    &betRepo{db: db},
	}
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
