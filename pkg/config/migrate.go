package config

import (
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// newMigrator builds a migrate instance against the live gorm connection.
// The source directory defaults to ./migrations and can be moved with
// MIGRATIONS_PATH.
func newMigrator() *migrate.Migrate {
	db, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get database connection:", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("Failed to create postgres driver:", err)
	}

	path := os.Getenv("MIGRATIONS_PATH")
	if path == "" {
		path = "migrations"
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		log.Fatal("Failed to create migrate instance:", err)
	}
	return m
}

// ExecuteMigrations runs all pending database migrations.
func ExecuteMigrations() {
	if err := newMigrator().Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database migrations completed successfully")
}

// RollbackMigration rolls back the last migration.
func RollbackMigration() {
	if err := newMigrator().Steps(-1); err != nil {
		log.Fatal("Failed to rollback migration:", err)
	}
	log.Println("Migration rolled back successfully")
}
