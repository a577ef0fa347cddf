package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded migrations to a Postgres database.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}

// UpStatements returns the statements of every up migration in version order.
func UpStatements() ([]string, error) {
	names, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var statements []string
	for _, name := range names {
		body, err := fs.ReadFile(embeddedMigrations, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		for _, stmt := range strings.Split(string(body), ";") {
			if stmt = strings.TrimSpace(stmt); stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}
	return statements, nil
}

// ApplySchema executes the up migrations statement by statement. It serves
// SQLite, which golang-migrate's Postgres driver cannot target. Every
// statement is idempotent.
func ApplySchema(conn *gorm.DB) error {
	statements, err := UpStatements()
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
