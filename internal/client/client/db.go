package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sentineliq/internal/client/migrations"
	"github.com/dmitrijs2005/sentineliq/internal/client/repositories/history"
	"github.com/dmitrijs2005/sentineliq/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the local stores used by the CLI.
type Repositories struct {
	Metadata metadata.Repository
	History  history.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		History:  history.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded migrations. It is safe to run on an
// already migrated database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	_, err = provider.Up(ctx)
	return err
}

// InitDatabase opens the SQLite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}
