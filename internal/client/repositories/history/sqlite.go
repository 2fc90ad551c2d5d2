package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
	"github.com/dmitrijs2005/sentineliq/internal/dbx"
)

// SQLiteRepository implements Repository on the prompt_history table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, prompt string, at time.Time, keep int) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO prompt_history (prompt, created_at) VALUES (?, ?)`,
			prompt, at.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert prompt: %w", err)
		}
		if keep <= 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM prompt_history
			WHERE id NOT IN (SELECT id FROM prompt_history ORDER BY id DESC LIMIT ?)
		`, keep)
		if err != nil {
			return fmt.Errorf("failed to trim prompt history: %w", err)
		}
		return nil
	})
}

// List returns up to limit prompts, newest first. limit <= 0 returns all.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.PromptRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, prompt, created_at FROM prompt_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select prompt history: %w", err)
	}
	defer rows.Close()

	result := []models.PromptRecord{}
	for rows.Next() {
		var (
			item models.PromptRecord
			ms   int64
		)
		if err := rows.Scan(&item.ID, &item.Prompt, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan prompt history row: %w", err)
		}
		item.CreatedAt = time.UnixMilli(ms).UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prompt history: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prompt_history`); err != nil {
		return fmt.Errorf("failed to clear prompt history: %w", err)
	}
	return nil
}
