package history

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sentineliq/internal/client/models"
)

type Repository interface {
	// Append stores prompt and keeps at most keep rows. keep <= 0 disables
	// trimming.
	Append(ctx context.Context, prompt string, at time.Time, keep int) error
	List(ctx context.Context, limit int) ([]models.PromptRecord, error)
	Clear(ctx context.Context) error
}
