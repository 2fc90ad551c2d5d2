// Package metadata stores small client preferences as key/value pairs.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyLastUsername = "last_username"
	KeyLastInbox    = "last_inbox"
)

type Repository interface {
	// Get returns ok=false when key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
