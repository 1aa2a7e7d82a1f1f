package ports

import "context"

// StatusCache fronts the hot status-poll read. Implementations are
// best-effort: a miss or a cache failure falls through to the store.
type StatusCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
