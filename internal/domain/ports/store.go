package ports

import "context"

// KeyValueStore is the client-side persistent store. Values are opaque JSON strings.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
