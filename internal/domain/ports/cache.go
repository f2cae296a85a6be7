package ports

import (
	"context"

	"currency-viewer/internal/domain/model"
)

// ResultCache is the server-side cache keyed by model.CacheKey(query, model.ServerTier).
type ResultCache interface {
	Get(ctx context.Context, key string) (*model.CacheEntry, bool)
	Set(ctx context.Context, key string, result *model.Result)
	Len() int
	Purge()
}
