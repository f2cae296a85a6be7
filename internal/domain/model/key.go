package model

import "fmt"

// KeyTier selects the key layout used by a caching tier.
type KeyTier int

const (
	ServerTier KeyTier = iota
	ClientTier
)

// CacheKey derives the lookup key for a query. Both tiers key historical queries as
// CODE_start_end; for latest-rate queries the server uses CODE_latest_ and the client CODE_latest.
func CacheKey(q CurrencyQuery, tier KeyTier) string {
	q = q.Normalize()

	if tier == ClientTier {
		if q.IsHistorical() {
			return fmt.Sprintf("%s_%s_%s", q.CurrencyCode, q.StartDate, q.EndDate)
		}
		return q.CurrencyCode + "_latest"
	}

	start := q.StartDate
	if start == "" {
		start = "latest"
	}
	return fmt.Sprintf("%s_%s_%s", q.CurrencyCode, start, q.EndDate)
}
