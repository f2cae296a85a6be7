package ports

//go:generate mockgen -source=provider.go -destination=../../mocks/mock_provider.go -package=mocks

import (
	"context"
	"errors"

	"currency-viewer/internal/domain/model"
)

var (
	ErrInvalidCode         = errors.New("provider rejected currency code")
	ErrUpstreamUnavailable = errors.New("provider unavailable")
)

// RateProvider fetches rates against USD from the upstream data provider.
type RateProvider interface {
	FetchLatest(ctx context.Context, code string) (*model.LatestRateResult, error)
	FetchHistorical(ctx context.Context, code string) (model.HistoricalSeries, error)
}
