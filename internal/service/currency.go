package service

import (
	"context"
	"errors"
	"fmt"

	"currency-viewer/internal/domain/model"
	"currency-viewer/internal/domain/ports"
	"currency-viewer/pkg/logger"
	"currency-viewer/pkg/utils"
)

var (
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	ErrNoDataInRange       = errors.New("no data in date range")
	ErrUpstreamFailure     = errors.New("upstream failure")
)

type CurrencyService struct {
	provider ports.RateProvider
	cache    ports.ResultCache
	log      *logger.Logger
}

func NewCurrencyService(provider ports.RateProvider, cache ports.ResultCache, log *logger.Logger) *CurrencyService {
	return &CurrencyService{
		provider: provider,
		cache:    cache,
		log:      log,
	}
}

// FetchCurrency answers a query from the server cache when possible and otherwise asks the
// provider, caching only successful results.
func (s *CurrencyService) FetchCurrency(ctx context.Context, query model.CurrencyQuery) (*model.Result, error) {
	query = query.Normalize()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	key := model.CacheKey(query, model.ServerTier)
	if entry, found := s.cache.Get(ctx, key); found {
		s.log.Info("Currency data found in cache", "key", key)
		return entry.Result, nil
	}

	var (
		result *model.Result
		err    error
	)
	if query.IsHistorical() {
		result, err = s.fetchHistorical(ctx, query)
	} else {
		result, err = s.fetchLatest(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, result)
	return result, nil
}

func (s *CurrencyService) fetchLatest(ctx context.Context, query model.CurrencyQuery) (*model.Result, error) {
	s.log.Info("Fetching latest rate from provider", "currency", query.CurrencyCode)

	rate, err := s.provider.FetchLatest(ctx, query.CurrencyCode)
	if err != nil {
		return nil, s.providerError(err, query)
	}

	return &model.Result{Latest: rate}, nil
}

func (s *CurrencyService) fetchHistorical(ctx context.Context, query model.CurrencyQuery) (*model.Result, error) {
	s.log.Info("Fetching daily series from provider", "currency", query.CurrencyCode, "start", query.StartDate, "end", query.EndDate)

	series, err := s.provider.FetchHistorical(ctx, query.CurrencyCode)
	if err != nil {
		return nil, s.providerError(err, query)
	}

	filtered, err := filterSeries(series, query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		s.log.Info("No rows in requested range", "query", query.String(), "available", len(series))
		return nil, ErrNoDataInRange
	}

	return &model.Result{Historical: filtered}, nil
}

func (s *CurrencyService) providerError(err error, query model.CurrencyQuery) error {
	s.log.Error("Provider request failed", "error", err, "query", query.String())

	if errors.Is(err, ports.ErrInvalidCode) {
		return fmt.Errorf("%w: %v", ErrInvalidCurrencyCode, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
}

// filterSeries keeps the rows dated within [start, end], comparing parsed calendar days.
// Rows whose date cannot be parsed are dropped.
func filterSeries(series model.HistoricalSeries, start, end string) (model.HistoricalSeries, error) {
	startDate, err := utils.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidDate, err)
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidDate, err)
	}

	filtered := make(model.HistoricalSeries)
	for date, rate := range series {
		day, err := utils.ParseFlexibleDate(date)
		if err != nil {
			continue
		}
		if utils.WithinRange(day, startDate, endDate) {
			filtered[date] = rate
		}
	}
	return filtered, nil
}
