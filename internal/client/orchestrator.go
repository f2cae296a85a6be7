package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"currency-viewer/internal/domain/model"
	"currency-viewer/internal/domain/ports"
	"currency-viewer/pkg/logger"
)

// MostRecentKey holds the last successful result so a new session can restore it.
const MostRecentKey = "currencyData"

const (
	msgEnterCode        = "Please enter a currency code."
	msgEnterDates       = "Please enter both start and end dates."
	msgLatestFallback   = "Invalid currency code or failed to fetch data."
	msgHistoricFallback = "Failed to fetch historical data."
	msgNoHistoricalRows = "No historical data found for the provided date range."
)

const defaultErrorTimeout = 2 * time.Second

// State is what the presentation layer renders.
type State struct {
	Loading bool
	Error   string
	Result  *model.Result
}

type Option func(*Orchestrator)

// WithErrorTimeout sets how long an error stays visible. Zero keeps errors until DismissError.
func WithErrorTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.errorTimeout = d
	}
}

// Orchestrator answers searches from the persistent store when it can and from the proxy
// otherwise. It never returns errors; failures surface through State.Error.
type Orchestrator struct {
	fetcher ports.CurrencyService
	store   ports.KeyValueStore
	log     *logger.Logger

	errorTimeout time.Duration

	mu         sync.Mutex
	state      State
	observers  []func(State)
	errorTimer *time.Timer
}

func NewOrchestrator(fetcher ports.CurrencyService, store ports.KeyValueStore, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:      fetcher,
		store:        store,
		log:          log,
		errorTimeout: defaultErrorTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnChange registers fn to be called with a snapshot after every state change.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) DismissError() {
	o.update(func(s *State) {
		s.Error = ""
	})
}

// Restore surfaces the most recent successful result from a previous session, if any.
func (o *Orchestrator) Restore(ctx context.Context) {
	result, found := o.lookup(ctx, MostRecentKey)
	if !found {
		return
	}
	o.update(func(s *State) {
		s.Result = result
	})
}

func (o *Orchestrator) SearchLatest(ctx context.Context, code string) {
	query := model.NewCurrencyQuery(code, "", "")
	if query.CurrencyCode == "" {
		o.fail(msgEnterCode)
		return
	}
	o.search(ctx, query, msgLatestFallback)
}

func (o *Orchestrator) SearchHistorical(ctx context.Context, query model.CurrencyQuery) {
	query = query.Normalize()
	if query.CurrencyCode == "" {
		o.fail(msgEnterCode)
		return
	}
	if !query.IsHistorical() {
		o.fail(msgEnterDates)
		return
	}
	o.search(ctx, query, msgHistoricFallback)
}

func (o *Orchestrator) search(ctx context.Context, query model.CurrencyQuery, fallback string) {
	key := model.CacheKey(query, model.ClientTier)

	if result, found := o.lookup(ctx, key); found {
		o.log.Debug("Store hit", "key", key)
		o.update(func(s *State) {
			s.Result = result
		})
		return
	}

	o.update(func(s *State) {
		s.Loading = true
		s.Error = ""
	})

	result, err := o.fetcher.FetchCurrency(ctx, query)
	if err != nil {
		o.log.Warn("Proxy request failed", "query", query.String(), "error", err)
		o.fail(errorMessage(err, fallback))
		return
	}

	if !result.IsLatest() && len(result.Historical) == 0 {
		o.persist(ctx, MostRecentKey, "")
		o.fail(msgNoHistoricalRows)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		o.log.Error("Failed to encode result", "query", query.String(), "error", err)
	} else {
		o.persist(ctx, key, string(data))
		o.persist(ctx, MostRecentKey, string(data))
	}

	o.update(func(s *State) {
		s.Loading = false
		s.Result = result
	})
}

// lookup treats unreadable or undecodable entries as misses.
func (o *Orchestrator) lookup(ctx context.Context, key string) (*model.Result, bool) {
	raw, found, err := o.store.Get(ctx, key)
	if err != nil {
		o.log.Warn("Store read failed", "key", key, "error", err)
		return nil, false
	}
	if !found || raw == "" {
		return nil, false
	}

	var result model.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		o.log.Warn("Discarding undecodable store entry", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (o *Orchestrator) persist(ctx context.Context, key, value string) {
	if err := o.store.Set(ctx, key, value); err != nil {
		o.log.Warn("Store write failed", "key", key, "error", err)
	}
}

func (o *Orchestrator) fail(message string) {
	o.update(func(s *State) {
		s.Loading = false
		s.Error = message
	})
	o.scheduleDismiss(message)
}

func (o *Orchestrator) scheduleDismiss(message string) {
	if o.errorTimeout <= 0 {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.errorTimer != nil {
		o.errorTimer.Stop()
	}
	o.errorTimer = time.AfterFunc(o.errorTimeout, func() {
		o.update(func(s *State) {
			if s.Error == message {
				s.Error = ""
			}
		})
	})
}

func (o *Orchestrator) update(mutate func(*State)) {
	o.mu.Lock()
	mutate(&o.state)
	snapshot := o.state
	observers := append([]func(State){}, o.observers...)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func errorMessage(err error, fallback string) string {
	var proxyErr *ProxyError
	if errors.As(err, &proxyErr) && proxyErr.Message != "" {
		return proxyErr.Message
	}
	return fallback
}
