package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-viewer/internal/domain/model"
	"currency-viewer/pkg/logger"
)

type MockFetcher struct {
	mu    sync.Mutex
	calls []model.CurrencyQuery

	FetchCurrencyFunc func(ctx context.Context, query model.CurrencyQuery) (*model.Result, error)
}

func (m *MockFetcher) FetchCurrency(ctx context.Context, query model.CurrencyQuery) (*model.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.mu.Unlock()
	return m.FetchCurrencyFunc(ctx, query)
}

func (m *MockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]string)}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *memoryStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

var eurLatest = &model.Result{Latest: &model.LatestRateResult{FromCode: "EUR", ToCode: "USD", Rate: "1.0850"}}

var eurJanuary = &model.Result{Historical: model.HistoricalSeries{
	"2024-01-02": {Open: "1.1030", High: "1.1045", Low: "1.0940", Close: "1.0940"},
}}

func returning(result *model.Result, err error) *MockFetcher {
	return &MockFetcher{
		FetchCurrencyFunc: func(ctx context.Context, query model.CurrencyQuery) (*model.Result, error) {
			return result, err
		},
	}
}

func newTestOrchestrator(fetcher *MockFetcher, store *memoryStore) *Orchestrator {
	return NewOrchestrator(fetcher, store, logger.NewLogger("error"), WithErrorTimeout(0))
}

func TestOrchestrator_MissFetchesAndPersists(t *testing.T) {
	fetcher := returning(eurLatest, nil)
	store := newMemoryStore()
	o := newTestOrchestrator(fetcher, store)

	var states []State
	o.OnChange(func(s State) { states = append(states, s) })

	o.SearchLatest(context.Background(), " eur ")

	require.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, model.NewCurrencyQuery("EUR", "", ""), fetcher.calls[0])

	state := o.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, eurLatest, state.Result)

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)

	want, err := json.Marshal(eurLatest)
	require.NoError(t, err)
	stored, ok := store.value("EUR_latest")
	require.True(t, ok)
	assert.JSONEq(t, string(want), stored)
	recent, ok := store.value(MostRecentKey)
	require.True(t, ok)
	assert.JSONEq(t, string(want), recent)
}

func TestOrchestrator_HitSkipsNetwork(t *testing.T) {
	fetcher := returning(eurJanuary, nil)
	store := newMemoryStore()
	o := newTestOrchestrator(fetcher, store)
	query := model.NewCurrencyQuery("EUR", "2024-01-01", "2024-01-31")

	o.SearchHistorical(context.Background(), query)
	o.SearchHistorical(context.Background(), query)

	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, "1.0940", o.State().Result.Historical["2024-01-02"].Close)
	_, ok := store.value("EUR_2024-01-01_2024-01-31")
	assert.True(t, ok)
}

func TestOrchestrator_Failures(t *testing.T) {
	testCases := []struct {
		name            string
		search          func(o *Orchestrator)
		fetchErr        error
		expectedError   string
		expectedFetches int
	}{
		{
			name:            "proxy message is shown",
			search:          func(o *Orchestrator) { o.SearchLatest(context.Background(), "XYZ") },
			fetchErr:        &ProxyError{StatusCode: 400, Message: "Invalid currency code provided."},
			expectedError:   "Invalid currency code provided.",
			expectedFetches: 1,
		},
		{
			name:            "latest fallback",
			search:          func(o *Orchestrator) { o.SearchLatest(context.Background(), "EUR") },
			fetchErr:        errors.New("connection refused"),
			expectedError:   "Invalid currency code or failed to fetch data.",
			expectedFetches: 1,
		},
		{
			name: "historical fallback",
			search: func(o *Orchestrator) {
				o.SearchHistorical(context.Background(), model.NewCurrencyQuery("EUR", "2024-01-01", "2024-01-31"))
			},
			fetchErr:        &ProxyError{StatusCode: 502},
			expectedError:   "Failed to fetch historical data.",
			expectedFetches: 1,
		},
		{
			name:          "empty code",
			search:        func(o *Orchestrator) { o.SearchLatest(context.Background(), "  ") },
			expectedError: "Please enter a currency code.",
		},
		{
			name: "missing end date",
			search: func(o *Orchestrator) {
				o.SearchHistorical(context.Background(), model.NewCurrencyQuery("EUR", "2024-01-01", ""))
			},
			expectedError: "Please enter both start and end dates.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := returning(nil, tc.fetchErr)
			store := newMemoryStore()
			o := newTestOrchestrator(fetcher, store)

			tc.search(o)

			state := o.State()
			assert.Equal(t, tc.expectedError, state.Error)
			assert.False(t, state.Loading)
			assert.Nil(t, state.Result)
			assert.Equal(t, tc.expectedFetches, fetcher.callCount())
			assert.Empty(t, store.entries)
		})
	}
}

func TestOrchestrator_EmptyHistoricalClearsMostRecent(t *testing.T) {
	fetcher := returning(&model.Result{Historical: model.HistoricalSeries{}}, nil)
	store := newMemoryStore()
	require.NoError(t, store.Set(context.Background(), MostRecentKey, `{"stale":true}`))
	o := newTestOrchestrator(fetcher, store)

	o.SearchHistorical(context.Background(), model.NewCurrencyQuery("EUR", "2024-01-01", "2024-01-31"))

	assert.Equal(t, "No historical data found for the provided date range.", o.State().Error)
	recent, _ := store.value(MostRecentKey)
	assert.Empty(t, recent)
	_, ok := store.value("EUR_2024-01-01_2024-01-31")
	assert.False(t, ok)
}

func TestOrchestrator_UndecodableEntryIsMiss(t *testing.T) {
	fetcher := returning(eurLatest, nil)
	store := newMemoryStore()
	require.NoError(t, store.Set(context.Background(), "EUR_latest", "{broken"))
	o := newTestOrchestrator(fetcher, store)

	o.SearchLatest(context.Background(), "EUR")

	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, eurLatest, o.State().Result)
}

func TestOrchestrator_StoreReadErrorIsMiss(t *testing.T) {
	fetcher := returning(eurLatest, nil)
	store := newMemoryStore()
	store.getErr = errors.New("disk gone")
	o := newTestOrchestrator(fetcher, store)

	o.SearchLatest(context.Background(), "EUR")

	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, eurLatest, o.State().Result)
}

func TestOrchestrator_Restore(t *testing.T) {
	store := newMemoryStore()
	o := newTestOrchestrator(returning(nil, nil), store)

	o.Restore(context.Background())
	assert.Nil(t, o.State().Result)

	data, err := json.Marshal(eurJanuary)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), MostRecentKey, string(data)))

	o.Restore(context.Background())
	assert.Equal(t, eurJanuary, o.State().Result)
}

func TestOrchestrator_ErrorDismissal(t *testing.T) {
	o := NewOrchestrator(returning(nil, nil), newMemoryStore(), logger.NewLogger("error"), WithErrorTimeout(20*time.Millisecond))

	o.SearchLatest(context.Background(), "")
	assert.Equal(t, "Please enter a currency code.", o.State().Error)

	assert.Eventually(t, func() bool {
		return o.State().Error == ""
	}, time.Second, 10*time.Millisecond)

	manual := newTestOrchestrator(returning(nil, nil), newMemoryStore())
	manual.SearchLatest(context.Background(), "")
	manual.DismissError()
	assert.Empty(t, manual.State().Error)
}
