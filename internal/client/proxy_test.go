package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"currency-viewer/internal/domain/model"
)

func TestProxyClient_FetchCurrency(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"2024-01-02": {"1. open": "1.1", "2. high": "1.2", "3. low": "1.0", "4. close": "1.09"}}`))
	}))
	defer server.Close()

	proxy := NewProxyClient(server.URL+"/", time.Second)
	result, err := proxy.FetchCurrency(context.Background(), model.NewCurrencyQuery("EUR", "2024-01-01", "2024-01-31"))
	require.NoError(t, err)

	assert.Equal(t, "/fetchCurrency", gotPath)
	assert.Equal(t, map[string][]string{
		"currencyCode": {"EUR"},
		"startDate":    {"2024-01-01"},
		"endDate":      {"2024-01-31"},
	}, gotQuery)
	assert.False(t, result.IsLatest())
	assert.Equal(t, "1.09", result.Historical["2024-01-02"].Close)
}

func TestProxyClient_Errors(t *testing.T) {
	testCases := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
	}{
		{"error body", http.StatusBadRequest, `{"error": "Invalid currency code provided."}`, "Invalid currency code provided."},
		{"not found", http.StatusNotFound, `{"error": "No data available for the selected date range."}`, "No data available for the selected date range."},
		{"html body", http.StatusBadGateway, `<html>oops</html>`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewProxyClient(server.URL, time.Second).FetchCurrency(context.Background(), model.NewCurrencyQuery("XYZ", "", ""))

			var proxyErr *ProxyError
			require.ErrorAs(t, err, &proxyErr)
			assert.Equal(t, tc.status, proxyErr.StatusCode)
			assert.Equal(t, tc.expectedMessage, proxyErr.Message)
		})
	}
}

func TestProxyClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewProxyClient(url, time.Second).FetchCurrency(context.Background(), model.NewCurrencyQuery("EUR", "", ""))

	var proxyErr *ProxyError
	assert.Error(t, err)
	assert.False(t, errors.As(err, &proxyErr))
}
