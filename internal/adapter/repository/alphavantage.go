package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"currency-viewer/internal/domain/model"
	"currency-viewer/internal/domain/ports"
	"currency-viewer/internal/metrics"
	"currency-viewer/pkg/logger"
)

const (
	functionLatest     = "CURRENCY_EXCHANGE_RATE"
	functionHistorical = "FX_DAILY"

	targetCurrency = "USD"
)

// providerMessageFields are the top-level keys Alpha Vantage uses to explain a response without data.
var providerMessageFields = []string{"Error Message", "Note", "Information"}

type AlphaVantage struct {
	baseURL    string
	apiKey     string
	outputSize string
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewAlphaVantage(baseURL, apiKey, outputSize string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *AlphaVantage {
	return &AlphaVantage{
		baseURL:    baseURL,
		apiKey:     apiKey,
		outputSize: outputSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: m,
	}
}

func (a *AlphaVantage) FetchLatest(ctx context.Context, code string) (*model.LatestRateResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty currency code", ports.ErrInvalidCode)
	}

	params := url.Values{}
	params.Set("from_currency", code)
	params.Set("to_currency", targetCurrency)

	payload, err := a.query(ctx, functionLatest, params, model.LatestPayloadKey)
	if err != nil {
		return nil, err
	}

	var rate model.LatestRateResult
	if err := json.Unmarshal(payload, &rate); err != nil {
		a.record(functionLatest, "decode_error")
		return nil, fmt.Errorf("%w: decode latest rate: %v", ports.ErrUpstreamUnavailable, err)
	}

	if _, err := decimal.NewFromString(rate.Rate); err != nil {
		a.record(functionLatest, "decode_error")
		return nil, fmt.Errorf("%w: exchange rate %q is not a decimal", ports.ErrUpstreamUnavailable, rate.Rate)
	}

	a.record(functionLatest, "ok")
	return &rate, nil
}

// FetchHistorical returns the provider's whole daily series for code; callers filter by date.
func (a *AlphaVantage) FetchHistorical(ctx context.Context, code string) (model.HistoricalSeries, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty currency code", ports.ErrInvalidCode)
	}

	params := url.Values{}
	params.Set("from_symbol", code)
	params.Set("to_symbol", targetCurrency)
	if a.outputSize != "" {
		params.Set("outputsize", a.outputSize)
	}

	payload, err := a.query(ctx, functionHistorical, params, model.HistoricalPayloadKey)
	if err != nil {
		return nil, err
	}

	var series model.HistoricalSeries
	if err := json.Unmarshal(payload, &series); err != nil {
		a.record(functionHistorical, "decode_error")
		return nil, fmt.Errorf("%w: decode daily series: %v", ports.ErrUpstreamUnavailable, err)
	}

	a.record(functionHistorical, "ok")
	return series, nil
}

// query sends one request and returns the raw JSON found under payloadKey.
func (a *AlphaVantage) query(ctx context.Context, function string, params url.Values, payloadKey string) ([]byte, error) {
	endpoint, err := url.Parse(a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse base url: %v", ports.ErrUpstreamUnavailable, err)
	}
	params.Set("function", function)
	params.Set("apikey", a.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ports.ErrUpstreamUnavailable, err)
	}

	a.log.Debug("Calling Alpha Vantage", "function", function, "params", redact(params))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.record(function, "network_error")
		return nil, fmt.Errorf("%w: send request: %v", ports.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		a.record(function, "network_error")
		return nil, fmt.Errorf("%w: read response: %v", ports.ErrUpstreamUnavailable, err)
	}

	if !gjson.ValidBytes(body) {
		a.record(function, "malformed")
		return nil, fmt.Errorf("%w: response is not JSON (status %d)", ports.ErrUpstreamUnavailable, resp.StatusCode)
	}

	payload := gjson.GetBytes(body, gjson.Escape(payloadKey))
	if !payload.Exists() {
		a.record(function, "rejected")
		return nil, fmt.Errorf("%w: %s", ports.ErrInvalidCode, providerMessage(body))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		a.record(function, "http_error")
		return nil, fmt.Errorf("%w: API returned status %d", ports.ErrUpstreamUnavailable, resp.StatusCode)
	}

	return []byte(payload.Raw), nil
}

func (a *AlphaVantage) record(function, outcome string) {
	a.metrics.UpstreamRequestsTotal.WithLabelValues(function, outcome).Inc()
}

func providerMessage(body []byte) string {
	for _, field := range providerMessageFields {
		if msg := gjson.GetBytes(body, gjson.Escape(field)); msg.Exists() {
			return msg.String()
		}
	}
	return "payload missing from response"
}

func redact(params url.Values) string {
	clean := url.Values{}
	for k, v := range params {
		if k == "apikey" {
			continue
		}
		clean[k] = v
	}
	return clean.Encode()
}
