package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"currency-viewer/internal/domain/model"
	"currency-viewer/internal/domain/ports"
	"currency-viewer/internal/metrics"
	"currency-viewer/internal/service"
	"currency-viewer/pkg/logger"
)

const (
	msgCodeRequired    = "Currency code is required"
	msgRangeIncomplete = "Both startDate and endDate are required."
	msgInvalidDate     = "Invalid date format, use YYYY-MM-DD"
	msgInvalidCode     = "Invalid currency code provided."
	msgNoDataInRange   = "No data available for the selected date range."
	msgUpstreamFailure = "Invalid currency code or failed to fetch data from Alpha Vantage"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	service ports.CurrencyService
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(service ports.CurrencyService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		log:     log,
		metrics: metrics,
	}
}

// FetchCurrencyHandler serves GET ?currencyCode=XXX[&startDate=YYYY-MM-DD&endDate=YYYY-MM-DD].
func (h *Handler) FetchCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := model.NewCurrencyQuery(
		params.Get("currencyCode"),
		params.Get("startDate"),
		params.Get("endDate"),
	)

	kind := "latest"
	if query.StartDate != "" || query.EndDate != "" {
		kind = "historical"
	}
	h.metrics.CurrencyRequestsTotal.WithLabelValues(kind).Inc()

	result, err := h.service.FetchCurrency(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, result)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	h.sendErrorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, ErrorResponse{Error: message})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, model.ErrCurrencyCodeRequired):
		statusCode = http.StatusBadRequest
		errorMessage = msgCodeRequired
	case errors.Is(err, model.ErrDateRangeIncomplete):
		statusCode = http.StatusBadRequest
		errorMessage = msgRangeIncomplete
	case errors.Is(err, model.ErrInvalidDate):
		statusCode = http.StatusBadRequest
		errorMessage = msgInvalidDate
	case errors.Is(err, model.ErrInvalidCurrencyCode), errors.Is(err, service.ErrInvalidCurrencyCode):
		statusCode = http.StatusBadRequest
		errorMessage = msgInvalidCode
	case errors.Is(err, service.ErrNoDataInRange):
		statusCode = http.StatusNotFound
		errorMessage = msgNoDataInRange
	case errors.Is(err, service.ErrUpstreamFailure):
		statusCode = http.StatusBadRequest
		errorMessage = msgUpstreamFailure
	}

	if statusCode >= http.StatusInternalServerError || errors.Is(err, service.ErrUpstreamFailure) {
		h.log.Error("Service error", "error", err, "status_code", statusCode, "query", r.URL.RawQuery)
	} else {
		h.log.Warn("Request rejected", "error", err, "status_code", statusCode, "query", r.URL.RawQuery)
	}
	h.sendErrorResponse(w, statusCode, errorMessage)
}
