package ports

import (
	"context"

	"currency-viewer/internal/domain/model"
)

type CurrencyService interface {
	FetchCurrency(ctx context.Context, query model.CurrencyQuery) (*model.Result, error)
}
