package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrCurrencyCodeRequired = errors.New("currency code is required")
	ErrDateRangeIncomplete  = errors.New("both startDate and endDate are required")
	ErrInvalidDate          = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidCurrencyCode  = errors.New("invalid currency code")
)

var validate = validator.New()

// CurrencyQuery is a request for either the latest rate (no dates) or a daily series (both dates) against USD.
type CurrencyQuery struct {
	CurrencyCode string `json:"currencyCode" validate:"required,alphanum,max=10"`
	StartDate    string `json:"startDate,omitempty" validate:"required_with=EndDate,omitempty,datetime=2006-01-02"`
	EndDate      string `json:"endDate,omitempty" validate:"required_with=StartDate,omitempty,datetime=2006-01-02"`
}

func NewCurrencyQuery(code, startDate, endDate string) CurrencyQuery {
	return CurrencyQuery{
		CurrencyCode: code,
		StartDate:    startDate,
		EndDate:      endDate,
	}.Normalize()
}

// Normalize trims the inputs and upper-cases the currency code.
func (q CurrencyQuery) Normalize() CurrencyQuery {
	return CurrencyQuery{
		CurrencyCode: strings.ToUpper(strings.TrimSpace(q.CurrencyCode)),
		StartDate:    strings.TrimSpace(q.StartDate),
		EndDate:      strings.TrimSpace(q.EndDate),
	}
}

func (q CurrencyQuery) IsHistorical() bool {
	return q.StartDate != "" && q.EndDate != ""
}

// Validate reports the first problem with the query. A missing code is reported before a
// half-open date range, which is reported before malformed dates.
func (q CurrencyQuery) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate query: %w", err)
	}

	var codeRequired, rangeIncomplete, badDate, badCode bool
	for _, fe := range fieldErrs {
		switch {
		case fe.Field() == "CurrencyCode" && fe.Tag() == "required":
			codeRequired = true
		case fe.Field() == "CurrencyCode":
			badCode = true
		case fe.Tag() == "required_with":
			rangeIncomplete = true
		case fe.Tag() == "datetime":
			badDate = true
		}
	}

	switch {
	case codeRequired:
		return ErrCurrencyCodeRequired
	case rangeIncomplete:
		return ErrDateRangeIncomplete
	case badDate:
		return ErrInvalidDate
	case badCode:
		return ErrInvalidCurrencyCode
	}
	return fmt.Errorf("validate query: %w", err)
}

func (q CurrencyQuery) String() string {
	if q.IsHistorical() {
		return fmt.Sprintf("%s %s..%s", q.CurrencyCode, q.StartDate, q.EndDate)
	}
	return q.CurrencyCode + " latest"
}
