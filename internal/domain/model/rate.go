package model

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"currency-viewer/pkg/utils"
)

const (
	LatestPayloadKey     = "Realtime Currency Exchange Rate"
	HistoricalPayloadKey = "Time Series FX (Daily)"
)

type LatestRateResult struct {
	FromCode      string `json:"1. From_Currency Code"`
	FromName      string `json:"2. From_Currency Name,omitempty"`
	ToCode        string `json:"3. To_Currency Code"`
	ToName        string `json:"4. To_Currency Name,omitempty"`
	Rate          string `json:"5. Exchange Rate"`
	LastRefreshed string `json:"6. Last Refreshed,omitempty"`
	TimeZone      string `json:"7. Time Zone,omitempty"`
	Bid           string `json:"8. Bid Price,omitempty"`
	Ask           string `json:"9. Ask Price,omitempty"`
}

type DailyRate struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

// HistoricalSeries maps a provider date string to that day's rates. Map order carries no meaning.
type HistoricalSeries map[string]DailyRate

// SortedDates returns the series keys in ascending calendar order.
func (s HistoricalSeries) SortedDates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}

	sort.Slice(dates, func(i, j int) bool {
		a, errA := utils.ParseFlexibleDate(dates[i])
		b, errB := utils.ParseFlexibleDate(dates[j])
		if errA != nil || errB != nil || a.Equal(b) {
			return dates[i] < dates[j]
		}
		return a.Before(b)
	})
	return dates
}

// Result holds exactly one of a latest rate or a historical series.
type Result struct {
	Latest     *LatestRateResult
	Historical HistoricalSeries
}

func (r Result) IsLatest() bool {
	return r.Latest != nil
}

// MarshalJSON writes a latest rate wrapped under the provider payload key and a series as a bare date map.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Latest != nil {
		return json.Marshal(map[string]*LatestRateResult{LatestPayloadKey: r.Latest})
	}
	if r.Historical == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Historical)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("result is not valid JSON")
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return errors.New("result must be a JSON object")
	}

	if latest := parsed.Get(gjson.Escape(LatestPayloadKey)); latest.Exists() {
		var rate LatestRateResult
		if err := json.Unmarshal([]byte(latest.Raw), &rate); err != nil {
			return err
		}
		*r = Result{Latest: &rate}
		return nil
	}

	var series HistoricalSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return err
	}
	*r = Result{Historical: series}
	return nil
}

type CacheEntry struct {
	Result   *Result
	StoredAt time.Time
}
