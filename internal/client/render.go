package client

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"currency-viewer/internal/domain/model"
)

const displayPlaces = 4

// Render writes a plain-text view of state to w.
func Render(w io.Writer, state State) error {
	if state.Loading {
		if _, err := fmt.Fprintln(w, "Loading..."); err != nil {
			return err
		}
	}
	if state.Error != "" {
		if _, err := fmt.Fprintf(w, "Error: %s\n", state.Error); err != nil {
			return err
		}
	}

	switch {
	case state.Result == nil:
		return nil
	case state.Result.IsLatest():
		return renderLatest(w, state.Result.Latest)
	default:
		return renderHistorical(w, state.Result.Historical)
	}
}

func renderLatest(w io.Writer, rate *model.LatestRateResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s rates in %s - Latest:\t%s\n", rate.FromCode, rate.ToCode, formatRate(rate.Rate))
	if rate.Bid != "" && rate.Ask != "" {
		fmt.Fprintf(tw, "Bid / Ask:\t%s / %s\n", formatRate(rate.Bid), formatRate(rate.Ask))
	}
	if rate.LastRefreshed != "" {
		fmt.Fprintf(tw, "Last refreshed:\t%s %s\n", rate.LastRefreshed, rate.TimeZone)
	}
	return tw.Flush()
}

func renderHistorical(w io.Writer, series model.HistoricalSeries) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tOpen\tHigh\tLow\tClose\t")
	for _, date := range series.SortedDates() {
		day := series[date]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			date, formatRate(day.Open), formatRate(day.High), formatRate(day.Low), formatRate(day.Close))
	}
	return tw.Flush()
}

// formatRate rounds provider decimals for display and leaves anything unparseable as given.
func formatRate(value string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	return d.StringFixed(displayPlaces)
}
