package notifier

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"PriceForecaster/internal/model"
	"PriceForecaster/internal/pipeline"

	"github.com/shopspring/decimal"
)

// price renders a value rounded to cents; NaN renders as "n/a".
func price(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// lastDefined returns the final non-NaN value of an indicator series.
func lastDefined(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i]
		}
	}
	return math.NaN()
}

// FormatReport renders a pipeline report as a plain-text message.
func FormatReport(rep *pipeline.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 PriceForecaster | %s | seq_length=%d\n", rep.GeneratedAt.Format("2006-01-02 15:04"), rep.SeqLength))
	for _, tr := range rep.Tickers {
		b.WriteString("\n")
		b.WriteString(FormatTicker(tr))
	}

	if failed := rep.Failed(); len(failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d of %d tickers failed\n", len(failed), len(rep.Tickers)))
	}
	return b.String()
}

// FormatTicker renders one ticker section.
func FormatTicker(tr *pipeline.TickerReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("■ %s (%d points)\n", tr.Ticker, tr.Points))

	if tr.Points > 0 {
		s := tr.Summary
		b.WriteString(fmt.Sprintf("  range: %s – %s | mean %s | std %s\n", price(s.Min), price(s.Max), price(s.Mean), price(s.Std)))
		b.WriteString(fmt.Sprintf("  quartiles: %s / %s / %s\n", price(s.P25), price(s.P50), price(s.P75)))
	}

	if len(tr.Indicators) > 0 {
		names := make([]string, 0, len(tr.Indicators))
		for name := range tr.Indicators {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, price(lastDefined(tr.Indicators[name]))))
		}
		b.WriteString("  latest: " + strings.Join(parts, " ") + "\n")
	}
	for name, err := range tr.IndicatorErrors {
		b.WriteString(fmt.Sprintf("  %s unavailable: %v\n", name, err))
	}

	if p := tr.Prediction; p != nil {
		b.WriteString(fmt.Sprintf("  backtest: %d predictions | MAE %s | RMSE %s | MAPE %s%%\n",
			len(p.Points), price(p.Metrics.MAE), price(p.Metrics.RMSE), price(p.Metrics.MAPE)))
		if n := len(p.Points); n > 0 {
			last := p.Points[n-1]
			b.WriteString(fmt.Sprintf("  last: %s actual %s predicted %s\n", last.Time.Format("2006-01-02"), price(last.Actual), price(last.Predicted)))
		}
		if p.Next != nil {
			b.WriteString(fmt.Sprintf("  next: %s → %s\n", p.Next.Time.Format("2006-01-02"), price(p.Next.Price)))
		}
	}

	if tr.Err != nil {
		b.WriteString(fmt.Sprintf("  ❌ %s\n", describeError(tr.Err)))
	}
	return b.String()
}

func describeError(err error) string {
	if te, ok := err.(*model.TickerError); ok {
		return fmt.Sprintf("%s failed: %v", te.Stage, te.Err)
	}
	return err.Error()
}
