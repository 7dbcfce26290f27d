package pipeline

import (
	"context"
	"io"
	"log"
	"time"

	"PriceForecaster/internal/calculator"
	"PriceForecaster/internal/metrics"
	"PriceForecaster/internal/model"
	"PriceForecaster/internal/predictor"
	"PriceForecaster/internal/window"
)

// ModelOpener resolves the pretrained model for a ticker. *predictor.Registry implements it.
type ModelOpener interface {
	Open(ctx context.Context, ticker string) (predictor.Model, error)
}

// TickerReport is everything one run produced for one ticker.
type TickerReport struct {
	Ticker          string
	Points          int
	Summary         model.Summary
	Indicators      model.IndicatorSet
	IndicatorErrors map[string]error
	Prediction      *model.PredictionResult
	Err             error // *model.TickerError when a stage failed
}

// Report is the output of one pipeline run.
type Report struct {
	GeneratedAt time.Time
	SeqLength   int
	Tickers     []*TickerReport
}

// Failed returns the tickers whose run stopped at some stage.
func (r *Report) Failed() []*TickerReport {
	var out []*TickerReport
	for _, t := range r.Tickers {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Runner chains indicators, windowing, prediction and assembly for every ticker of a dataset.
// A Runner holds configuration only; scalers and models live for a single ticker run.
type Runner struct {
	Models     ModelOpener // nil disables prediction
	Indicators model.IndicatorConfig
	SeqLength  int
	Calendar   Calendar
}

// NewRunner creates a Runner with default window length and a weekday calendar.
func NewRunner(models ModelOpener, indicators model.IndicatorConfig, seqLength int) *Runner {
	if seqLength <= 0 {
		seqLength = window.DefaultSeqLength
	}
	return &Runner{
		Models:     models,
		Indicators: indicators,
		SeqLength:  seqLength,
		Calendar:   WeekdayCalendar{},
	}
}

// Run processes every ticker in dataset order. Failures are isolated per ticker and per indicator.
func (r *Runner) Run(ctx context.Context, ds *model.Dataset, trigger string) *Report {
	metrics.RunsTotal.WithLabelValues(trigger).Inc()
	log.Printf("[INFO] pipeline run (%s): %d tickers, seq_length=%d", trigger, len(ds.Tickers), r.SeqLength)

	report := &Report{GeneratedAt: time.Now(), SeqLength: r.SeqLength}
	for _, ticker := range ds.Tickers {
		tr := r.runTicker(ctx, ticker, ds)
		if tr.Err != nil {
			log.Printf("[ERROR] %v", tr.Err)
			if te, ok := tr.Err.(*model.TickerError); ok {
				metrics.TickerFailuresTotal.WithLabelValues(string(te.Stage)).Inc()
			}
		}
		report.Tickers = append(report.Tickers, tr)
	}

	log.Printf("[INFO] pipeline run (%s) finished: %d ok, %d failed",
		trigger, len(report.Tickers)-len(report.Failed()), len(report.Failed()))
	return report
}

func (r *Runner) runTicker(ctx context.Context, ticker string, ds *model.Dataset) *TickerReport {
	tr := &TickerReport{Ticker: ticker}
	fail := func(stage model.Stage, err error) *TickerReport {
		tr.Err = &model.TickerError{Ticker: ticker, Stage: stage, Err: err}
		return tr
	}

	if err, ok := ds.Errors[ticker]; ok {
		return fail(model.StageLoad, err)
	}
	series, ok := ds.Series[ticker]
	if !ok {
		return fail(model.StageLoad, model.ErrEmptyRange)
	}
	tr.Points = series.Len()
	prices := series.Prices()
	tr.Summary = calculator.Describe(prices)

	tr.Indicators, tr.IndicatorErrors = calculator.Compute(series, r.Indicators)
	for name := range tr.IndicatorErrors {
		metrics.IndicatorFailuresTotal.WithLabelValues(name).Inc()
	}

	if r.Models == nil {
		return tr
	}

	set, err := window.Build(prices, r.SeqLength)
	if err != nil {
		return fail(model.StageWindow, err)
	}

	m, err := r.Models.Open(ctx, ticker)
	if err != nil {
		return fail(model.StageModel, err)
	}
	if c, ok := m.(io.Closer); ok {
		defer c.Close()
	}

	start := time.Now()
	predicted, err := predictor.Predict(ctx, m, set)
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fail(model.StagePredict, err)
	}

	result, err := Assemble(series, r.SeqLength, predicted)
	if err != nil {
		return fail(model.StageAssemble, err)
	}
	metrics.PredictionsTotal.Add(float64(len(predicted)))

	next, err := predictor.ForecastNext(ctx, m, set)
	if err != nil {
		return fail(model.StagePredict, err)
	}
	last := series.Points[series.Len()-1].Time
	result.Next = &model.NextForecast{Time: r.nextDay(ticker, last), Price: next}

	tr.Prediction = result
	return tr
}

func (r *Runner) nextDay(ticker string, last time.Time) time.Time {
	if r.Calendar == nil {
		return WeekdayCalendar{}.NextTradingDay(ticker, last)
	}
	return r.Calendar.NextTradingDay(ticker, last)
}
