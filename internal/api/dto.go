package api

import (
	"errors"
	"math"
	"time"

	"PriceForecaster/internal/model"
	"PriceForecaster/internal/pipeline"
)

// JSON cannot carry NaN, so undefined indicator positions are sent as null.

type reportDTO struct {
	GeneratedAt time.Time    `json:"generated_at"`
	SeqLength   int          `json:"seq_length"`
	Tickers     []*tickerDTO `json:"tickers"`
}

type summaryDTO struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"p25"`
	P50   *float64 `json:"p50"`
	P75   *float64 `json:"p75"`
	Max   *float64 `json:"max"`
}

type tickerDTO struct {
	Ticker          string                  `json:"ticker"`
	Points          int                     `json:"points"`
	Summary         summaryDTO              `json:"summary"`
	Indicators      map[string][]*float64   `json:"indicators,omitempty"`
	IndicatorErrors map[string]string       `json:"indicator_errors,omitempty"`
	Prediction      *model.PredictionResult `json:"prediction,omitempty"`
	Stage           string                  `json:"stage,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toReportDTO(rep *pipeline.Report) *reportDTO {
	out := &reportDTO{GeneratedAt: rep.GeneratedAt, SeqLength: rep.SeqLength, Tickers: []*tickerDTO{}}
	for _, tr := range rep.Tickers {
		out.Tickers = append(out.Tickers, toTickerDTO(tr))
	}
	return out
}

func toTickerDTO(tr *pipeline.TickerReport) *tickerDTO {
	s := tr.Summary
	dto := &tickerDTO{
		Ticker: tr.Ticker,
		Points: tr.Points,
		Summary: summaryDTO{
			Count: s.Count,
			Mean:  nullable(s.Mean), Std: nullable(s.Std),
			Min: nullable(s.Min), P25: nullable(s.P25), P50: nullable(s.P50), P75: nullable(s.P75), Max: nullable(s.Max),
		},
		Prediction: tr.Prediction,
	}
	if len(tr.Indicators) > 0 {
		dto.Indicators = make(map[string][]*float64, len(tr.Indicators))
		for name, values := range tr.Indicators {
			series := make([]*float64, len(values))
			for i, v := range values {
				series[i] = nullable(v)
			}
			dto.Indicators[name] = series
		}
	}
	if len(tr.IndicatorErrors) > 0 {
		dto.IndicatorErrors = make(map[string]string, len(tr.IndicatorErrors))
		for name, err := range tr.IndicatorErrors {
			dto.IndicatorErrors[name] = err.Error()
		}
	}
	if tr.Err != nil {
		dto.Error = tr.Err.Error()
		var te *model.TickerError
		if errors.As(tr.Err, &te) {
			dto.Stage = string(te.Stage)
		}
	}
	return dto
}
