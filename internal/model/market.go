package model

import "time"

// PricePoint is a single dated close price.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries holds the ordered price history of one ticker.
// Points are strictly increasing in time and must not be modified once the loader returns them.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// Len returns the number of points in the series.
func (s *PriceSeries) Len() int { return len(s.Points) }

// Prices returns a fresh slice of the close prices.
func (s *PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	return prices
}

// Times returns a fresh slice of the timestamps.
func (s *PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		times[i] = p.Time
	}
	return times
}

// Dataset is the loader output: one series per ticker, plus per-ticker load failures.
type Dataset struct {
	Series  map[string]*PriceSeries
	Errors  map[string]error
	Tickers []string // column / first-appearance order
}

// Summary mirrors a describe() table for one ticker.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}
