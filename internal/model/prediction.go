package model

import "time"

// ScaledWindow is one model input: seq_length min-max scaled prices.
type ScaledWindow []float64

// PredictionPoint pairs the actual price with the price predicted from the window ending just before it.
type PredictionPoint struct {
	Time      time.Time `json:"time"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// ErrorMetrics summarise how far predictions are from actual prices.
type ErrorMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"` // percent, zero actuals skipped
}

// NextForecast is the one-step-ahead prediction past the end of the series.
type NextForecast struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PredictionResult is the aligned actual/predicted output for one ticker.
type PredictionResult struct {
	Ticker    string            `json:"ticker"`
	SeqLength int               `json:"seq_length"`
	Points    []PredictionPoint `json:"points"`
	Metrics   ErrorMetrics      `json:"metrics"`
	Next      *NextForecast     `json:"next,omitempty"`
}
