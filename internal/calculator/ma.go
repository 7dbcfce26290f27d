package calculator

import (
	"fmt"
	"math"

	"PriceForecaster/internal/model"
)

// SMA computes the simple moving average of prices over the trailing period.
// The result is aligned with prices; indices before period-1 are NaN.
func SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma period %d: %w", period, model.ErrInvalidPeriod)
	}
	out := nanSlice(len(prices))
	if period > len(prices) {
		return out, nil
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA computes the recursive exponential moving average with alpha = 2/(period+1),
// seeded with the first price (adjust=false). Every index is defined.
func EMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema period %d: %w", period, model.ErrInvalidPeriod)
	}
	out := nanSlice(len(prices))
	if period > len(prices) {
		return out, nil
	}
	return ema(prices, period), nil
}

// ema assumes a valid period and a non-empty input; NaN inputs propagate.
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
