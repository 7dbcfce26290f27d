package calculator

import (
	"fmt"

	"PriceForecaster/internal/model"
)

// MACD returns the MACD line (EMA(fast) - EMA(slow)), its signal line (EMA(signal) of the MACD line)
// and the histogram (line - signal). All three are NaN when slow exceeds the series length.
func MACD(prices []float64, fast, slow, signal int) (line, sig, hist []float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, nil, fmt.Errorf("macd periods %d/%d/%d: %w", fast, slow, signal, model.ErrInvalidPeriod)
	}
	if fast >= slow {
		return nil, nil, nil, fmt.Errorf("macd fast period %d must be below slow period %d: %w", fast, slow, model.ErrInvalidPeriod)
	}
	n := len(prices)
	if slow > n {
		return nanSlice(n), nanSlice(n), nanSlice(n), nil
	}

	fastEMA := ema(prices, fast)
	slowEMA := ema(prices, slow)
	line = make([]float64, n)
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig = ema(line, signal)
	hist = make([]float64, n)
	for i := range line {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist, nil
}
