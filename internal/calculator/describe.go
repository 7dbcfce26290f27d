package calculator

import (
	"math"
	"sort"

	"PriceForecaster/internal/model"
)

// Describe returns count, mean, sample standard deviation, min, quartiles and max of prices.
// Quartiles use linear interpolation between closest ranks.
func Describe(prices []float64) model.Summary {
	n := len(prices)
	if n == 0 {
		return model.Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)

	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(n)

	std := math.NaN()
	if n > 1 {
		sq := 0.0
		for _, p := range prices {
			sq += (p - mean) * (p - mean)
		}
		std = math.Sqrt(sq / float64(n-1))
	}

	return model.Summary{
		Count: n,
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		P25:   quantile(sorted, 0.25),
		P50:   quantile(sorted, 0.50),
		P75:   quantile(sorted, 0.75),
		Max:   sorted[n-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
