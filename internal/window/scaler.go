package window

import "math"

// Scaler is a min-max scaler fitted once on a full price series.
// It is a value type with no refit method.
type Scaler struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Fit returns a Scaler over the observed min and max of values.
func Fit(values []float64) Scaler {
	if len(values) == 0 {
		return Scaler{}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return Scaler{Min: lo, Max: hi}
}

// Scale maps x into [0,1]. A constant series (max == min) scales everything to 0.
func (s Scaler) Scale(x float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (x - s.Min) / (s.Max - s.Min)
}

// Inverse maps a scaled value back to price units.
func (s Scaler) Inverse(x float64) float64 {
	return x*(s.Max-s.Min) + s.Min
}

// ScaleAll returns a new slice with every value scaled.
func (s Scaler) ScaleAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Scale(v)
	}
	return out
}

// InverseAll returns a new slice with every value mapped back to price units.
func (s Scaler) InverseAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Inverse(v)
	}
	return out
}
