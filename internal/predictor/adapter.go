package predictor

import (
	"context"
	"fmt"

	"PriceForecaster/internal/model"
	"PriceForecaster/internal/window"
)

// Predict runs the model once over every window of set and returns the predictions in price units,
// in window order.
func Predict(ctx context.Context, m Model, set *window.Set) ([]float64, error) {
	scaled, err := run(ctx, m, set.Windows)
	if err != nil {
		return nil, err
	}
	return set.Scaler.InverseAll(scaled), nil
}

// ForecastNext predicts the price following the last point of the series from the trailing window.
func ForecastNext(ctx context.Context, m Model, set *window.Set) (float64, error) {
	scaled, err := run(ctx, m, []model.ScaledWindow{set.Last})
	if err != nil {
		return 0, err
	}
	return set.Scaler.Inverse(scaled[0]), nil
}

func run(ctx context.Context, m Model, windows []model.ScaledWindow) ([]float64, error) {
	out, err := m.Predict(ctx, Tensor(windows))
	if err != nil {
		return nil, fmt.Errorf("model predict: %w", err)
	}
	if len(out) != len(windows) {
		return nil, fmt.Errorf("model returned %d outputs for %d windows: %w", len(out), len(windows), model.ErrShapeMismatch)
	}
	scaled := make([]float64, len(out))
	for i, row := range out {
		if len(row) != 1 {
			return nil, fmt.Errorf("output %d has %d values, want 1: %w", i, len(row), model.ErrShapeMismatch)
		}
		scaled[i] = row[0]
	}
	return scaled, nil
}
