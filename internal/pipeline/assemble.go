package pipeline

import (
	"fmt"
	"math"

	"PriceForecaster/internal/model"
)

// Assemble aligns the actual prices after the first seqLength points with the predicted prices.
// Predicted[i] belongs to the price immediately following window i.
func Assemble(series *model.PriceSeries, seqLength int, predicted []float64) (*model.PredictionResult, error) {
	if seqLength < 0 || seqLength > series.Len() {
		return nil, fmt.Errorf("seq_length %d for %d points: %w", seqLength, series.Len(), model.ErrAlignment)
	}
	actual := series.Points[seqLength:]
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("%d actual vs %d predicted: %w", len(actual), len(predicted), model.ErrAlignment)
	}

	points := make([]model.PredictionPoint, len(actual))
	for i, p := range actual {
		points[i] = model.PredictionPoint{Time: p.Time, Actual: p.Price, Predicted: predicted[i]}
	}
	return &model.PredictionResult{
		Ticker:    series.Ticker,
		SeqLength: seqLength,
		Points:    points,
		Metrics:   Score(points),
	}, nil
}

// Score computes MAE, RMSE and MAPE over aligned points. MAPE skips zero actual prices.
func Score(points []model.PredictionPoint) model.ErrorMetrics {
	if len(points) == 0 {
		return model.ErrorMetrics{}
	}
	var absSum, sqSum, pctSum float64
	pctCount := 0
	for _, p := range points {
		diff := p.Predicted - p.Actual
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if p.Actual != 0 {
			pctSum += math.Abs(diff / p.Actual)
			pctCount++
		}
	}
	n := float64(len(points))
	m := model.ErrorMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
	if pctCount > 0 {
		m.MAPE = pctSum / float64(pctCount) * 100
	}
	return m
}
