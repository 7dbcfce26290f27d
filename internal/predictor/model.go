package predictor

import (
	"context"
	"errors"

	"PriceForecaster/internal/model"
)

// ErrNotFound marks a source that holds no artifact for the ticker. Only this error lets the
// registry move on to the next fallback source.
var ErrNotFound = errors.New("no artifact for ticker")

// Model is a pretrained sequence predictor.
// Predict takes a [batch, seq_length, 1] tensor and returns a [batch, 1] tensor of scaled predictions.
type Model interface {
	Predict(ctx context.Context, batch [][][]float64) ([][]float64, error)
}

// Source locates and loads the model artifact for a ticker.
type Source interface {
	Open(ctx context.Context, ticker string) (Model, error)
	Name() string
}

// Tensor reshapes windows into the [batch, seq_length, 1] layout models expect.
func Tensor(windows []model.ScaledWindow) [][][]float64 {
	batch := make([][][]float64, len(windows))
	for i, w := range windows {
		steps := make([][]float64, len(w))
		for j, v := range w {
			steps[j] = []float64{v}
		}
		batch[i] = steps
	}
	return batch
}
