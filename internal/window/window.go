package window

import (
	"fmt"

	"PriceForecaster/internal/model"
)

// DefaultSeqLength is the window length used when none is configured.
const DefaultSeqLength = 60

// MaxSeqLength bounds the window length accepted from config and API requests.
const MaxSeqLength = 250

// Set holds the windows built from one series together with the scaler fitted on it.
// Windows are views over one scaled series and must be treated as read-only.
// The scaler must travel with the windows so predictions are inverse-scaled by the same fit.
type Set struct {
	SeqLength int
	Windows   []model.ScaledWindow
	Scaler    Scaler
	// Last is the trailing window ending at the final price, used for the one-step-ahead forecast.
	Last model.ScaledWindow
}

// Len returns the number of windows.
func (s *Set) Len() int { return len(s.Windows) }

// Build fits a scaler on prices and cuts the scaled series into sliding windows:
// window i covers scaled[i-seqLength : i] for i in [seqLength, len(prices)).
func Build(prices []float64, seqLength int) (*Set, error) {
	if seqLength <= 0 || seqLength > MaxSeqLength {
		return nil, fmt.Errorf("seq_length %d outside [1, %d]: %w", seqLength, MaxSeqLength, model.ErrInvalidPeriod)
	}
	if len(prices) <= seqLength {
		return nil, fmt.Errorf("%d points for seq_length %d: %w", len(prices), seqLength, model.ErrInsufficientHistory)
	}

	scaler := Fit(prices)
	scaled := scaler.ScaleAll(prices)

	// Windows share the scaled backing array; capacity is clipped so an append cannot reach
	// into the next window.
	windows := make([]model.ScaledWindow, 0, len(prices)-seqLength)
	for i := seqLength; i < len(prices); i++ {
		windows = append(windows, model.ScaledWindow(scaled[i-seqLength:i:i]))
	}
	last := model.ScaledWindow(scaled[len(scaled)-seqLength:])

	return &Set{
		SeqLength: seqLength,
		Windows:   windows,
		Scaler:    scaler,
		Last:      last,
	}, nil
}
