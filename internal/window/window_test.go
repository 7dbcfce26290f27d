package window

import (
	"errors"
	"math"
	"testing"

	"PriceForecaster/internal/model"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestScaler_RoundTrip(t *testing.T) {
	prices := []float64{12.5, 40, 7.25, 99.9, 63}
	s := Fit(prices)
	for _, p := range prices {
		scaled := s.Scale(p)
		if scaled < 0 || scaled > 1 {
			t.Errorf("scale(%f) = %f out of [0,1]", p, scaled)
		}
		if back := s.Inverse(scaled); math.Abs(back-p) > 1e-9 {
			t.Errorf("round trip %f -> %f", p, back)
		}
	}
}

func TestScaler_ConstantSeries(t *testing.T) {
	s := Fit(series(80, func(int) float64 { return 5 }))
	for _, v := range s.ScaleAll(series(80, func(int) float64 { return 5 })) {
		if v != 0 {
			t.Fatalf("expected 0 for constant series, got %f", v)
		}
	}
	if got := s.Inverse(0); got != 5 {
		t.Errorf("expected inverse(0) == 5, got %f", got)
	}
}

func TestBuild_WindowCount(t *testing.T) {
	tests := []struct {
		n, seq int
		want   int
	}{
		{100, 60, 40},
		{61, 60, 1},
		{10, 3, 7},
	}
	for _, tt := range tests {
		set, err := Build(series(tt.n, func(i int) float64 { return float64(i + 1) }), tt.seq)
		if err != nil {
			t.Fatalf("n=%d seq=%d: unexpected error: %v", tt.n, tt.seq, err)
		}
		if set.Len() != tt.want {
			t.Errorf("n=%d seq=%d: expected %d windows, got %d", tt.n, tt.seq, tt.want, set.Len())
		}
		for i, w := range set.Windows {
			if len(w) != tt.seq {
				t.Fatalf("window %d: expected length %d, got %d", i, tt.seq, len(w))
			}
		}
	}
}

func TestBuild_WindowContents(t *testing.T) {
	prices := series(100, func(i int) float64 { return float64(i + 1) })
	set, err := Build(prices, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// window 0 ends right before prices[60]
	if got := set.Scaler.Inverse(set.Windows[0][59]); math.Abs(got-prices[59]) > 1e-9 {
		t.Errorf("expected last element of window 0 to be %f, got %f", prices[59], got)
	}
	if got := set.Scaler.Inverse(set.Last[59]); math.Abs(got-prices[99]) > 1e-9 {
		t.Errorf("expected trailing window to end at %f, got %f", prices[99], got)
	}
	if set.Scaler.Min != 1 || set.Scaler.Max != 100 {
		t.Errorf("expected scaler fitted on full series, got %+v", set.Scaler)
	}
}

func TestBuild_InsufficientHistory(t *testing.T) {
	for _, n := range []int{50, 60} {
		_, err := Build(series(n, func(i int) float64 { return float64(i) }), 60)
		if !errors.Is(err, model.ErrInsufficientHistory) {
			t.Errorf("n=%d: expected ErrInsufficientHistory, got %v", n, err)
		}
	}
}

func TestBuild_InvalidSeqLength(t *testing.T) {
	long := series(2*MaxSeqLength, func(i int) float64 { return float64(i) })
	for _, seq := range []int{0, -1, MaxSeqLength + 1} {
		if _, err := Build(long, seq); !errors.Is(err, model.ErrInvalidPeriod) {
			t.Errorf("seq=%d: expected ErrInvalidPeriod, got %v", seq, err)
		}
	}
	if _, err := Build(long, MaxSeqLength); err != nil {
		t.Errorf("seq=%d: unexpected error: %v", MaxSeqLength, err)
	}
}

func TestBuild_WindowsShareScaledSeries(t *testing.T) {
	set, err := Build(series(100, func(i int) float64 { return float64(i) }), 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &set.Windows[1][0] != &set.Windows[0][1] {
		t.Error("expected adjacent windows to share the scaled backing array")
	}
	if cap(set.Windows[0]) != 60 {
		t.Errorf("expected window capacity clipped to 60, got %d", cap(set.Windows[0]))
	}
}
