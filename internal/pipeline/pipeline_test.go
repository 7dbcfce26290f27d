package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PriceForecaster/internal/metrics"
	"PriceForecaster/internal/model"
	"PriceForecaster/internal/predictor"

	"github.com/prometheus/client_golang/prometheus"
)

// echoModel predicts the final scaled value of each window.
type echoModel struct{}

func (echoModel) Predict(_ context.Context, batch [][][]float64) ([][]float64, error) {
	out := make([][]float64, len(batch))
	for i, w := range batch {
		out[i] = []float64{w[len(w)-1][0]}
	}
	return out, nil
}

type fakeModels map[string]predictor.Model

func (f fakeModels) Open(_ context.Context, ticker string) (predictor.Model, error) {
	if m, ok := f[ticker]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%s: %w", ticker, model.ErrModelUnavailable)
}

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func makeSeries(ticker string, n int, f func(i int) float64) *model.PriceSeries {
	s := &model.PriceSeries{Ticker: ticker}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, model.PricePoint{Time: day0.AddDate(0, 0, i), Price: f(i)})
	}
	return s
}

func dataset(series ...*model.PriceSeries) *model.Dataset {
	ds := &model.Dataset{Series: map[string]*model.PriceSeries{}, Errors: map[string]error{}}
	for _, s := range series {
		ds.Series[s.Ticker] = s
		ds.Tickers = append(ds.Tickers, s.Ticker)
	}
	return ds
}

func linear(i int) float64 { return float64(i + 1) }

func TestAssemble_LengthInvariant(t *testing.T) {
	s := makeSeries("AAA", 100, linear)
	pred := make([]float64, 40)
	res, err := Assemble(s, 60, pred)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Points) != 40 {
		t.Fatalf("expected 40 points, got %d", len(res.Points))
	}
	if res.Points[0].Actual != 61 || !res.Points[0].Time.Equal(s.Points[60].Time) {
		t.Errorf("expected first aligned point to be index 60, got %+v", res.Points[0])
	}
}

func TestAssemble_Mismatch(t *testing.T) {
	s := makeSeries("AAA", 100, linear)
	for _, n := range []int{39, 41} {
		if _, err := Assemble(s, 60, make([]float64, n)); !errors.Is(err, model.ErrAlignment) {
			t.Errorf("%d predictions: expected ErrAlignment, got %v", n, err)
		}
	}
}

func TestScore(t *testing.T) {
	m := Score([]model.PredictionPoint{
		{Actual: 10, Predicted: 11},
		{Actual: 20, Predicted: 17},
		{Actual: 0, Predicted: 0},
	})
	if math.Abs(m.MAE-4.0/3) > 1e-12 {
		t.Errorf("expected MAE 4/3, got %f", m.MAE)
	}
	if math.Abs(m.RMSE-math.Sqrt(10.0/3)) > 1e-12 {
		t.Errorf("expected RMSE sqrt(10/3), got %f", m.RMSE)
	}
	if math.Abs(m.MAPE-12.5) > 1e-12 {
		t.Errorf("expected MAPE 12.5, got %f", m.MAPE)
	}
}

func TestRun_RampSeries(t *testing.T) {
	r := NewRunner(fakeModels{"AAA": echoModel{}}, model.DefaultIndicatorConfig(), 60)
	rep := r.Run(context.Background(), dataset(makeSeries("AAA", 100, linear)), "test")

	tr := rep.Tickers[0]
	if tr.Err != nil {
		t.Fatalf("unexpected error: %v", tr.Err)
	}
	if got := len(tr.Prediction.Points); got != 40 {
		t.Fatalf("expected 40 predictions, got %d", got)
	}
	for i, p := range tr.Prediction.Points {
		if math.Abs(p.Predicted-float64(60+i)) > 1e-9 {
			t.Errorf("point %d: expected prediction %d, got %f", i, 60+i, p.Predicted)
		}
	}
	if tr.Prediction.Next == nil || math.Abs(tr.Prediction.Next.Price-100) > 1e-9 {
		t.Errorf("expected next forecast 100, got %+v", tr.Prediction.Next)
	}
	// 2024-04-09 is a Tuesday; next trading day is Wednesday.
	if want := day0.AddDate(0, 0, 100); !tr.Prediction.Next.Time.Equal(want) {
		t.Errorf("expected next forecast on %v, got %v", want, tr.Prediction.Next.Time)
	}
	if len(tr.Indicators["SMA20"]) != 100 {
		t.Errorf("expected aligned SMA20, got %d values", len(tr.Indicators["SMA20"]))
	}
}

func TestRun_InsufficientHistory(t *testing.T) {
	r := NewRunner(fakeModels{"AAA": echoModel{}}, model.DefaultIndicatorConfig(), 60)
	rep := r.Run(context.Background(), dataset(makeSeries("AAA", 50, linear)), "test")

	tr := rep.Tickers[0]
	if !errors.Is(tr.Err, model.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", tr.Err)
	}
	if tr.Prediction != nil {
		t.Error("expected no predictions")
	}
	if len(tr.Indicators["SMA20"]) != 50 {
		t.Error("indicators should still be computed")
	}
}

func TestRun_ConstantSeries(t *testing.T) {
	r := NewRunner(fakeModels{"CST": echoModel{}}, model.DefaultIndicatorConfig(), 60)
	rep := r.Run(context.Background(), dataset(makeSeries("CST", 80, func(int) float64 { return 5 })), "test")

	tr := rep.Tickers[0]
	if tr.Err != nil {
		t.Fatalf("unexpected error: %v", tr.Err)
	}
	sma := tr.Indicators["SMA20"]
	for i := 19; i < 80; i++ {
		if sma[i] != 5 {
			t.Fatalf("SMA20[%d] = %f, want 5", i, sma[i])
		}
	}
	for _, p := range tr.Prediction.Points {
		if p.Predicted != 5 {
			t.Fatalf("expected constant prediction 5, got %f", p.Predicted)
		}
	}
}

func TestRun_ModelUnavailableIsolated(t *testing.T) {
	models := fakeModels{"AAA": echoModel{}, "BBB": echoModel{}}
	r := NewRunner(models, model.DefaultIndicatorConfig(), 60)
	ds := dataset(
		makeSeries("AAA", 100, linear),
		makeSeries("XYZ", 100, linear),
		makeSeries("BBB", 100, linear),
	)
	rep := r.Run(context.Background(), ds, "test")

	if len(rep.Tickers) != 3 {
		t.Fatalf("expected 3 ticker reports, got %d", len(rep.Tickers))
	}
	for _, tr := range rep.Tickers {
		switch tr.Ticker {
		case "XYZ":
			if !errors.Is(tr.Err, model.ErrModelUnavailable) {
				t.Errorf("XYZ: expected ErrModelUnavailable, got %v", tr.Err)
			}
			var te *model.TickerError
			if !errors.As(tr.Err, &te) || te.Stage != model.StageModel {
				t.Errorf("XYZ: expected model stage failure, got %v", tr.Err)
			}
		default:
			if tr.Err != nil || tr.Prediction == nil || len(tr.Prediction.Points) != 40 {
				t.Errorf("%s: expected 40 predictions, got err=%v", tr.Ticker, tr.Err)
			}
		}
	}
	if len(rep.Failed()) != 1 {
		t.Errorf("expected exactly one failed ticker, got %d", len(rep.Failed()))
	}
}

func TestRun_LoaderErrorCarried(t *testing.T) {
	ds := dataset(makeSeries("AAA", 100, linear))
	ds.Tickers = append(ds.Tickers, "EMPTY")
	ds.Errors["EMPTY"] = fmt.Errorf("EMPTY: %w", model.ErrEmptyRange)

	rep := NewRunner(nil, model.DefaultIndicatorConfig(), 60).Run(context.Background(), ds, "test")
	if rep.Tickers[0].Err != nil || rep.Tickers[0].Prediction != nil {
		t.Errorf("AAA: expected indicators only, got err=%v", rep.Tickers[0].Err)
	}
	if !errors.Is(rep.Tickers[1].Err, model.ErrEmptyRange) {
		t.Errorf("EMPTY: expected ErrEmptyRange, got %v", rep.Tickers[1].Err)
	}
}

func TestWeekdayCalendar(t *testing.T) {
	friday := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := (WeekdayCalendar{}).NextTradingDay("AAA", friday); got.Weekday() != time.Monday {
		t.Errorf("expected Monday after Friday, got %v", got.Weekday())
	}
}

func TestExchangeCalendar_SkipsWeekend(t *testing.T) {
	cal := NewExchangeCalendar()
	friday := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	for _, ticker := range []string{"AAPL", "VOD.L"} {
		got := cal.NextTradingDay(ticker, friday)
		if !got.After(friday) || got.Weekday() == time.Saturday || got.Weekday() == time.Sunday {
			t.Errorf("%s: expected a weekday after %s, got %s", ticker, friday.Format("2006-01-02"), got.Format("2006-01-02 Mon"))
		}
	}
}

func TestJob_Run(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,AAA\n")
	for i := 0; i < 70; i++ {
		fmt.Fprintf(&b, "%s,%d\n", day0.AddDate(0, 0, i).Format("2006-01-02"), 100+i)
	}
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}

	job := &Job{Runner: NewRunner(fakeModels{"AAA": echoModel{}}, model.DefaultIndicatorConfig(), 60), Path: path}
	rep, err := job.Run(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Tickers) != 1 || rep.Tickers[0].Prediction == nil || len(rep.Tickers[0].Prediction.Points) != 10 {
		t.Errorf("expected 10 aligned predictions, got %+v", rep.Tickers)
	}

	job.Path = filepath.Join(t.TempDir(), "missing.csv")
	if _, err := job.Run(context.Background(), "test"); err == nil {
		t.Error("expected error for missing input file")
	}
}

func seriesCount(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)
	return len(ch)
}

func TestRun_MetricsNotLabelledByTicker(t *testing.T) {
	models := fakeModels{}
	var all []*model.PriceSeries
	for _, ticker := range []string{"M1", "M2", "M3"} {
		models[ticker] = echoModel{}
		all = append(all, makeSeries(ticker, 70, linear))
	}
	NewRunner(models, model.DefaultIndicatorConfig(), 60).Run(context.Background(), dataset(all...), "test")

	if n := seriesCount(metrics.PredictionsTotal); n != 1 {
		t.Errorf("expected one predictions series, got %d", n)
	}
	if n := seriesCount(metrics.InferenceDuration); n != 1 {
		t.Errorf("expected one inference duration series, got %d", n)
	}
}
