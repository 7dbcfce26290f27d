package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"PriceForecaster/internal/pipeline"
)

func TestHandleCommand(t *testing.T) {
	runs := 0
	run := func(ctx context.Context, trigger string) (*pipeline.Report, error) {
		runs++
		if trigger != "command" {
			t.Errorf("expected command trigger, got %s", trigger)
		}
		return &pipeline.Report{GeneratedAt: time.Now(), SeqLength: 60,
			Tickers: []*pipeline.TickerReport{{Ticker: "AAA", Points: 10}}}, nil
	}
	s := NewScheduler(context.Background(), run, nil)

	if got := s.HandleCommand(context.Background(), "/last"); got != "no forecast has run yet" {
		t.Errorf("unexpected reply before first run: %q", got)
	}
	if got := s.HandleCommand(context.Background(), "/forecast@forecaster_bot"); got != "" {
		t.Errorf("expected empty reply after successful run, got %q", got)
	}
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
	if got := s.HandleCommand(context.Background(), "/last"); !strings.Contains(got, "AAA") {
		t.Errorf("expected last report to mention AAA, got %q", got)
	}
	if got := s.HandleCommand(context.Background(), "  "); !strings.Contains(got, "/forecast") {
		t.Errorf("expected help text, got %q", got)
	}
}

func TestRunNow_Failure(t *testing.T) {
	s := NewScheduler(context.Background(), func(context.Context, string) (*pipeline.Report, error) {
		return nil, errors.New("input missing")
	}, nil)
	if rep := s.RunNow("test"); rep != nil {
		t.Errorf("expected nil report on failure")
	}
	if s.Last() != nil {
		t.Errorf("failed run must not replace the last report")
	}
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := NewScheduler(context.Background(), nil, nil)
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.Register("0 0 18 * * 1-5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
