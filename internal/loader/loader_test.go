package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PriceForecaster/internal/model"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLoad_WideFormat(t *testing.T) {
	csv := "Date,AAPL,MSFT\n" +
		"2024-01-03,185.6,370.6\n" +
		"2024-01-02,185.2,\n" +
		"2024-01-04,184.3,367.9\n"
	ds, err := Load(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(ds.Tickers, ","); got != "AAPL,MSFT" {
		t.Errorf("expected column order AAPL,MSFT, got %s", got)
	}
	aapl := ds.Series["AAPL"]
	if aapl.Len() != 3 {
		t.Fatalf("expected 3 AAPL points, got %d", aapl.Len())
	}
	if !aapl.Points[0].Time.Equal(date("2024-01-02")) || aapl.Points[0].Price != 185.2 {
		t.Errorf("expected series sorted ascending, got first point %+v", aapl.Points[0])
	}
	if ds.Series["MSFT"].Len() != 2 {
		t.Errorf("expected empty MSFT cell to be skipped, got %d points", ds.Series["MSFT"].Len())
	}
}

func TestLoad_LongFormat(t *testing.T) {
	csv := "Date,Ticker,Open,High,Low,Close,Volume\n" +
		"2024-01-02,AAA,1,1,1,10,100\n" +
		"2024-01-02,BBB,1,1,1,20,100\n" +
		"2024-01-03,AAA,1,1,1,11,100\n"
	ds, err := Load(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Series) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(ds.Series))
	}
	if got := ds.Series["AAA"].Prices(); len(got) != 2 || got[1] != 11 {
		t.Errorf("unexpected AAA prices %v", got)
	}
}

func TestLoad_SingleTickerOHLCV(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\n2024-01-02,1,2,0.5,1.5,10\n"
	ds, err := Load(strings.NewReader(csv), Options{SingleTicker: "SPY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, ok := ds.Series["SPY"]; !ok || s.Points[0].Price != 1.5 {
		t.Errorf("expected SPY series from Close column, got %+v", ds.Series)
	}
}

func TestLoad_DateRange(t *testing.T) {
	csv := "Date,AAA,BBB\n" +
		"2024-01-01,1,\n" +
		"2024-01-02,2,\n" +
		"2024-01-03,3,\n" +
		"2024-02-01,4,9\n"
	ds, err := Load(strings.NewReader(csv), Options{Start: date("2024-01-02"), End: date("2024-01-03")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ds.Series["AAA"].Prices(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("expected inclusive range [2,3], got %v", got)
	}
	if !errors.Is(ds.Errors["BBB"], model.ErrEmptyRange) {
		t.Errorf("expected ErrEmptyRange for BBB, got %v", ds.Errors["BBB"])
	}
	if _, ok := ds.Series["BBB"]; ok {
		t.Error("BBB should not have a series")
	}
}

func TestLoad_DuplicateDatesKeepLast(t *testing.T) {
	csv := "Date,AAA\n2024-01-02,1\n2024-01-02,2\n"
	ds, err := Load(strings.NewReader(csv), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ds.Series["AAA"].Prices(); len(got) != 1 || got[0] != 2 {
		t.Errorf("expected single point 2, got %v", got)
	}
}

func TestLoad_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"no date column", "Day,AAA\n2024-01-02,1\n"},
		{"no tickers", "Date\n2024-01-02\n"},
		{"long without close", "Date,Ticker,Open\n2024-01-02,AAA,1\n"},
		{"bad date", "Date,AAA\nyesterday,1\n"},
		{"bad price", "Date,AAA\n2024-01-02,abc\n"},
		{"infinite price", "Date,AAA\n2024-01-02,inf\n"},
		{"negative infinity", "Date,AAA\n2024-01-02,-Infinity\n"},
		{"overflowing price", "Date,AAA\n2024-01-02,1e400\n"},
	}
	for _, tt := range tests {
		_, err := Load(strings.NewReader(tt.csv), Options{})
		if !errors.Is(err, model.ErrDataFormat) {
			t.Errorf("%s: expected ErrDataFormat, got %v", tt.name, err)
		}
	}
}

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024/03/05", "03/05/2024", "2024-03-05 00:00:00", "2024-03-05T00:00:00Z"} {
		got, err := ParseDate(s)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", s, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
			t.Errorf("%s: parsed as %v", s, got)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio_data.csv")
	if err := os.WriteFile(path, []byte("Date,AAA\n2024-01-02,1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ds, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Series["AAA"].Len() != 1 {
		t.Errorf("expected 1 point, got %d", ds.Series["AAA"].Len())
	}
}
