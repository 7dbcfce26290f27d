package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"PriceForecaster/internal/model"
)

// DefaultSingleTicker names the series of a single-stock OHLCV file with no Ticker column.
const DefaultSingleTicker = "CLOSE"

// Options control date filtering and naming while loading.
type Options struct {
	Start        time.Time // zero means unbounded
	End          time.Time // zero means unbounded; inclusive
	SingleTicker string
}

// Format is the detected table layout.
type Format string

const (
	FormatWide   Format = "wide"
	FormatLong   Format = "long"
	FormatSingle Format = "single"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ohlcv columns are ignored by the core; only Close is read.
var ohlcvColumns = map[string]bool{"open": true, "high": true, "low": true, "close": true, "adj close": true, "volume": true}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, opts Options) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Load(f, opts)
}

// Load parses a CSV table into per-ticker price series restricted to [opts.Start, opts.End].
// A malformed table fails the whole load; a ticker with no rows in range is reported in Dataset.Errors.
func Load(r io.Reader, opts Options) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: %w", model.ErrDataFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %v: %w", err, model.ErrDataFormat)
	}

	layout, err := detect(header, opts)
	if err != nil {
		return nil, err
	}

	rows := map[string]map[time.Time]float64{}
	order := make([]string, 0, len(layout.columns))
	seen := map[string]bool{}
	addTicker := func(t string) {
		if !seen[t] {
			seen[t] = true
			order = append(order, t)
			rows[t] = map[time.Time]float64{}
		}
	}
	for _, c := range layout.columns {
		addTicker(c.ticker)
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, model.ErrDataFormat)
		}
		if isBlank(rec) {
			continue
		}

		date, err := parseDate(field(rec, layout.dateIdx))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if layout.format == FormatLong {
			ticker := strings.TrimSpace(field(rec, layout.tickerIdx))
			if ticker == "" {
				return nil, fmt.Errorf("line %d: empty ticker: %w", line, model.ErrDataFormat)
			}
			addTicker(ticker)
			if err := store(rows[ticker], ticker, date, field(rec, layout.closeIdx), line); err != nil {
				return nil, err
			}
			continue
		}

		for _, c := range layout.columns {
			if err := store(rows[c.ticker], c.ticker, date, field(rec, c.idx), line); err != nil {
				return nil, err
			}
		}
	}

	ds := &model.Dataset{
		Series:  map[string]*model.PriceSeries{},
		Errors:  map[string]error{},
		Tickers: order,
	}
	for _, ticker := range order {
		series := buildSeries(ticker, rows[ticker], opts)
		if series.Len() == 0 {
			ds.Errors[ticker] = fmt.Errorf("%s between %s and %s: %w", ticker, fmtDate(opts.Start), fmtDate(opts.End), model.ErrEmptyRange)
			continue
		}
		ds.Series[ticker] = series
	}

	log.Printf("[INFO] loaded %s table: %d tickers, %d in range", layout.format, len(order), len(ds.Series))
	return ds, nil
}

type priceColumn struct {
	ticker string
	idx    int
}

type tableLayout struct {
	format    Format
	dateIdx   int
	tickerIdx int
	closeIdx  int
	columns   []priceColumn // wide and single formats
}

func detect(header []string, opts Options) (*tableLayout, error) {
	l := &tableLayout{dateIdx: -1, tickerIdx: -1, closeIdx: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date":
			l.dateIdx = i
		case "ticker":
			l.tickerIdx = i
		case "close":
			l.closeIdx = i
		}
	}
	if l.dateIdx < 0 {
		return nil, fmt.Errorf("missing Date column: %w", model.ErrDataFormat)
	}

	switch {
	case l.tickerIdx >= 0:
		l.format = FormatLong
		if l.closeIdx < 0 {
			return nil, fmt.Errorf("long format without Close column: %w", model.ErrDataFormat)
		}
	case l.closeIdx >= 0:
		l.format = FormatSingle
		name := opts.SingleTicker
		if name == "" {
			name = DefaultSingleTicker
		}
		l.columns = []priceColumn{{ticker: name, idx: l.closeIdx}}
	default:
		l.format = FormatWide
		for i, h := range header {
			name := strings.TrimSpace(h)
			if i == l.dateIdx || name == "" || ohlcvColumns[strings.ToLower(name)] {
				continue
			}
			l.columns = append(l.columns, priceColumn{ticker: name, idx: i})
		}
		if len(l.columns) == 0 {
			return nil, fmt.Errorf("no ticker columns: %w", model.ErrDataFormat)
		}
	}
	return l, nil
}

func store(dst map[time.Time]float64, ticker string, date time.Time, raw string, line int) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "null") {
		return nil // missing value for this ticker on this date
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("line %d: %s price %q: %w", line, ticker, raw, model.ErrDataFormat)
	}
	if _, dup := dst[date]; dup {
		log.Printf("[WARN] %s: duplicate date %s on line %d, keeping the later row", ticker, fmtDate(date), line)
	}
	dst[date] = v
	return nil
}

func buildSeries(ticker string, rows map[time.Time]float64, opts Options) *model.PriceSeries {
	points := make([]model.PricePoint, 0, len(rows))
	for t, p := range rows {
		if inRange(t, opts) {
			points = append(points, model.PricePoint{Time: t, Price: p})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return &model.PriceSeries{Ticker: ticker, Points: points}
}

func inRange(t time.Time, opts Options) bool {
	day := truncateDay(t)
	if !opts.Start.IsZero() && day.Before(truncateDay(opts.Start)) {
		return false
	}
	if !opts.End.IsZero() && day.After(truncateDay(opts.End)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) { return parseDate(s) }

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q: %w", s, model.ErrDataFormat)
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
