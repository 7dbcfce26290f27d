package pipeline

import (
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// micBySuffix maps ticker suffixes to exchange MIC codes. Unknown suffixes use NYSE.
var micBySuffix = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".MC": "xmad",
	".SW": "xswx",
	".TO": "xtse",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".SS": "xshg",
	".SZ": "xshe",
}

// Calendar answers which day the next forecast belongs to.
type Calendar interface {
	NextTradingDay(ticker string, after time.Time) time.Time
}

// ExchangeCalendar resolves the exchange from the ticker suffix and skips holidays and weekends.
type ExchangeCalendar struct {
	mu    sync.Mutex
	cache map[string]*calendar.Calendar
}

// NewExchangeCalendar creates a calendar that loads exchange holidays on first use.
func NewExchangeCalendar() *ExchangeCalendar {
	return &ExchangeCalendar{cache: map[string]*calendar.Calendar{}}
}

func (c *ExchangeCalendar) lookup(ticker string) *calendar.Calendar {
	mic := "xnys"
	if i := strings.LastIndex(ticker, "."); i > 0 {
		if m, ok := micBySuffix[strings.ToUpper(ticker[i:])]; ok {
			mic = m
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cal, ok := c.cache[mic]; ok {
		return cal
	}
	cal := calendar.GetCalendar(mic)
	c.cache[mic] = cal
	return cal
}

// NextTradingDay returns the first business day strictly after the given date.
// Without a calendar for the exchange it falls back to Monday-Friday.
func (c *ExchangeCalendar) NextTradingDay(ticker string, after time.Time) time.Time {
	cal := c.lookup(ticker)
	d := after
	for i := 0; i < 14; i++ {
		d = d.AddDate(0, 0, 1)
		if cal != nil {
			if cal.IsBusinessDay(d) {
				return d
			}
			continue
		}
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			return d
		}
	}
	return after.AddDate(0, 0, 1)
}

// WeekdayCalendar treats every Monday-Friday as a trading day.
type WeekdayCalendar struct{}

// NextTradingDay returns the next Monday-Friday after the given date.
func (WeekdayCalendar) NextTradingDay(_ string, after time.Time) time.Time {
	d := after.AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
