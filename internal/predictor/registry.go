package predictor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"

	"PriceForecaster/internal/model"
)

var tickerRegex = regexp.MustCompile(`^[A-Za-z0-9^._=-]{1,20}$`)

// ValidateTicker rejects ticker names that cannot be registry keys.
func ValidateTicker(ticker string) error {
	if !tickerRegex.MatchString(ticker) {
		return fmt.Errorf("invalid ticker %q", ticker)
	}
	return nil
}

// Registry maps tickers to model sources. Lookup is explicit: a ticker resolves to its own
// source, then to the fallback sources in order (shared store, shared default model).
// A fallback is skipped only when it reports ErrNotFound.
type Registry struct {
	sources   map[string]Source
	fallbacks []Source
	closers   []io.Closer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register binds ticker to src.
func (r *Registry) Register(ticker string, src Source) error {
	if err := ValidateTicker(ticker); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("nil source for %s", ticker)
	}
	if _, dup := r.sources[ticker]; dup {
		return fmt.Errorf("ticker %s registered twice", ticker)
	}
	r.sources[ticker] = src
	return nil
}

// AddFallback appends a source consulted for tickers without their own entry.
func (r *Registry) AddFallback(src Source) {
	r.fallbacks = append(r.fallbacks, src)
}

// Own hands a resource to the registry so Close releases it.
func (r *Registry) Own(c io.Closer) {
	r.closers = append(r.closers, c)
}

// Tickers returns the explicitly registered tickers, sorted.
func (r *Registry) Tickers() []string {
	out := make([]string, 0, len(r.sources))
	for t := range r.sources {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Open loads the model for ticker. Any failure is reported as ErrModelUnavailable and never retried.
func (r *Registry) Open(ctx context.Context, ticker string) (Model, error) {
	if src, ok := r.sources[ticker]; ok {
		return open(ctx, src, ticker)
	}
	if len(r.fallbacks) == 0 {
		return nil, fmt.Errorf("%s: no model registered: %w", ticker, model.ErrModelUnavailable)
	}
	var lastErr error
	for _, src := range r.fallbacks {
		m, err := open(ctx, src, ticker)
		if err == nil {
			return m, nil
		}
		// a broken artifact must surface, not be replaced by the next source
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func open(ctx context.Context, src Source, ticker string) (Model, error) {
	m, err := src.Open(ctx, ticker)
	if err != nil {
		if !errors.Is(err, model.ErrModelUnavailable) {
			err = fmt.Errorf("%s via %s: %v: %w", ticker, src.Name(), err, model.ErrModelUnavailable)
		}
		return nil, err
	}
	return m, nil
}

// Close releases every owned resource.
func (r *Registry) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RegistryConfig describes where model artifacts live.
type RegistryConfig struct {
	Artifacts  map[string]string // ticker -> JSON artifact path
	Default    string            // shared artifact for the single-stock variant
	SQLitePath string            // artifact store keyed by ticker
}

// BuildRegistry validates every configured ticker and path up front and assembles the registry.
func BuildRegistry(cfg RegistryConfig) (*Registry, error) {
	r := NewRegistry()

	tickers := make([]string, 0, len(cfg.Artifacts))
	for t := range cfg.Artifacts {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		src, err := NewFileSource(cfg.Artifacts[t])
		if err != nil {
			return nil, fmt.Errorf("model for %s: %w", t, err)
		}
		if err := r.Register(t, src); err != nil {
			return nil, err
		}
	}

	if cfg.SQLitePath != "" {
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("model store: %w", err)
		}
		r.AddFallback(store)
		r.Own(store)
	}

	if cfg.Default != "" {
		src, err := NewFileSource(cfg.Default)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("default model: %w", err)
		}
		r.AddFallback(src)
	}

	log.Printf("[INFO] model registry: %d tickers, %d fallbacks", len(r.sources), len(r.fallbacks))
	return r, nil
}
