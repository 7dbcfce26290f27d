package calculator

import (
	"log"

	"PriceForecaster/internal/model"
)

// Compute derives every enabled indicator for the series. Indicators are computed independently:
// a failing indicator is reported in the error map and the rest are still returned.
func Compute(series *model.PriceSeries, cfg model.IndicatorConfig) (model.IndicatorSet, map[string]error) {
	prices := series.Prices()
	set := model.IndicatorSet{}
	errs := map[string]error{}

	// SMA
	if cfg.SMA {
		if v, err := SMA(prices, cfg.SMAPeriod); err != nil {
			log.Printf("[WARN] %s %s calculation failed: %v", series.Ticker, cfg.SMAName(), err)
			errs[cfg.SMAName()] = err
		} else {
			set[cfg.SMAName()] = v
		}
	}

	// EMA
	if cfg.EMA {
		if v, err := EMA(prices, cfg.EMAPeriod); err != nil {
			log.Printf("[WARN] %s %s calculation failed: %v", series.Ticker, cfg.EMAName(), err)
			errs[cfg.EMAName()] = err
		} else {
			set[cfg.EMAName()] = v
		}
	}

	// RSI
	if cfg.RSI {
		if v, err := RSI(prices, cfg.RSIPeriod); err != nil {
			log.Printf("[WARN] %s %s calculation failed: %v", series.Ticker, cfg.RSIName(), err)
			errs[cfg.RSIName()] = err
		} else {
			set[cfg.RSIName()] = v
		}
	}

	// MACD
	if cfg.MACD {
		if line, sig, hist, err := MACD(prices, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal); err != nil {
			log.Printf("[WARN] %s MACD calculation failed: %v", series.Ticker, err)
			errs[model.IndicatorMACD] = err
		} else {
			set[model.IndicatorMACD] = line
			set[model.IndicatorMACDSignal] = sig
			set[model.IndicatorMACDHist] = hist
		}
	}

	return set, errs
}
