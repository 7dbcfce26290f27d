package model

import "fmt"

// Indicator names that do not depend on a period.
const (
	IndicatorMACD       = "MACD"
	IndicatorMACDSignal = "MACD_SIGNAL"
	IndicatorMACDHist   = "MACD_HIST"
)

// IndicatorConfig selects which indicators are computed and with which periods.
type IndicatorConfig struct {
	SMA  bool `yaml:"sma" json:"sma"`
	EMA  bool `yaml:"ema" json:"ema"`
	RSI  bool `yaml:"rsi" json:"rsi"`
	MACD bool `yaml:"macd" json:"macd"`

	SMAPeriod  int `yaml:"sma_period" json:"sma_period"`
	EMAPeriod  int `yaml:"ema_period" json:"ema_period"`
	RSIPeriod  int `yaml:"rsi_period" json:"rsi_period"`
	MACDFast   int `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal int `yaml:"macd_signal" json:"macd_signal"`
}

// DefaultIndicatorConfig enables every indicator with the conventional periods.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		SMA: true, EMA: true, RSI: true, MACD: true,
		SMAPeriod: 20, EMAPeriod: 20, RSIPeriod: 14,
		MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
	}
}

// WithDefaults fills zero periods with the defaults, keeping the enabled flags.
func (c IndicatorConfig) WithDefaults() IndicatorConfig {
	d := DefaultIndicatorConfig()
	if c.SMAPeriod == 0 {
		c.SMAPeriod = d.SMAPeriod
	}
	if c.EMAPeriod == 0 {
		c.EMAPeriod = d.EMAPeriod
	}
	if c.RSIPeriod == 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast == 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow == 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal == 0 {
		c.MACDSignal = d.MACDSignal
	}
	return c
}

// SMAName is the IndicatorSet key of the SMA, e.g. "SMA20".
func (c IndicatorConfig) SMAName() string { return fmt.Sprintf("SMA%d", c.SMAPeriod) }

// EMAName is the IndicatorSet key of the EMA.
func (c IndicatorConfig) EMAName() string { return fmt.Sprintf("EMA%d", c.EMAPeriod) }

// RSIName is the IndicatorSet key of the RSI.
func (c IndicatorConfig) RSIName() string { return fmt.Sprintf("RSI%d", c.RSIPeriod) }

// IndicatorSet maps an indicator name to a series aligned with the source prices.
// Warm-up positions hold NaN.
type IndicatorSet map[string][]float64
