package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFormat: required columns missing or unparseable values.
	ErrDataFormat = errors.New("data format error")
	// ErrEmptyRange: the date filter left no rows for a ticker.
	ErrEmptyRange = errors.New("empty date range")
	// ErrInsufficientHistory: the series is not longer than seq_length.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrModelUnavailable: the pretrained model cannot be located or loaded.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrShapeMismatch: the model returned a different number of outputs than windows.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrAlignment: actual and predicted sequences differ in length.
	ErrAlignment = errors.New("alignment error")
	// ErrInvalidPeriod: a period or sequence length is not positive.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Stage names the pipeline step a ticker failed in.
type Stage string

const (
	StageLoad       Stage = "load"
	StageIndicators Stage = "indicators"
	StageWindow     Stage = "window"
	StageModel      Stage = "model"
	StagePredict    Stage = "predict"
	StageAssemble   Stage = "assemble"
)

// TickerError reports a failure isolated to one ticker.
type TickerError struct {
	Ticker string
	Stage  Stage
	Err    error
}

func (e *TickerError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Ticker, e.Stage, e.Err)
}

func (e *TickerError) Unwrap() error { return e.Err }
