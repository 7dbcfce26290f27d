package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"PriceForecaster/internal/loader"
	"PriceForecaster/internal/model"
	"PriceForecaster/internal/pipeline"
	"PriceForecaster/internal/window"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxUpload bounds the CSV body accepted by the forecast endpoint.
const maxUpload = 32 << 20

// Server exposes the pipeline over HTTP for a presentation layer.
type Server struct {
	engine   *gin.Engine
	http     *http.Server
	models   pipeline.ModelOpener
	defaults pipeline.Runner
}

// NewServer builds the router. models may be nil, in which case only indicators are served.
func NewServer(models pipeline.ModelOpener, defaults model.IndicatorConfig, seqLength int, cal pipeline.Calendar) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		models: models,
	}
	s.defaults = *pipeline.NewRunner(models, defaults, seqLength)
	if cal != nil {
		s.defaults.Calendar = cal
	}

	s.engine.Use(gin.Recovery(), requestLogger())
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.POST("/api/v1/forecast", s.handleForecast)
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[INFO] HTTP API listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[INFO] %s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"prediction": s.models != nil,
	})
}

func (s *Server) handleForecast(c *gin.Context) {
	runner := s.defaults

	opts, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	opts.SingleTicker = c.DefaultQuery("ticker", loader.DefaultSingleTicker)

	if v := c.Query("seq_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > window.MaxSeqLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("seq_length must be an integer in [1, %d]", window.MaxSeqLength)})
			return
		}
		runner.SeqLength = n
	}
	if v := c.Query("indicators"); v != "" {
		cfg, err := parseIndicators(v, runner.Indicators)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		runner.Indicators = cfg
	}
	if v := c.Query("forecast"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && !b {
			runner.Models = nil
		}
	}

	body, err := readCSV(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ds, err := loader.Load(bytes.NewReader(body), opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrDataFormat) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	rep := runner.Run(c.Request.Context(), ds, "api")
	c.JSON(http.StatusOK, toReportDTO(rep))
}

// readCSV accepts either a multipart upload in field "file" or a raw request body.
func readCSV(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("multipart field \"file\": %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("empty body, expected CSV")
	}
	return body, nil
}

func parseRange(c *gin.Context) (loader.Options, error) {
	var opts loader.Options
	var err error
	if v := c.Query("start"); v != "" {
		if opts.Start, err = loader.ParseDate(v); err != nil {
			return opts, fmt.Errorf("start: %w", err)
		}
	}
	if v := c.Query("end"); v != "" {
		if opts.End, err = loader.ParseDate(v); err != nil {
			return opts, fmt.Errorf("end: %w", err)
		}
	}
	if !opts.Start.IsZero() && !opts.End.IsZero() && opts.End.Before(opts.Start) {
		return opts, errors.New("end is before start")
	}
	return opts, nil
}

// parseIndicators turns "sma,rsi" into a config with only those enabled; "none" disables all.
func parseIndicators(list string, base model.IndicatorConfig) (model.IndicatorConfig, error) {
	cfg := base
	cfg.SMA, cfg.EMA, cfg.RSI, cfg.MACD = false, false, false, false
	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "sma":
			cfg.SMA = true
		case "ema":
			cfg.EMA = true
		case "rsi":
			cfg.RSI = true
		case "macd":
			cfg.MACD = true
		case "none", "":
		default:
			return cfg, fmt.Errorf("unknown indicator %q", name)
		}
	}
	return cfg, nil
}
