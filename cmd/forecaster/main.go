package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PriceForecaster/internal/api"
	"PriceForecaster/internal/config"
	"PriceForecaster/internal/loader"
	"PriceForecaster/internal/notifier"
	"PriceForecaster/internal/pipeline"
	"PriceForecaster/internal/predictor"
	"PriceForecaster/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) > 1 && os.Args[1] == "import-model" {
		if err := importModel(os.Args[2:]); err != nil {
			log.Fatalf("[FATAL] import-model: %v", err)
		}
		return
	}
	os.Exit(run())
}

// run wires and runs the service. It returns the process exit code so deferred cleanup
// always happens before the process exits.
func run() int {
	log.Println("[INFO] PriceForecaster starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	start, end, _ := cfg.DateRange()

	// Init model registry
	var models pipeline.ModelOpener
	if cfg.Forecast.Enabled {
		reg, err := predictor.BuildRegistry(cfg.RegistryConfig())
		if err != nil {
			log.Fatalf("[FATAL] init model registry: %v", err)
		}
		defer func() {
			if err := reg.Close(); err != nil {
				log.Printf("[WARN] close model registry: %v", err)
			}
		}()
		models = reg
	} else {
		log.Println("[INFO] forecasting disabled, computing indicators only")
	}

	cal := pipeline.NewExchangeCalendar()
	runner := pipeline.NewRunner(models, cfg.Indicators, cfg.Forecast.SeqLength)
	runner.Calendar = cal
	job := &pipeline.Job{
		Runner:  runner,
		Path:    cfg.Input.Path,
		Options: loader.Options{Start: start, End: end, SingleTicker: cfg.Input.SingleTicker},
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	daemon := cfg.Schedule.Cron != "" || cfg.Server.Addr != "" || tn.Enabled()

	if !daemon {
		rep, err := job.Run(ctx, "cli")
		if err != nil {
			log.Printf("[FATAL] %v", err)
			return 1
		}
		fmt.Print(notifier.FormatReport(rep))
		return exitCode(rep)
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, job.Run, tn)
	if cfg.Schedule.Cron != "" {
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			log.Printf("[FATAL] register cron task: %v", err)
			return 1
		}
		sched.Start()
		defer sched.Stop()
	}

	// Start Telegram polling
	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Start HTTP API
	var srv *api.Server
	if cfg.Server.Addr != "" {
		srv = api.NewServer(models, cfg.Indicators, cfg.Forecast.SeqLength, cal)
		go func() {
			if err := srv.Start(cfg.Server.Addr); err != nil {
				log.Printf("[ERROR] %v", err)
				cancel()
			}
		}()
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing forecast now")
		go sched.RunNow("startup")
	}

	log.Println("[INFO] PriceForecaster is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] http shutdown: %v", err)
		}
		stop()
	}
	cancel()
	log.Println("[INFO] PriceForecaster stopped")
	return 0
}

// exitCode is 1 when every ticker of a one-shot run failed.
func exitCode(rep *pipeline.Report) int {
	if len(rep.Tickers) > 0 && len(rep.Failed()) == len(rep.Tickers) {
		return 1
	}
	return 0
}

// importModel stores a JSON network artifact in the SQLite model store.
// Usage: import-model <ticker> <artifact.json>
func importModel(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: import-model <ticker> <artifact.json>")
	}
	ticker, path := args[0], args[1]
	if err := predictor.ValidateTicker(ticker); err != nil {
		return err
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.Models.SQLitePath == "" {
		return fmt.Errorf("models.sqlite_path is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	n, err := predictor.DecodeNetwork(data)
	if err != nil {
		return err
	}

	store, err := predictor.NewSQLiteStore(cfg.Models.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Import(context.Background(), ticker, n); err != nil {
		return err
	}
	log.Printf("[INFO] imported model for %s into %s", ticker, cfg.Models.SQLitePath)
	return nil
}
