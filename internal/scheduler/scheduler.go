package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"PriceForecaster/internal/notifier"
	"PriceForecaster/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// RunFunc performs one full pipeline run.
type RunFunc func(ctx context.Context, trigger string) (*pipeline.Report, error)

// Scheduler re-runs the forecast on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Run      RunFunc
	Notifier *notifier.TelegramNotifier // optional
	Ctx      context.Context

	mu   sync.Mutex
	last *pipeline.Report
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, run RunFunc, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Run:      run,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// Register adds the periodic forecast task.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.forecastTask("cron") }); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the forecast task immediately.
func (s *Scheduler) RunNow(trigger string) *pipeline.Report {
	return s.forecastTask(trigger)
}

// Last returns the most recent successful report, or nil.
func (s *Scheduler) Last() *pipeline.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) forecastTask(trigger string) *pipeline.Report {
	log.Printf("[INFO] running forecast task (%s)", trigger)
	rep, err := s.Run(s.Ctx, trigger)
	if err != nil {
		log.Printf("[ERROR] forecast task: %v", err)
		s.trySendText(fmt.Sprintf("❌ forecast run failed: %v", err))
		return nil
	}

	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()

	if s.Notifier.Enabled() {
		if err := s.Notifier.SendWithRetry(s.Ctx, rep, 3); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}
	return rep
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	name := ""
	if fields := strings.Fields(command); len(fields) > 0 {
		name, _, _ = strings.Cut(strings.ToLower(fields[0]), "@")
	}
	switch name {
	case "/forecast":
		// forecastTask delivers the report itself
		if s.forecastTask("command") == nil {
			return "forecast run failed, see logs"
		}
		return ""
	case "/last":
		if rep := s.Last(); rep != nil {
			return notifier.FormatReport(rep)
		}
		return "no forecast has run yet"
	default:
		return "commands:\n• /forecast: run the forecast now\n• /last: show the latest report"
	}
}

func (s *Scheduler) trySendText(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
