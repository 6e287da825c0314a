// Package worker drives watch mode: it redraws the countdown on a fixed interval
// and re-resolves today's item whenever the refresh schedule fires (local
// midnight by default). Cron callbacks are funnelled into the worker loop so
// the handler is only ever called from one goroutine.
package worker

import (
	"context"
	"sync"
	"time"

	"notlikethat/internal/config"
	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
)

const defaultMaxHistory = 20

// Status represents the current state of the worker
type Status struct {
	IsRunning     bool      `json:"is_running"`
	LastRunStart  time.Time `json:"last_run_start"`
	LastRunFinish time.Time `json:"last_run_finish"`
	LastRunError  string    `json:"last_run_error,omitempty"`
	NextRun       time.Time `json:"next_run"`
	Runs          int       `json:"runs"`
}

// RunRecord tracks individual refresh runs
type RunRecord struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Status    string        `json:"status"` // Success, Failure
	Trigger   string        `json:"trigger"`
	Details   string        `json:"details"`
}

// Handler receives the worker callbacks
type Handler interface {
	// Refresh re-resolves today's item and returns a short description of what was shown
	Refresh(ctx context.Context) (string, error)
	// Tick is called every tick interval, e.g. to redraw the countdown
	Tick(ctx context.Context, now time.Time)
}

// Config holds worker-specific configuration
type Config struct {
	Schedule     string
	Location     *time.Location
	TickInterval time.Duration
	MaxHistory   int
}

// ConfigFromApp derives the worker configuration from the application config
func ConfigFromApp(cfg *config.Config, loc *time.Location) Config {
	return Config{
		Schedule:     cfg.App.RefreshSchedule,
		Location:     loc,
		TickInterval: config.CountdownTickInterval,
		MaxHistory:   defaultMaxHistory,
	}
}

// Worker runs the refresh schedule and the countdown ticker
type Worker struct {
	handler   Handler
	workerCfg Config
	schedule  cron.Schedule
	cron      *cron.Cron
	logger    *observability.Logger

	status  Status
	history []RunRecord
	mu      sync.RWMutex

	scheduled     chan struct{}
	manualTrigger chan struct{}

	// Time function for testing - defaults to time.Now
	timeNow func() time.Time
}

// NewWorker validates the schedule and creates a stopped worker
func NewWorker(handler Handler, cfg Config, logger *observability.Logger) (*Worker, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultRefreshSchedule
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = config.CountdownTickInterval
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = defaultMaxHistory
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid refresh schedule %q: %v", cfg.Schedule, err)
	}

	return &Worker{
		handler:       handler,
		workerCfg:     cfg,
		schedule:      schedule,
		cron:          cron.New(cron.WithLocation(cfg.Location)),
		logger:        logger,
		scheduled:     make(chan struct{}, 1),
		manualTrigger: make(chan struct{}, 1),
		timeNow:       time.Now,
	}, nil
}

// Start performs an initial refresh and then blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.cron.Schedule(w.schedule, cron.FuncJob(func() {
		select {
		case w.scheduled <- struct{}{}:
		default:
		}
	}))
	w.cron.Start()

	w.mu.Lock()
	w.status.IsRunning = true
	w.mu.Unlock()

	ticker := time.NewTicker(w.workerCfg.TickInterval)
	defer ticker.Stop()

	w.logger.Info(ctx, "Watch worker started", map[string]interface{}{
		"schedule": w.workerCfg.Schedule,
		"timezone": w.workerCfg.Location.String(),
	})

	w.run(ctx, "startup")
	w.handler.Tick(ctx, w.timeNow())

	for {
		select {
		case <-ctx.Done():
			stopCtx := w.cron.Stop()
			<-stopCtx.Done()

			w.mu.Lock()
			w.status.IsRunning = false
			w.mu.Unlock()

			w.logger.Info(context.Background(), "Watch worker stopped", nil)
			return nil

		case <-w.scheduled:
			w.run(ctx, "schedule")

		case <-w.manualTrigger:
			w.run(ctx, "manual")

		case now := <-ticker.C:
			w.handler.Tick(ctx, now.In(w.workerCfg.Location))
		}
	}
}

// TriggerManualRun asks the running worker to refresh now
func (w *Worker) TriggerManualRun() {
	select {
	case w.manualTrigger <- struct{}{}:
	default:
		w.logger.Debug(context.Background(), "Manual trigger already pending", nil)
	}
}

func (w *Worker) run(ctx context.Context, trigger string) {
	ctx, span := observability.TraceSchedulerFunction(ctx, "refresh", attribute.String("trigger", trigger))
	defer observability.FinishSpan(span, nil)

	start := w.timeNow()
	details, err := w.handler.Refresh(ctx)
	finish := w.timeNow()

	record := RunRecord{
		StartTime: start,
		EndTime:   finish,
		Duration:  finish.Sub(start),
		Status:    "Success",
		Trigger:   trigger,
		Details:   details,
	}
	if err != nil {
		record.Status = "Failure"
		record.Details = err.Error()
		span.RecordError(err)
		w.logger.Error(ctx, "Refresh failed", err, map[string]interface{}{"trigger": trigger})
	}

	w.mu.Lock()
	w.status.LastRunStart = start
	w.status.LastRunFinish = finish
	w.status.Runs++
	w.status.LastRunError = ""
	if err != nil {
		w.status.LastRunError = err.Error()
	}
	w.status.NextRun = w.schedule.Next(finish.In(w.workerCfg.Location))
	w.history = append(w.history, record)
	if len(w.history) > w.workerCfg.MaxHistory {
		w.history = w.history[len(w.history)-w.workerCfg.MaxHistory:]
	}
	w.mu.Unlock()
}

// NextRun returns the next scheduled refresh after t
func (w *Worker) NextRun(t time.Time) time.Time {
	return w.schedule.Next(t.In(w.workerCfg.Location))
}

// GetStatus returns the current worker status
func (w *Worker) GetStatus() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// GetHistory returns the worker's run history
func (w *Worker) GetHistory() []RunRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	history := make([]RunRecord, len(w.history))
	copy(history, w.history)
	return history
}
