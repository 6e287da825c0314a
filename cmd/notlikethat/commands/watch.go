package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notlikethat/internal/observability"
	"notlikethat/internal/services"
	contextutils "notlikethat/internal/utils"
	"notlikethat/internal/worker"

	"github.com/spf13/cobra"
)

// watchHandler re-renders the widget for the worker
type watchHandler struct {
	session  *services.Session
	renderer *Renderer
}

// Refresh records a visit for the new day and redraws the widget
func (h *watchHandler) Refresh(ctx context.Context) (string, error) {
	visit, err := h.session.Visit(ctx)
	if err != nil {
		return "", err
	}
	h.renderer.printf("\n")
	h.renderer.Visit(visit, contextutils.TimeUntilMidnight(h.session.Clock.Now()))
	return fmt.Sprintf("%s item %d on %s", visit.Language, visit.Item.ID, visit.Date), nil
}

// Tick redraws the countdown line
func (h *watchHandler) Tick(_ context.Context, _ time.Time) {
	h.renderer.CountdownInPlace(contextutils.TimeUntilMidnight(h.session.Clock.Now()))
}

// refreshOnSignal asks w for a manual refresh each time a signal arrives, until ctx is done
func refreshOnSignal(ctx context.Context, w *worker.Worker, signals <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			w.TriggerManualRun()
		}
	}
}

// logWatchSummary logs what the worker did during the session
func logWatchSummary(ctx context.Context, logger *observability.Logger, w *worker.Worker) {
	if logger == nil {
		return
	}
	status := w.GetStatus()
	fields := map[string]interface{}{
		"runs":     status.Runs,
		"next_run": status.NextRun.Format(time.RFC3339),
	}
	if status.LastRunError != "" {
		fields["last_run_error"] = status.LastRunError
	}

	history := w.GetHistory()
	failures := 0
	for _, record := range history {
		if record.Status != "Success" {
			failures++
		}
	}
	fields["failures"] = failures
	if len(history) > 0 {
		last := history[len(history)-1]
		fields["last_trigger"] = last.Trigger
		fields["last_status"] = last.Status
		fields["last_details"] = last.Details
	}
	logger.Info(ctx, "Watch session summary", fields)
}

func watchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the widget open and switch items at midnight",
		Long: `Show today's misconception and keep running: the countdown is redrawn every
second and the next item is shown when the refresh schedule fires (local
midnight unless app.refresh_schedule says otherwise). Send SIGHUP to refresh
immediately. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := app.Container(ctx)
			if err != nil {
				return err
			}
			session, err := container.NewSession(app.Language())
			if err != nil {
				return err
			}
			renderer, err := app.Renderer(ctx)
			if err != nil {
				return err
			}

			handler := &watchHandler{session: session, renderer: renderer}
			w, err := worker.NewWorker(handler, worker.ConfigFromApp(app.cfg, container.GetLocation()), app.logger)
			if err != nil {
				return err
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go refreshOnSignal(ctx, w, hup)

			err = w.Start(ctx)
			logWatchSummary(context.Background(), app.logger, w)
			return err
		},
	}
}
