// Package commands provides the CLI commands of the notlikethat widget
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"notlikethat/internal/config"
	"notlikethat/internal/di"
	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/services"
	contextutils "notlikethat/internal/utils"
	"notlikethat/internal/version"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// App holds the state shared by every command of one invocation
type App struct {
	Out       io.Writer
	Err       io.Writer
	LookupEnv func(string) (string, bool)
	// ContainerOptions are applied to the service container, e.g. a fixed clock in tests
	ContainerOptions []di.Option

	configPath string
	langFlag   string
	full       bool

	cfg       *config.Config
	logger    *observability.Logger
	tp        trace.TracerProvider
	mp        *metric.MeterProvider
	container *di.ServiceContainer
}

// NewApp returns an App wired to the process streams and environment
func NewApp() *App {
	return &App{
		Out:       os.Stdout,
		Err:       os.Stderr,
		LookupEnv: os.LookupEnv,
	}
}

// Execute runs the root command with args and returns the process exit code.
// Failures are printed in the active language.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCommand(app)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if shutdownErr := app.shutdown(context.Background()); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if err != nil {
		app.reportError(err)
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree. Without a subcommand it shows today's item.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "notlikethat",
		Short: "One common misconception per day",
		Long: `Not Like That - Daily Misconceptions

Shows one common misconception per calendar day, never repeating an item until
the whole list has been seen. Tracks a streak of consecutive visiting days.`,
		Version:           version.Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
		RunE:              runToday(app),
	}
	rootCmd.SetOut(app.Out)
	rootCmd.SetErr(app.Err)

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "path to the YAML config file (default $"+config.ConfigFileEnv+" or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&app.langFlag, "lang", "", "dataset language (en or es), overrides config and locale")
	rootCmd.PersistentFlags().BoolVar(&app.full, "full", false, "show the full text instead of clamping long items")

	rootCmd.AddCommand(todayCmd(app))
	rootCmd.AddCommand(streakCmd(app))
	rootCmd.AddCommand(progressCmd(app))
	rootCmd.AddCommand(shareCmd(app))
	rootCmd.AddCommand(themeCmd(app))
	rootCmd.AddCommand(countdownCmd(app))
	rootCmd.AddCommand(watchCmd(app))
	rootCmd.AddCommand(StoreCommands(app))
	rootCmd.AddCommand(versionCmd(app))

	return rootCmd
}

// setup loads the configuration and starts observability. The service
// container is created lazily so maintenance commands can run without a dataset.
func (a *App) setup(_ *cobra.Command, _ []string) error {
	if a.cfg != nil {
		return nil
	}

	var cfg *config.Config
	var err error
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.NewConfig()
	}
	if err != nil {
		return contextutils.WrapError(err, "failed to load configuration")
	}
	cfg.OpenTelemetry.ServiceVersion = version.Version

	tp, mp, logger, err := observability.SetupObservability(cfg, config.ServiceName)
	if err != nil {
		return contextutils.WrapError(err, "failed to initialize observability")
	}

	a.cfg = cfg
	a.tp = tp
	a.mp = mp
	a.logger = logger
	return nil
}

// Container initializes the service container on first use
func (a *App) Container(ctx context.Context) (*di.ServiceContainer, error) {
	if a.container != nil {
		return a.container, nil
	}

	opts := append([]di.Option{}, a.ContainerOptions...)
	if a.mp != nil {
		opts = append(opts, di.WithMeterProvider(a.mp))
	}
	container := di.NewServiceContainer(a.cfg, a.logger, opts...)
	if err := container.Initialize(ctx); err != nil {
		return nil, err
	}
	a.container = container
	return container, nil
}

// Language resolves the active language: --lang, then config, then the locale environment
func (a *App) Language() models.Language {
	configured := ""
	if a.cfg != nil {
		configured = a.cfg.App.Language
	}
	return services.ResolveLanguage(a.langFlag, configured, a.LookupEnv)
}

func (a *App) locale() contextutils.Locale {
	return contextutils.Locale(a.Language())
}

// Session builds a session for the active language
func (a *App) Session(ctx context.Context) (*services.Session, error) {
	container, err := a.Container(ctx)
	if err != nil {
		return nil, err
	}
	return container.NewSession(a.Language())
}

// Renderer returns a renderer using the persisted theme
func (a *App) Renderer(ctx context.Context) (*Renderer, error) {
	container, err := a.Container(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := container.GetPreferencesService()
	if err != nil {
		return nil, err
	}
	theme, err := prefs.Theme(ctx)
	if err != nil {
		return nil, err
	}
	return NewRenderer(a.Out, theme, a.locale(), a.cfg.App.TextClamp, a.full), nil
}

func (a *App) shutdown(ctx context.Context) error {
	var firstErr error
	if a.container != nil {
		firstErr = a.container.Shutdown(ctx)
		a.container = nil
	}
	if a.logger != nil {
		if err := observability.Shutdown(ctx, a.tp, a.mp, a.logger); err != nil {
			// Syncing a console logger fails on some terminals; never fatal
			a.logger.Debug(ctx, "Observability shutdown reported errors", map[string]interface{}{"error": err.Error()})
		}
	}
	return firstErr
}

// reportError prints the localized message for err. Fatal errors keep the bare message;
// everything else carries its details. The severity picks the log level.
func (a *App) reportError(err error) {
	code := contextutils.GetErrorCode(err)
	if code == contextutils.ErrorCodeInternalError {
		_, _ = fmt.Fprintf(a.Err, "Error: %v\n", err)
		return
	}

	severity := contextutils.GetErrorSeverity(err)
	message := contextutils.GetErrorLocalizedMessage(err, string(a.locale()))
	if severity == contextutils.SeverityFatal {
		message = contextutils.GetLocalizedMessage(code, a.locale())
	}
	_, _ = fmt.Fprintln(a.Err, message)

	if a.logger == nil {
		return
	}
	ctx := context.Background()
	fields := map[string]interface{}{"code": string(code), "severity": string(severity)}
	switch severity {
	case contextutils.SeverityDebug, contextutils.SeverityInfo:
		fields["error"] = err.Error()
		a.logger.Info(ctx, "Command failed", fields)
	case contextutils.SeverityWarn:
		fields["error"] = err.Error()
		a.logger.Warn(ctx, "Command failed", fields)
	default:
		a.logger.Error(ctx, "Command failed", err, fields)
	}
}
