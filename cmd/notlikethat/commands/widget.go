package commands

import (
	"fmt"

	"notlikethat/internal/models"
	"notlikethat/internal/observability"
	"notlikethat/internal/services"
	contextutils "notlikethat/internal/utils"
	"notlikethat/internal/version"

	"github.com/spf13/cobra"
)

func todayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's misconception and record the visit",
		Long: `Show today's misconception, the visit streak, the progress through the list
and the time left until the next item. Running it counts as a visit.`,
		Args: cobra.NoArgs,
		RunE: runToday(app),
	}
}

func runToday(app *App) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		ctx, span := observability.TraceCommandFunction(cmd.Context(), "today")
		defer observability.FinishSpan(span, &err)

		session, err := app.Session(ctx)
		if err != nil {
			return err
		}
		visit, err := session.Visit(ctx)
		if err != nil {
			return err
		}
		renderer, err := app.Renderer(ctx)
		if err != nil {
			return err
		}
		renderer.Visit(visit, contextutils.TimeUntilMidnight(session.Clock.Now()))
		return nil
	}
}

func streakCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the visit streak without recording a visit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := app.Container(ctx)
			if err != nil {
				return err
			}
			streak, err := container.GetStreakService()
			if err != nil {
				return err
			}
			record, err := streak.Current(ctx)
			if err != nil {
				return err
			}
			renderer, err := app.Renderer(ctx)
			if err != nil {
				return err
			}
			renderer.Streak(record)
			return nil
		},
	}
}

func progressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show how much of the list has been shown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			container, err := app.Container(ctx)
			if err != nil {
				return err
			}
			selector, err := container.GetDailySelectorService()
			if err != nil {
				return err
			}
			lang := app.Language()
			progress, err := selector.Progress(ctx, lang, container.GetCatalog().Len(lang))
			if err != nil {
				return err
			}
			renderer, err := app.Renderer(ctx)
			if err != nil {
				return err
			}
			renderer.Progress(progress)
			return nil
		},
	}
}

func shareCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Print share links for today's misconception",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := app.Session(ctx)
			if err != nil {
				return err
			}
			item, err := session.TodayItem(ctx)
			if err != nil {
				return err
			}
			renderer, err := app.Renderer(ctx)
			if err != nil {
				return err
			}
			renderer.Share(services.ShareLinks(item, app.cfg.App.SiteURL))
			return nil
		},
	}
}

func countdownCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "countdown",
		Short: "Show the time left until the next misconception",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session, err := app.Session(ctx)
			if err != nil {
				return err
			}
			renderer, err := app.Renderer(ctx)
			if err != nil {
				return err
			}
			renderer.Countdown(contextutils.TimeUntilMidnight(session.Clock.Now()))
			return nil
		},
	}
}

func themeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [toggle|light|dark]",
		Short: "Show or change the color theme",
		Long: `Show the persisted color theme. With "toggle" the theme flips between light
and dark; with "light" or "dark" it is set explicitly.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle", string(models.ThemeLight), string(models.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := app.Container(ctx)
			if err != nil {
				return err
			}
			prefs, err := container.GetPreferencesService()
			if err != nil {
				return err
			}

			var theme models.Theme
			switch {
			case len(args) == 0:
				theme, err = prefs.Theme(ctx)
			case args[0] == "toggle":
				theme, err = prefs.ToggleTheme(ctx)
			default:
				theme = models.Theme(args[0])
				err = prefs.SetTheme(ctx, theme)
			}
			if err != nil {
				return err
			}

			renderer, err := app.Renderer(ctx)
			if err != nil {
				return err
			}
			renderer.Theme(theme)
			return nil
		},
	}
}

func versionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(app.Out, version.Get().String())
			return err
		},
	}
}
