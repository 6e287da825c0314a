package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"notlikethat/internal/database"
	"notlikethat/internal/models"
	"notlikethat/internal/store"
	contextutils "notlikethat/internal/utils"

	"github.com/spf13/cobra"
)

// StoreCommands returns the persisted state maintenance commands
func StoreCommands(app *App) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and maintain the persisted state",
		Long: `Inspect and maintain the persisted state.

Available commands:
  show      - Print the records of the active language
  keys      - List every stored key
  reset     - Remove the records of the active language
  migrate   - Apply the SQL schema migrations`,
	}

	storeCmd.AddCommand(storeShowCmd(app))
	storeCmd.AddCommand(storeKeysCmd(app))
	storeCmd.AddCommand(storeResetCmd(app))
	storeCmd.AddCommand(storeMigrateCmd(app))

	return storeCmd
}

// storeSnapshot is what `store show` prints
type storeSnapshot struct {
	Language models.Language      `json:"language"`
	Daily    *models.DailyRecord  `json:"daily"`
	Shown    models.ShownSet      `json:"shown"`
	Streak   *models.StreakRecord `json:"streak"`
	Theme    models.Theme         `json:"theme,omitempty"`
}

// withStore opens the configured store without loading the datasets
func (a *App) withStore(ctx context.Context, fn func(kv store.KeyValueStore) error) error {
	if a.container != nil {
		return fn(a.container.GetStore())
	}
	kv, err := store.Open(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := kv.Close(); closeErr != nil {
			a.logger.Warn(ctx, "Failed to close store", map[string]interface{}{"error": closeErr.Error()})
		}
	}()
	return fn(kv)
}

func storeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the records of the active language as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lang := app.Language()
			return app.withStore(ctx, func(kv store.KeyValueStore) error {
				snapshot := storeSnapshot{Language: lang}

				var daily models.DailyRecord
				if found, err := kv.Get(ctx, store.DailyKey(lang), &daily); err != nil {
					return err
				} else if found {
					snapshot.Daily = &daily
				}
				if _, err := kv.Get(ctx, store.ShownKey(lang), &snapshot.Shown); err != nil {
					return err
				}
				var streak models.StreakRecord
				if found, err := kv.Get(ctx, store.StreakKey, &streak); err != nil {
					return err
				} else if found {
					snapshot.Streak = &streak
				}
				if _, err := kv.Get(ctx, store.ThemeKey, &snapshot.Theme); err != nil {
					return err
				}

				data, err := json.MarshalIndent(snapshot, "", "  ")
				if err != nil {
					return contextutils.WrapError(err, "failed to encode snapshot")
				}
				_, err = fmt.Fprintln(app.Out, string(data))
				return err
			})
		},
	}
}

func storeKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return app.withStore(ctx, func(kv store.KeyValueStore) error {
				lister, ok := kv.(store.Lister)
				if !ok {
					return contextutils.WrapErrorf(contextutils.ErrUnsupportedStore, "%s store cannot list keys", app.cfg.Storage.Driver)
				}
				keys, err := lister.Keys(ctx)
				if err != nil {
					return err
				}
				for _, key := range keys {
					if _, err := fmt.Fprintln(app.Out, key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func storeResetCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the persisted records of the active language",
		Long: `Remove the daily record and the shown set of the active language so the next
visit starts a new cycle. With --all the streak and the theme are removed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lang := app.Language()
			keys := store.LanguageKeys(lang)
			if all {
				keys = append(keys, store.StreakKey, store.ThemeKey)
			}

			return app.withStore(ctx, func(kv store.KeyValueStore) error {
				for _, key := range keys {
					if err := kv.Remove(ctx, key); err != nil {
						return err
					}
				}
				app.logger.Info(ctx, "Store reset", map[string]interface{}{
					"language": lang.String(),
					"keys":     keys,
				})
				_, err := fmt.Fprintf(app.Out, "removed %d keys for %s\n", len(keys), lang)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also remove the streak and the theme")

	return cmd
}

func storeMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the SQL schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dialect, err := database.DialectFor(app.cfg.Storage.Driver)
			if err != nil {
				return err
			}
			if err := database.NewManager(app.logger).RunMigrations(ctx, dialect, app.cfg.Storage); err != nil {
				return err
			}
			_, err = fmt.Fprintf(app.Out, "%s schema is up to date\n", dialect.Name)
			return err
		},
	}
}
