package store

import (
	"context"

	"notlikethat/internal/config"
	"notlikethat/internal/database"
	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"
)

// Open builds the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (KeyValueStore, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "postgres":
		db, dialect, err := database.NewManager(logger).Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Debug(ctx, "Key-value store opened", map[string]interface{}{
			"driver": dialect.Name,
			"target": describeTarget(cfg),
		})
		return NewSQLStore(db, dialect), nil
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrUnsupportedStore, "unknown storage driver %q", cfg.Driver)
	}
}

func describeTarget(cfg config.StorageConfig) string {
	if cfg.Driver == "sqlite" {
		return cfg.Path
	}
	return contextutils.MaskStorageURL(cfg.URL)
}
