package letter

import (
	"context"
	"fmt"

	"go-elms/internal/config"
	"go-elms/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStore picks the backend matching the configured storage.
func NewStore(lc fx.Lifecycle, db *database.MongodbDB, logger *zap.Logger) Store {
	if db == nil {
		return NewMemoryStore()
	}
	store := NewMongoStore(db)
	lc.Append(indexHook(store, logger))
	return store
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// indexHook aborts startup when the unique indexes cannot be created, since
// the store relies on them to reject duplicate references.
func indexHook(store indexer, logger *zap.Logger) fx.Hook {
	return fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.EnsureIndexes(ctx); err != nil {
				logger.Error("Failed to create letter indexes", zap.Error(err))
				return fmt.Errorf("letter indexes: %w", err)
			}
			return nil
		},
	}
}

func NewReferenceGenerator(cfg *config.Config, db *database.MongodbDB, store Store) ReferenceGenerator {
	if db == nil {
		return NewMemoryReferenceGenerator(cfg.ReferencePrefix, store)
	}
	return NewMongoReferenceGenerator(cfg.ReferencePrefix, db, store)
}
