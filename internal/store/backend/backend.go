// Package backend selects and opens the configured store implementation.
package backend

import (
	"context"
	"fmt"

	"conference/internal/config"
	"conference/internal/store"
	"conference/internal/store/memory"
	"conference/internal/store/mongo"
	"conference/internal/store/postgres"
)

// Open connects the backend named by cfg.StoreBackend and prepares its schema.
func Open(ctx context.Context, cfg config.App) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return memory.New(), nil
	case "mongo":
		s, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil
	case "postgres", "":
		db, err := store.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s := postgres.New(db)
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
