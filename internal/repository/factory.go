package repository

import (
	"context"
	"fmt"

	"github.com/Werneck0live/mm-store/internal/config"
	"github.com/Werneck0live/mm-store/internal/db"
)

// New abre o backend escolhido em STORE_BACKEND e garante o schema/índices.
//
//	"postgres" - DATABASE_URL (padrão)
//	"sqlite"   - arquivo em SQLITE_PATH
//	"mongo"    - MONGO_URI / MONGO_DB
func New(ctx context.Context, cfg *config.Config) (StoreRepository, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres, "":
		gdb, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, NewGormStoreRepository(gdb))
	case config.BackendSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, NewGormStoreRepository(gdb))
	case config.BackendMongo:
		client, err := db.NewMongoClient(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		repo := NewMongoStoreRepository(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: postgres, sqlite, mongo)", cfg.StoreBackend)
	}
}

func migrated(ctx context.Context, repo *GormStoreRepository) (StoreRepository, error) {
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repo, nil
}
