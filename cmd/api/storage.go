package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/channah-state/internal/domain/repository"
	"github.com/jhoicas/channah-state/internal/infrastructure/localstore"
	infmongo "github.com/jhoicas/channah-state/internal/infrastructure/mongo"
	"github.com/jhoicas/channah-state/internal/infrastructure/postgres"
	infredis "github.com/jhoicas/channah-state/internal/infrastructure/redis"
	"github.com/jhoicas/channah-state/pkg/config"
)

// openStorage abre el adaptador de persistencia según STORAGE_DRIVER. closeFn libera conexiones.
func openStorage(ctx context.Context, cfg *config.Config) (repo repository.StateRepository, closeFn func(), err error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case "", "file":
		r, err := localstore.NewFileRepository(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return r, noop, nil
	case "memory":
		return localstore.NewMemoryRepository(), noop, nil
	case "redis":
		rdb, err := infredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return infredis.NewStateRepository(rdb, cfg.Storage.Namespace), func() { _ = rdb.Close() }, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		r := postgres.NewStateRepository(pool)
		if err := r.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return r, pool.Close, nil
	case "mongo":
		client, err := infmongo.NewClient(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return infmongo.NewStateRepository(client, cfg.Mongo.DBName), func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage.Driver)
	}
}
