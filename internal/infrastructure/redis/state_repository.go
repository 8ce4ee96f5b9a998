package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/channah-state/internal/domain/repository"
	"github.com/jhoicas/channah-state/pkg/config"
)

var _ repository.StateRepository = (*StateRepository)(nil)

// NewClient abre el cliente Redis y verifica la conexión con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// StateRepository adaptador del puerto StateRepository sobre Redis. Claves: <namespace>:<key>.
type StateRepository struct {
	rdb       *redis.Client
	namespace string
}

// NewStateRepository construye el adaptador.
func NewStateRepository(rdb *redis.Client, namespace string) *StateRepository {
	return &StateRepository{rdb: rdb, namespace: namespace}
}

func (r *StateRepository) key(k string) string {
	if r.namespace == "" {
		return k
	}
	return r.namespace + ":" + k
}

// Load devuelve el blob o (nil, nil) si la clave no existe.
func (r *StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return b, nil
}

// Save sobrescribe el blob sin expiración.
func (r *StateRepository) Save(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Delete elimina la clave.
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis: del %s: %w", key, err)
	}
	return nil
}
