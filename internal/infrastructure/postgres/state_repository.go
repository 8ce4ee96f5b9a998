package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/channah-state/internal/domain/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// Querier interfaz mínima común a *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS client_state (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// StateRepo implementación del puerto StateRepository sobre PostgreSQL (una fila por clave).
type StateRepo struct {
	q Querier
}

// NewStateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStateRepository(q Querier) *StateRepo {
	return &StateRepo{q: q}
}

// EnsureSchema crea la tabla client_state si no existe.
func (r *StateRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create client_state: %w", err)
	}
	return nil
}

// Load obtiene el blob de la clave; (nil, nil) si no existe.
func (r *StateRepo) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.q.QueryRow(ctx, `SELECT value::text FROM client_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client_state %s: %w", key, err)
	}
	return []byte(value), nil
}

// Save hace upsert del blob completo.
func (r *StateRepo) Save(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("upsert client_state %s: %w", key, err)
	}
	return nil
}

// Delete elimina la fila de la clave.
func (r *StateRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete client_state %s: %w", key, err)
	}
	return nil
}
