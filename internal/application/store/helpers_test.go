package store_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/infrastructure/localstore"
)

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func testOpts() store.Options {
	return store.Options{Logger: zerolog.Nop(), Now: func() time.Time { return testNow }}
}

func newRepo() *localstore.MemoryRepository {
	return localstore.NewMemoryRepository()
}

// failingRepo simula un almacenamiento que rechaza todas las escrituras.
type failingRepo struct {
	mu    sync.Mutex
	saves int
}

func (r *failingRepo) Load(context.Context, string) ([]byte, error) { return nil, nil }

func (r *failingRepo) Save(context.Context, string, []byte) error {
	r.mu.Lock()
	r.saves++
	r.mu.Unlock()
	return errors.New("disco lleno")
}

func (r *failingRepo) Delete(context.Context, string) error { return nil }
