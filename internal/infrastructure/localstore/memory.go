package localstore

import (
	"context"
	"sync"

	"github.com/jhoicas/channah-state/internal/domain/repository"
)

var _ repository.StateRepository = (*MemoryRepository)(nil)

// MemoryRepository implementación en memoria del puerto StateRepository.
// Útil para tests y sesiones efímeras; se pierde al reiniciar el proceso.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryRepository construye el adaptador vacío.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

// Load devuelve una copia del blob o (nil, nil) si no existe.
func (r *MemoryRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Save sobrescribe el blob completo.
func (r *MemoryRepository) Save(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete elimina la clave; no falla si no existe.
func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}
