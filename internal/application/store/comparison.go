package store

import (
	"context"
	"fmt"

	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
)

type comparisonState struct {
	Items []entity.ComparisonEntry `json:"items"`
}

// repair quita duplicados y conserva las primeras entity.MaxComparisonEntries entradas.
func (st *comparisonState) repair() {
	items := make([]entity.ComparisonEntry, 0, entity.MaxComparisonEntries)
	for _, e := range st.Items {
		if len(items) == entity.MaxComparisonEntries {
			break
		}
		if indexComparison(items, e.ID) < 0 {
			items = append(items, e)
		}
	}
	st.Items = items
}

// ComparisonStore comparador de productos, máximo entity.MaxComparisonEntries.
type ComparisonStore struct {
	*base[comparisonState]
}

// NewComparisonStore construye el store y lo siembra con el estado persistido.
func NewComparisonStore(ctx context.Context, repo repository.StateRepository, opts Options) *ComparisonStore {
	return &ComparisonStore{base: newBase(ctx, repo, KeyComparison, opts, comparisonState{Items: []entity.ComparisonEntry{}})}
}

func indexComparison(items []entity.ComparisonEntry, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add agrega la entrada. Si ya está es un no-op. Con el comparador lleno devuelve
// domain.ErrLimitExceeded y el conjunto no cambia (no se desaloja ninguna entrada).
func (s *ComparisonStore) Add(e entity.ComparisonEntry) error {
	var err error
	s.mutate(func(st *comparisonState) bool {
		if indexComparison(st.Items, e.ID) >= 0 {
			return false
		}
		if len(st.Items) >= entity.MaxComparisonEntries {
			err = fmt.Errorf("comparador con %d productos: %w", len(st.Items), domain.ErrLimitExceeded)
			return false
		}
		e.AddedAt = s.opts.now()
		st.Items = append(st.Items, e)
		return true
	})
	return err
}

// Remove quita la entrada. No-op si no existe.
func (s *ComparisonStore) Remove(id string) {
	s.mutate(func(st *comparisonState) bool {
		i := indexComparison(st.Items, id)
		if i < 0 {
			return false
		}
		st.Items = append(st.Items[:i], st.Items[i+1:]...)
		return true
	})
}

// Has indica si el producto está en el comparador.
func (s *ComparisonStore) Has(id string) bool {
	ok := false
	s.read(func(st *comparisonState) { ok = indexComparison(st.Items, id) >= 0 })
	return ok
}

// CanAdd indica si queda espacio.
func (s *ComparisonStore) CanAdd() bool {
	return s.Count() < entity.MaxComparisonEntries
}

// Count cantidad de entradas.
func (s *ComparisonStore) Count() int {
	n := 0
	s.read(func(st *comparisonState) { n = len(st.Items) })
	return n
}

// List copia de las entradas en orden de inserción.
func (s *ComparisonStore) List() []entity.ComparisonEntry {
	var out []entity.ComparisonEntry
	s.read(func(st *comparisonState) {
		out = append(make([]entity.ComparisonEntry, 0, len(st.Items)), st.Items...)
	})
	return out
}

// Clear vacía el comparador.
func (s *ComparisonStore) Clear() {
	s.mutate(func(st *comparisonState) bool {
		if len(st.Items) == 0 {
			return false
		}
		st.Items = []entity.ComparisonEntry{}
		return true
	})
}
