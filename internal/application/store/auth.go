package store

import (
	"context"

	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
)

// AuthStore sesión local cacheada. El token vive en la cookie del gateway; aquí solo el perfil.
type AuthStore struct {
	*base[entity.Session]
}

// NewAuthStore construye el store y lo siembra con la sesión persistida.
func NewAuthStore(ctx context.Context, repo repository.StateRepository, opts Options) *AuthStore {
	return &AuthStore{base: newBase(ctx, repo, KeyAuth, opts, entity.Session{})}
}

// Login marca la sesión como autenticada con el usuario dado.
func (s *AuthStore) Login(u entity.User) {
	s.mutate(func(st *entity.Session) bool {
		st.IsAuthenticated = true
		st.User = &u
		return true
	})
}

// Logout limpia la sesión. No-op si ya estaba cerrada.
func (s *AuthStore) Logout() {
	s.mutate(func(st *entity.Session) bool {
		if !st.IsAuthenticated && st.User == nil {
			return false
		}
		*st = entity.Session{}
		return true
	})
}

// UpdateUser reemplaza el perfil cacheado sin tocar el flag de autenticación.
// Sin sesión abierta es un no-op.
func (s *AuthStore) UpdateUser(u entity.User) bool {
	return s.mutate(func(st *entity.Session) bool {
		if !st.IsAuthenticated {
			return false
		}
		st.User = &u
		return true
	})
}

// State devuelve una copia de la sesión.
func (s *AuthStore) State() entity.Session {
	var out entity.Session
	s.read(func(st *entity.Session) {
		out.IsAuthenticated = st.IsAuthenticated
		if st.User != nil {
			u := *st.User
			out.User = &u
		}
	})
	return out
}

// User atajo al perfil cacheado.
func (s *AuthStore) User() (entity.User, bool) {
	st := s.State()
	if st.User == nil {
		return entity.User{}, false
	}
	return *st.User, true
}
