package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/application/auth"
	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/infrastructure/localstore"
	"github.com/jhoicas/channah-state/pkg/jwt"
)

type staticToken string

func (s staticToken) SessionToken() string { return string(s) }

type validatorStub struct {
	user  *entity.User
	err   error
	calls int
}

func (v *validatorStub) CurrentUser(context.Context) (*entity.User, error) {
	v.calls++
	return v.user, v.err
}

// statusErr imita un error HTTP del gateway.
type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) StatusCode() int { return int(e) }

func loggedIn(t *testing.T, u entity.User) *store.AuthStore {
	t.Helper()
	s := store.NewAuthStore(context.Background(), localstore.NewMemoryRepository(), store.Options{Logger: zerolog.Nop()})
	s.Login(u)
	return s
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{UserID: userID}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el bootstrap no terminó")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Bootstrap de sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestBootstrap_SinTokenCierraEnElActo(t *testing.T) {
	session := loggedIn(t, entity.User{ID: "u1"})
	v := &validatorStub{}

	done := auth.NewBootstrap(session, staticToken(""), v, zerolog.Nop()).Run(context.Background())

	assert.False(t, session.State().IsAuthenticated, "la corrección es síncrona")
	wait(t, done)
	assert.Equal(t, 0, v.calls, "sin token no se consulta al backend")
}

func TestBootstrap_ValidacionExitosaActualizaPerfil(t *testing.T) {
	session := loggedIn(t, entity.User{ID: "u1", FirstName: "Ama"})
	v := &validatorStub{user: &entity.User{ID: "u1", FirstName: "Ama K.", Role: "vendor"}}

	wait(t, auth.NewBootstrap(session, staticToken(tokenFor(t, "u1")), v, zerolog.Nop()).Run(context.Background()))

	u, ok := session.User()
	require.True(t, ok)
	assert.Equal(t, "Ama K.", u.FirstName)
	assert.True(t, session.State().IsAuthenticated)
}

func TestBootstrap_TokenSinSesionLocalAbreSesion(t *testing.T) {
	session := store.NewAuthStore(context.Background(), localstore.NewMemoryRepository(), store.Options{Logger: zerolog.Nop()})
	v := &validatorStub{user: &entity.User{ID: "u7"}}

	wait(t, auth.NewBootstrap(session, staticToken("opaco"), v, zerolog.Nop()).Run(context.Background()))

	u, ok := session.User()
	require.True(t, ok)
	assert.Equal(t, "u7", u.ID)
}

func TestBootstrap_401DefinitivoCierraSesion(t *testing.T) {
	cases := map[string]error{
		"sesión expirada": fmt.Errorf("GET /auth/me: %w", domain.ErrSessionExpired),
		"no autorizado":   domain.ErrUnauthorized,
		"status 401":      statusErr(401),
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			session := loggedIn(t, entity.User{ID: "u1"})
			wait(t, auth.NewBootstrap(session, staticToken("tok"), &validatorStub{err: err}, zerolog.Nop()).Run(context.Background()))
			assert.False(t, session.State().IsAuthenticated)
		})
	}
}

func TestBootstrap_ErrorTransitorioConservaEstado(t *testing.T) {
	for name, err := range map[string]error{"red": domain.ErrTransient, "500": statusErr(500), "otro": errors.New("x")} {
		t.Run(name, func(t *testing.T) {
			session := loggedIn(t, entity.User{ID: "u1"})
			wait(t, auth.NewBootstrap(session, staticToken("tok"), &validatorStub{err: err}, zerolog.Nop()).Run(context.Background()))
			assert.True(t, session.State().IsAuthenticated)
		})
	}
}

func TestBootstrap_TokenDeOtroUsuarioDescartaCache(t *testing.T) {
	session := loggedIn(t, entity.User{ID: "u1"})
	v := &validatorStub{err: domain.ErrTransient}

	done := auth.NewBootstrap(session, staticToken(tokenFor(t, "u2")), v, zerolog.Nop()).Run(context.Background())
	assert.False(t, session.State().IsAuthenticated)
	wait(t, done)
}
