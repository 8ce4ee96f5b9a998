// Package auth reconcilia la sesión persistida con el backend al arrancar.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jhoicas/channah-state/internal/application/ports"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/pkg/jwt"
)

// SessionStore lo que el bootstrap necesita del store de sesión.
type SessionStore interface {
	State() entity.Session
	Login(u entity.User)
	Logout()
	UpdateUser(u entity.User) bool
}

// statusCoder errores HTTP que exponen el status (gateway.APIError).
type statusCoder interface {
	error
	StatusCode() int
}

// Bootstrap corre una vez por arranque, antes de confiar en IsAuthenticated.
type Bootstrap struct {
	session   SessionStore
	tokens    ports.TokenSource
	validator ports.SessionValidator
	log       zerolog.Logger
}

// NewBootstrap construye el bootstrap.
func NewBootstrap(session SessionStore, tokens ports.TokenSource, validator ports.SessionValidator, log zerolog.Logger) *Bootstrap {
	return &Bootstrap{
		session:   session,
		tokens:    tokens,
		validator: validator,
		log:       log.With().Str("component", "auth-bootstrap").Logger(),
	}
}

// Run corrige en el acto una sesión local sin token y lanza la validación contra el backend
// en segundo plano. No bloquea: el canal devuelto se cierra cuando termina la validación.
func (b *Bootstrap) Run(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	st := b.session.State()
	token := b.tokens.SessionToken()

	if token == "" {
		if st.IsAuthenticated {
			b.log.Info().Msg("sesión local sin token, se cierra")
			b.session.Logout()
		}
		close(done)
		return done
	}

	if claims, err := jwt.Inspect(token); err == nil && st.User != nil {
		if sub := claims.ResolvedUserID(); sub != "" && sub != st.User.ID {
			b.log.Info().Str("cached", st.User.ID).Str("token", sub).Msg("el token pertenece a otro usuario, se descarta la sesión local")
			b.session.Logout()
		}
	}

	go func() {
		defer close(done)
		b.validate(ctx)
	}()
	return done
}

func (b *Bootstrap) validate(ctx context.Context) {
	user, err := b.validator.CurrentUser(ctx)
	if ctx.Err() != nil {
		return
	}
	switch {
	case err == nil && user != nil:
		if !b.session.UpdateUser(*user) {
			b.session.Login(*user)
		}
		b.log.Debug().Str("user", user.ID).Msg("sesión válida")
	case isDefinitiveUnauthorized(err):
		b.log.Info().Err(err).Msg("sesión rechazada por el backend")
		b.session.Logout()
	default:
		// error de red: se conserva el estado optimistamente
		b.log.Warn().Err(err).Msg("no se pudo validar la sesión, se conserva el estado local")
	}
}

func isDefinitiveUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrUnauthorized) {
		return true
	}
	var sc statusCoder
	return errors.As(err, &sc) && sc.StatusCode() == http.StatusUnauthorized
}
