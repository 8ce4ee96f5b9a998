package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims campos que el cliente lee del token de sesión emitido por el backend.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ResolvedUserID devuelve el identificador de usuario: user_id si viene, si no sub.
func (c *Claims) ResolvedUserID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Expired indica si el claim exp ya pasó respecto a now. Sin exp no expira.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(c.ExpiresAt.Time)
}

// Inspect decodifica el token SIN verificar la firma: la firma la valida el backend,
// el cliente solo necesita leer los claims para reconciliar el estado local.
func Inspect(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("jwt: token vacío")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("jwt: token malformado: %w", err)
	}
	return claims, nil
}
