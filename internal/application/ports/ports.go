package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// CouponValidator valida un cupón contra el backend para un subtotal dado.
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*entity.Coupon, error)
}

// RateProvider obtiene la tabla de tasas (código → multiplicador respecto a la moneda base).
type RateProvider interface {
	FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// CountryDetector resuelve el país del usuario (best-effort, p. ej. por IP).
type CountryDetector interface {
	DetectCountry(ctx context.Context) (string, error)
}

// SessionValidator valida la sesión actual contra el backend y devuelve el perfil.
type SessionValidator interface {
	CurrentUser(ctx context.Context) (*entity.User, error)
}

// TokenSource lee el token de sesión vigente ("" si no hay).
type TokenSource interface {
	SessionToken() string
}

// FileUploader sube un archivo y devuelve su URL pública.
type FileUploader interface {
	Upload(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error)
}
