package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/application/dto"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

// couponPayload forma del cupón en el backend.
type couponPayload struct {
	Code          string           `json:"code"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MinOrder      *decimal.Decimal `json:"min_order_amount"`
	Valid         *bool            `json:"valid"`
}

type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

// ValidateCoupon valida el código contra POST /coupons/validate. Implementa ports.CouponValidator.
func (c *Client) ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*entity.Coupon, error) {
	resp, err := c.Post(ctx, "/coupons/validate", map[string]any{"code": code, "order_total": subtotal}, nil)
	if err != nil {
		return nil, err
	}
	p, err := dto.DecodeData[couponPayload](resp.Data)
	if err != nil {
		return nil, fmt.Errorf("cupón %s: %w", code, err)
	}
	if p.Valid != nil && !*p.Valid {
		return nil, fmt.Errorf("cupón %s no válido: %w", code, domain.ErrInvalidInput)
	}
	kind := strings.ToLower(p.DiscountType)
	if kind != entity.DiscountPercent && kind != entity.DiscountFixed {
		return nil, fmt.Errorf("cupón %s: tipo de descuento %q: %w", code, p.DiscountType, domain.ErrInvalidInput)
	}
	if p.Code == "" {
		p.Code = code
	}
	return &entity.Coupon{Code: p.Code, DiscountType: kind, Value: p.DiscountValue, MinOrder: p.MinOrder}, nil
}

// CurrentUser valida la sesión con GET MePath y devuelve el perfil. Implementa ports.SessionValidator.
func (c *Client) CurrentUser(ctx context.Context) (*entity.User, error) {
	resp, err := c.Get(ctx, c.opts.MePath, nil)
	if err != nil {
		return nil, err
	}
	p, err := dto.DecodeData[userPayload](resp.Data)
	if err != nil {
		return nil, fmt.Errorf("perfil: %w", err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("perfil sin id: %w", domain.ErrInvalidInput)
	}
	return &entity.User{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
	}, nil
}

// CookieTokenSource lee el token de sesión de la cookie del backend. Implementa ports.TokenSource.
type CookieTokenSource struct {
	Client *Client
	Name   string
}

// SessionToken implementa ports.TokenSource.
func (s CookieTokenSource) SessionToken() string {
	return s.Client.Cookie(s.Name)
}
