// Package currency mantiene la moneda de visualización y la tabla de tasas.
// Nada de esto se persiste: las tasas se vuelven a pedir en cada sesión.
package currency

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/application/ports"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/pkg/money"
)

// Store moneda seleccionada + tabla de tasas respecto a entity.BaseCurrency.
type Store struct {
	rates    ports.RateProvider
	detector ports.CountryDetector
	log      zerolog.Logger

	mu       sync.RWMutex
	selected entity.Currency
	explicit bool // el usuario eligió moneda; la detección ya no la pisa
	table    map[string]decimal.Decimal
}

// NewStore construye el store con la moneda por defecto. Un código desconocido cae a la base.
func NewStore(rates ports.RateProvider, detector ports.CountryDetector, defaultCode string, log zerolog.Logger) *Store {
	cur, ok := entity.CurrencyByCode(strings.ToUpper(defaultCode))
	if !ok {
		cur, _ = entity.CurrencyByCode(entity.BaseCurrency)
	}
	return &Store{
		rates:    rates,
		detector: detector,
		log:      log.With().Str("component", "currency").Logger(),
		selected: cur,
		table:    map[string]decimal.Decimal{},
	}
}

// Selected moneda de visualización actual.
func (s *Store) Selected() entity.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetCurrency selecciona la moneda por código (explícito del usuario).
func (s *Store) SetCurrency(code string) error {
	cur, ok := entity.CurrencyByCode(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return fmt.Errorf("moneda %q: %w", code, domain.ErrInvalidInput)
	}
	s.mu.Lock()
	s.selected = cur
	s.explicit = true
	s.mu.Unlock()
	return nil
}

// Rates copia de la tabla de tasas vigente.
func (s *Store) Rates() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(s.table))
	for k, v := range s.table {
		out[k] = v
	}
	return out
}

// FetchExchangeRates reemplaza la tabla completa. Si falla, la tabla anterior queda intacta
// y se devuelve el error.
func (s *Store) FetchExchangeRates(ctx context.Context) error {
	if s.rates == nil {
		return fmt.Errorf("sin proveedor de tasas: %w", domain.ErrInvalidInput)
	}
	table, err := s.rates.FetchRates(ctx, entity.BaseCurrency)
	if err != nil {
		s.log.Warn().Err(err).Msg("no se pudieron actualizar las tasas, se conserva la tabla anterior")
		return fmt.Errorf("tasas de cambio: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	fresh := make(map[string]decimal.Decimal, len(table))
	for k, v := range table {
		fresh[strings.ToUpper(k)] = v
	}
	s.mu.Lock()
	s.table = fresh
	s.mu.Unlock()
	s.log.Debug().Int("rates", len(fresh)).Msg("tasas actualizadas")
	return nil
}

// DetectCountry lanza la detección en segundo plano y vuelve de inmediato. El canal se cierra
// al terminar. Un fallo se ignora; un resultado posterior a la cancelación de ctx se descarta;
// nunca reemplaza una moneda elegida explícitamente.
func (s *Store) DetectCountry(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if s.detector == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		country, err := s.detector.DetectCountry(ctx)
		if err != nil {
			s.log.Debug().Err(err).Msg("detección de país fallida, se mantiene la moneda actual")
			return
		}
		if ctx.Err() != nil {
			return
		}
		cur, ok := entity.CurrencyForCountry(strings.ToUpper(country))
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.explicit {
			return
		}
		s.selected = cur
	}()
	return done
}

func (s *Store) snapshot() (entity.Currency, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.table[s.selected.Code]
	if !ok {
		rate = decimal.NewFromInt(1)
	}
	return s.selected, rate
}

// Convert monto base → moneda seleccionada, redondeado. Tasa ausente = 1.
func (s *Store) Convert(amount decimal.Decimal) decimal.Decimal {
	_, rate := s.snapshot()
	return money.Round2(amount.Mul(rate))
}

// ConvertAndFormat convierte y formatea con símbolo y locale de la moneda seleccionada.
// No hace red: depende solo del estado actual.
func (s *Store) ConvertAndFormat(amount decimal.Decimal) string {
	cur, rate := s.snapshot()
	return money.Format(amount.Mul(rate), cur.Symbol, cur.Locale)
}
