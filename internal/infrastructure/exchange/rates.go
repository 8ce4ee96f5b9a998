// Package exchange adapta los servicios externos de tasas de cambio y geolocalización.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/domain"
)

const defaultTimeout = 5 * time.Second

// RatesClient consulta un servicio estilo open.er-api: GET {url}/{base}.
type RatesClient struct {
	url  string
	http *http.Client
}

// NewRatesClient crea el cliente. hc nil usa un cliente con timeout de 5s.
func NewRatesClient(url string, hc *http.Client) *RatesClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &RatesClient{url: strings.TrimRight(url, "/"), http: hc}
}

type ratesPayload struct {
	Result   string                     `json:"result"`
	BaseCode string                     `json:"base_code"`
	Rates    map[string]decimal.Decimal `json:"rates"`
	Error    string                     `json:"error-type"`
}

// FetchRates implementa ports.RateProvider.
func (c *RatesClient) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	var p ratesPayload
	if err := getJSON(ctx, c.http, c.url+"/"+strings.ToUpper(base), &p); err != nil {
		return nil, err
	}
	if p.Result != "" && p.Result != "success" {
		return nil, fmt.Errorf("tasas: servicio respondió %q (%s): %w", p.Result, p.Error, domain.ErrTransient)
	}
	if len(p.Rates) == 0 {
		return nil, fmt.Errorf("tasas: tabla vacía: %w", domain.ErrInvalidInput)
	}
	out := make(map[string]decimal.Decimal, len(p.Rates))
	for code, rate := range p.Rates {
		if rate.IsPositive() {
			out[strings.ToUpper(code)] = rate
		}
	}
	return out, nil
}

// getJSON GET + decodificación. Fallos de red y 5xx se marcan como transitorios.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("armar petición %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w: %w", url, domain.ErrTransient, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("GET %s: status %d: %w", url, res.StatusCode, domain.ErrTransient)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %w", url, res.StatusCode, domain.ErrInvalidInput)
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decodificar: %w", url, err)
	}
	return nil
}
