package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhoicas/channah-state/internal/domain"
)

// GeoClient detecta el país por IP con un servicio estilo ipapi ({"country_code": "NG"}).
type GeoClient struct {
	url  string
	http *http.Client
}

// NewGeoClient crea el cliente. hc nil usa un cliente con timeout de 5s.
func NewGeoClient(url string, hc *http.Client) *GeoClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &GeoClient{url: url, http: hc}
}

// DetectCountry implementa ports.CountryDetector.
func (c *GeoClient) DetectCountry(ctx context.Context) (string, error) {
	var p struct {
		CountryCode string `json:"country_code"`
		Country     string `json:"country"`
	}
	if err := getJSON(ctx, c.http, c.url, &p); err != nil {
		return "", err
	}
	code := strings.ToUpper(strings.TrimSpace(p.CountryCode))
	if code == "" && len(p.Country) == 2 {
		code = strings.ToUpper(p.Country)
	}
	if code == "" {
		return "", fmt.Errorf("geo: país vacío: %w", domain.ErrNotFound)
	}
	return code, nil
}
