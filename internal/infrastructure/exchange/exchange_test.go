package exchange_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/infrastructure/exchange"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRates_ParseaLaTabla(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"USD":1,"gbp":0.79,"XXX":0}}`))
	}))
	defer srv.Close()

	rates, err := exchange.NewRatesClient(srv.URL+"/", nil).FetchRates(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, "/USD", path)
	assert.Equal(t, "0.79", rates["GBP"].String())
	assert.NotContains(t, rates, "XXX", "tasas no positivas se descartan")
}

func TestFetchRates_Errores(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"servicio caído", http.StatusBadGateway, ``, domain.ErrTransient},
		{"límite", http.StatusTooManyRequests, ``, domain.ErrTransient},
		{"resultado error", http.StatusOK, `{"result":"error","error-type":"unsupported-code"}`, domain.ErrTransient},
		{"tabla vacía", http.StatusOK, `{"result":"success","rates":{}}`, domain.ErrInvalidInput},
		{"no encontrado", http.StatusNotFound, ``, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, tc.status, tc.body)
			_, err := exchange.NewRatesClient(srv.URL, nil).FetchRates(context.Background(), "USD")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDetectCountry(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"country_code":"ng"}`)
	code, err := exchange.NewGeoClient(srv.URL, nil).DetectCountry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NG", code)

	srv = serve(t, http.StatusOK, `{"country":"KE"}`)
	code, err = exchange.NewGeoClient(srv.URL, nil).DetectCountry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "KE", code)

	srv = serve(t, http.StatusOK, `{}`)
	_, err = exchange.NewGeoClient(srv.URL, nil).DetectCountry(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
