package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/infrastructure/gateway"
)

func newClient(t *testing.T, url string, mod func(*gateway.Options)) *gateway.Client {
	t.Helper()
	opts := gateway.Options{BaseURL: url, Timeout: 2 * time.Second, LoginURL: "/login", Logger: zerolog.Nop()}
	if mod != nil {
		mod(&opts)
	}
	c, err := gateway.NewClient(opts)
	require.NoError(t, err)
	return c
}

// ──────────────────────────────────────────────────────────────────────────────
// CSRF
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_CSRFSoloEnMetodosQueCambianEstado(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Method] = r.Header.Get("X-CSRF-Token")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil)
	c.SetCookies(&http.Cookie{Name: "csrf_token", Value: "tok-123"})
	ctx := context.Background()

	_, err := c.Get(ctx, "/products", nil)
	require.NoError(t, err)
	_, err = c.Post(ctx, "/orders", map[string]int{"n": 1}, nil)
	require.NoError(t, err)
	_, err = c.Delete(ctx, "/orders/1", nil)
	require.NoError(t, err)

	assert.Empty(t, seen[http.MethodGet], "GET no lleva CSRF")
	assert.Equal(t, "tok-123", seen[http.MethodPost])
	assert.Equal(t, "tok-123", seen[http.MethodDelete])
}

func TestClient_NewClientRechazaURLInvalida(t *testing.T) {
	_, err := gateway.NewClient(gateway.Options{BaseURL: "sin-esquema"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Refresco silencioso
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_RefrescaYRepiteUnaVez(t *testing.T) {
	var refreshed atomic.Bool
	var refreshes, calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshes.Add(1)
			assert.Empty(t, r.Header.Get("X-CSRF-Token"), "el refresco no lleva CSRF")
			refreshed.Store(true)
			w.WriteHeader(http.StatusOK)
		default:
			calls.Add(1)
			if !refreshed.Load() {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
		}
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil)
	var out struct {
		Data struct {
			OK bool `json:"ok"`
		} `json:"data"`
	}
	resp, err := c.Get(context.Background(), "/cart", &out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, out.Data.OK)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(2), calls.Load(), "original + una repetición")
}

func TestClient_RefrescosConcurrentesSeAgrupan(t *testing.T) {
	var refreshed atomic.Bool
	var refreshes, arrivals atomic.Int32
	bothArrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshes.Add(1)
			time.Sleep(100 * time.Millisecond)
			refreshed.Store(true)
			w.WriteHeader(http.StatusOK)
			return
		}
		if !refreshed.Load() {
			if arrivals.Add(1) == 2 {
				close(bothArrived)
			}
			select {
			case <-bothArrived:
			case <-time.After(2 * time.Second):
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, nil)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "/orders", nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), refreshes.Load(), "un solo refresco para ambos 401")
}

func TestClient_401TrasRefrescarExpiraLaSesion(t *testing.T) {
	var expired atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, func(o *gateway.Options) {
		o.OnSessionExpired = func() { expired.Add(1) }
	})
	_, err := c.Get(context.Background(), "/me", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, int32(1), expired.Load())
}

func TestClient_RefrescoRechazadoExpiraLaSesion(t *testing.T) {
	var expired atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, func(o *gateway.Options) {
		o.OnSessionExpired = func() { expired.Add(1) }
	})
	_, err := c.Post(context.Background(), "/orders", map[string]string{}, nil)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, int32(1), expired.Load())
}

func TestClient_RefrescoSinRedNoCierraSesion(t *testing.T) {
	var expired atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			time.Sleep(300 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, func(o *gateway.Options) {
		o.Timeout = 100 * time.Millisecond
		o.OnSessionExpired = func() { expired.Add(1) }
	})
	_, err := c.Get(context.Background(), "/cart", nil)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, int32(0), expired.Load())
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de aplicación y transporte
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_ErrorDeAplicacionNotificaYNoTocaSesion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"quantity debe ser positiva"}]}`))
	}))
	defer srv.Close()

	notifier := gateway.NewChanNotifier(1)
	var expired atomic.Int32
	c := newClient(t, srv.URL, func(o *gateway.Options) {
		o.Notifier = notifier
		o.OnSessionExpired = func() { expired.Add(1) }
	})

	_, err := c.Put(context.Background(), "/cart/items/1", map[string]int{"quantity": -1}, nil)
	require.Error(t, err)
	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "quantity debe ser positiva", apiErr.Message)
	assert.True(t, gateway.IsStatus(err, http.StatusUnprocessableEntity))

	select {
	case n := <-notifier.C:
		assert.Equal(t, "quantity debe ser positiva", n.Message)
		assert.Equal(t, http.MethodPut, n.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("el notifier no recibió el aviso")
	}
	assert.Equal(t, int32(0), expired.Load())
}

func TestClient_MensajePorDefectoEsElTextoDelStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, nil).Get(context.Background(), "/x", nil)
	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())
}

func TestClient_SinRespuestaEsTransitorio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url, nil).Get(context.Background(), "/x", nil)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestClient_CuerpoDecodificado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"echo":"` + in["name"] + `"}`))
	}))
	defer srv.Close()

	var out struct {
		Echo string `json:"echo"`
	}
	_, err := newClient(t, srv.URL, nil).Patch(context.Background(), "/x", map[string]string{"name": "Ama"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Ama", out.Echo)
}
