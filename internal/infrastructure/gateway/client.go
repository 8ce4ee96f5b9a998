// Package gateway es el único punto de salida HTTP hacia el backend del marketplace.
// Adjunta el token CSRF en peticiones que cambian estado y, ante el primer 401 de una
// petición, intenta un refresco silencioso y la repite una sola vez.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/pkg/config"
)

const maxBodyBytes = 4 << 20

// Options configuración del cliente.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	CSRFCookie  string
	CSRFHeader  string
	RefreshPath string
	MePath      string
	LoginURL    string

	// HTTPClient opcional; si no trae Jar se le asigna uno.
	HTTPClient *http.Client
	Notifier   Notifier
	// OnSessionExpired se invoca ante un 401 terminal (p. ej. AuthStore.Logout).
	OnSessionExpired func()
	Logger           zerolog.Logger
}

// OptionsFromConfig arma Options desde la configuración de la app.
func OptionsFromConfig(cfg config.APIConfig, log zerolog.Logger) Options {
	return Options{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		CSRFCookie:  cfg.CSRFCookie,
		CSRFHeader:  cfg.CSRFHeader,
		RefreshPath: cfg.RefreshPath,
		MePath:      cfg.MePath,
		LoginURL:    cfg.LoginURL,
		Logger:      log,
	}
}

// Response respuesta 2xx cruda.
type Response struct {
	Status int
	Header http.Header
	Data   json.RawMessage
}

// Client cliente HTTP con cookies, CSRF y refresco silencioso.
type Client struct {
	base    *url.URL
	http    *http.Client
	opts    Options
	log     zerolog.Logger
	refresh singleflight.Group
}

// NewClient valida la URL base y prepara el cookie jar.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway: base url inválida %q: %w", opts.BaseURL, domain.ErrInvalidInput)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.CSRFCookie == "" {
		opts.CSRFCookie = "csrf_token"
	}
	if opts.CSRFHeader == "" {
		opts.CSRFHeader = "X-CSRF-Token"
	}
	if opts.RefreshPath == "" {
		opts.RefreshPath = "/auth/refresh"
	}
	if opts.MePath == "" {
		opts.MePath = "/auth/me"
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("gateway: cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	return &Client{
		base: base,
		http: hc,
		opts: opts,
		log:  opts.Logger.With().Str("component", "gateway").Logger(),
	}, nil
}

// SetCookies importa cookies (sesión, CSRF) para el dominio del backend.
func (c *Client) SetCookies(cookies ...*http.Cookie) {
	c.http.Jar.SetCookies(c.base, cookies)
}

// Cookie valor de la cookie name para el backend ("" si no existe).
func (c *Client) Cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// Get ejecuta GET y decodifica la respuesta en out (si no es nil).
func (c *Client) Get(ctx context.Context, path string, out any) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post ejecuta POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put ejecuta PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Patch ejecuta PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

// Delete ejecuta DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// request petición ya serializada; se reconstruye en cada intento.
type request struct {
	method  string
	path    string
	payload []byte
}

// Do ejecuta la petición. Errores posibles: *APIError (no-2xx), domain.ErrSessionExpired
// (401 terminal) o domain.ErrTransient (sin respuesta / timeout).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Response, error) {
	req := request{method: method, path: path}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("gateway: serializar %s %s: %w", method, path, err)
		}
		req.payload = b
	}
	return c.do(ctx, req, 0, out)
}

// do es un intento. attempt es inmutable para cada llamada: el replay se hace con attempt+1,
// así cada petición concurrente tiene su propio reintento único.
func (c *Client) do(ctx context.Context, req request, attempt int, out any) (*Response, error) {
	resp, err := c.send(ctx, req, true)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		if attempt > 0 {
			return nil, c.expire(req, "401 tras refrescar")
		}
		if err := c.refreshShared(ctx); err != nil {
			if errors.Is(err, domain.ErrTransient) {
				return nil, err
			}
			return nil, c.expire(req, err.Error())
		}
		c.log.Debug().Str("method", req.method).Str("path", req.path).Msg("sesión refrescada, repitiendo petición")
		return c.do(ctx, req, attempt+1, out)
	}

	if resp.Status < 200 || resp.Status >= 300 {
		apiErr := &APIError{
			Method:  req.method,
			Path:    req.path,
			Status:  resp.Status,
			Message: messageFrom(resp.Data, resp.Status),
			Body:    resp.Data,
		}
		c.notify(Notification{Method: req.method, Path: req.path, Status: apiErr.Status, Message: apiErr.Message})
		return nil, apiErr
	}

	if out != nil && len(bytes.TrimSpace(resp.Data)) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return resp, fmt.Errorf("gateway: decodificar %s %s: %w", req.method, req.path, err)
		}
	}
	return resp, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

func stateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// send ejecuta un único round trip con el timeout configurado.
func (c *Client) send(ctx context.Context, req request, withCSRF bool) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var body io.Reader
	if req.payload != nil {
		body = bytes.NewReader(req.payload)
	}
	hr, err := http.NewRequestWithContext(ctx, req.method, c.url(req.path), body)
	if err != nil {
		return nil, fmt.Errorf("gateway: armar %s %s: %w", req.method, req.path, err)
	}
	hr.Header.Set("Accept", "application/json")
	if req.payload != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if withCSRF && stateChanging(req.method) {
		if token := c.Cookie(c.opts.CSRFCookie); token != "" {
			hr.Header.Set(c.opts.CSRFHeader, token)
		}
	}

	res, err := c.http.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", req.method, req.path, domain.ErrTransient, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: leer cuerpo: %w: %w", req.method, req.path, domain.ErrTransient, err)
	}
	return &Response{Status: res.StatusCode, Header: res.Header, Data: data}, nil
}

// RefreshSession fuerza un refresco silencioso (coalescido con los que estén en curso).
func (c *Client) RefreshSession(ctx context.Context) error {
	return c.refreshShared(ctx)
}

// refreshShared agrupa refrescos concurrentes en una sola llamada al backend. El refresco no
// depende de la cancelación de quien lo disparó: otros pueden estar esperándolo.
func (c *Client) refreshShared(ctx context.Context) error {
	ch := c.refresh.DoChan("refresh", func() (any, error) {
		return nil, c.refreshOnce(context.WithoutCancel(ctx))
	})
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return fmt.Errorf("refresco cancelado: %w: %w", domain.ErrTransient, ctx.Err())
	}
}

func (c *Client) refreshOnce(ctx context.Context) error {
	resp, err := c.send(ctx, request{method: http.MethodPost, path: c.opts.RefreshPath}, false)
	if err != nil {
		return err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return fmt.Errorf("refresco rechazado (%d): %w", resp.Status, domain.ErrSessionExpired)
	}
	c.log.Info().Msg("sesión refrescada")
	return nil
}

// expire trata el 401 terminal: limpia la sesión local y apunta al login.
func (c *Client) expire(req request, reason string) error {
	c.log.Warn().
		Str("method", req.method).
		Str("path", req.path).
		Str("reason", reason).
		Str("redirect", c.opts.LoginURL).
		Msg("sesión expirada")
	if c.opts.OnSessionExpired != nil {
		c.opts.OnSessionExpired()
	}
	return fmt.Errorf("%s %s: %w", req.method, req.path, domain.ErrSessionExpired)
}

// notify entrega el aviso sin bloquear al llamador; un pánico del notifier se registra y se descarta.
func (c *Client) notify(n Notification) {
	if c.opts.Notifier == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Msg("notifier")
			}
		}()
		c.opts.Notifier.Notify(n)
	}()
}
