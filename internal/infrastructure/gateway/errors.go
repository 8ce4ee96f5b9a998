package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError respuesta no-2xx del backend (error de aplicación). No cambia el estado de auth.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// IsStatus indica si err es un *APIError con ese status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// messageFrom extrae un mensaje legible del cuerpo: message, detail o error, en ese orden.
// Sin cuerpo JSON usa el texto estándar del status.
func messageFrom(body []byte, status int) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, k := range []string{"message", "detail", "error"} {
			raw, ok := payload[k]
			if !ok {
				continue
			}
			var s string
			if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
				return s
			}
			// detail de validación: [{"msg": "..."}]
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(raw, &items) == nil && len(items) > 0 && items[0].Msg != "" {
				return items[0].Msg
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "error inesperado"
}

// StatusCode status HTTP de la respuesta.
func (e *APIError) StatusCode() int { return e.Status }
