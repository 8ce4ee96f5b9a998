package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyResponse la respuesta no trae cuerpo (variante vacía: 204 o body null).
var ErrEmptyResponse = errors.New("respuesta sin contenido")

// Envelope respuesta exitosa del backend: {"data": ..., "message": ...}.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Page respuesta paginada.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// IsEmpty indica si raw corresponde a la variante vacía.
func IsEmpty(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// unwrap devuelve el contenido de "data" si el cuerpo es un sobre, si no el cuerpo tal cual.
func unwrap(raw []byte) ([]byte, error) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '{' {
		return t, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(t, &fields); err != nil {
		return nil, fmt.Errorf("respuesta malformada: %w", err)
	}
	if data, ok := fields["data"]; ok {
		return data, nil
	}
	return t, nil
}

// DecodeData decodifica la variante de éxito (con o sin sobre). Cuerpo vacío → ErrEmptyResponse.
func DecodeData[T any](raw []byte) (T, error) {
	var out T
	if IsEmpty(raw) {
		return out, ErrEmptyResponse
	}
	body, err := unwrap(raw)
	if err != nil {
		return out, err
	}
	if IsEmpty(body) {
		return out, ErrEmptyResponse
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("respuesta con forma inesperada: %w", err)
	}
	return out, nil
}

// DecodePage decodifica la variante paginada. Acepta {"items": [...], "total": n} y, por
// compatibilidad con endpoints sin metadatos, un arreglo desnudo.
func DecodePage[T any](raw []byte) (Page[T], error) {
	var out Page[T]
	if IsEmpty(raw) {
		return out, ErrEmptyResponse
	}
	body, err := unwrap(raw)
	if err != nil {
		return out, err
	}
	t := bytes.TrimSpace(body)
	if len(t) > 0 && t[0] == '[' {
		if err := json.Unmarshal(t, &out.Items); err != nil {
			return out, fmt.Errorf("página con forma inesperada: %w", err)
		}
		out.Total = len(out.Items)
		return out, nil
	}
	if err := json.Unmarshal(t, &out); err != nil {
		return out, fmt.Errorf("página con forma inesperada: %w", err)
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}
