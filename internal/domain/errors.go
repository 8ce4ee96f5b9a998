package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrLimitExceeded     = errors.New("límite de elementos alcanzado")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrSessionExpired    = errors.New("sesión expirada")
	ErrTransient         = errors.New("error de red transitorio")
)
