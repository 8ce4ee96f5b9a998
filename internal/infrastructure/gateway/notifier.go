package gateway

import "github.com/rs/zerolog"

// Notification aviso para el usuario (toast) derivado de un error del backend.
type Notification struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Notifier canal de avisos best-effort. Notify no debe bloquear.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier escribe el aviso en el log.
type LogNotifier struct {
	Log zerolog.Logger
}

// Notify implementa Notifier.
func (l LogNotifier) Notify(n Notification) {
	l.Log.Warn().Str("method", n.Method).Str("path", n.Path).Int("status", n.Status).Msg(n.Message)
}

// ChanNotifier encola avisos en un canal con buffer; si está lleno el aviso se descarta.
type ChanNotifier struct {
	C chan Notification
}

// NewChanNotifier crea el notifier con capacidad size.
func NewChanNotifier(size int) *ChanNotifier {
	return &ChanNotifier{C: make(chan Notification, size)}
}

// Notify implementa Notifier.
func (c *ChanNotifier) Notify(n Notification) {
	select {
	case c.C <- n:
	default:
	}
}
