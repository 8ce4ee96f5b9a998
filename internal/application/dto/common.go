// Package dto contiene las formas de request/response que cruzan los bordes HTTP
// (backend del marketplace y superficie local).
package dto

// PageRequest paginación para listados locales.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset quedan fuera de rango.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Paginate recorta items según p y arma la página (Page es 1-based).
func Paginate[T any](items []T, p PageRequest) Page[T] {
	p.DefaultPage()
	out := Page[T]{Items: []T{}, Total: len(items), Page: p.Offset/p.Limit + 1, Limit: p.Limit}
	if p.Offset >= len(items) {
		return out
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	out.Items = items[p.Offset:end]
	return out
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
