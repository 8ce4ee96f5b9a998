package entity

import "time"

// MaxComparisonEntries tope del comparador de productos.
const MaxComparisonEntries = 4

// ComparisonEntry producto dentro del comparador.
type ComparisonEntry struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Image   string    `json:"image"`
	Slug    string    `json:"slug,omitempty"`
	AddedAt time.Time `json:"addedAt"`
}
