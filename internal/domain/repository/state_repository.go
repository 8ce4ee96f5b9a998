package repository

import "context"

// StateRepository define el puerto de persistencia local de los stores (DIP).
// Cada store guarda su colección completa serializada en JSON bajo una única clave,
// sobrescrita en cada escritura.
type StateRepository interface {
	// Load devuelve el blob guardado, o (nil, nil) si la clave no existe.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
