// Package localstore implementa el almacenamiento durable del dispositivo:
// un archivo JSON por clave dentro de un directorio.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jhoicas/channah-state/internal/domain/repository"
)

var _ repository.StateRepository = (*FileRepository)(nil)

// keyRe claves permitidas, evita escapar del directorio base.
var keyRe = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// FileRepository guarda cada clave en <dir>/<key>.json.
type FileRepository struct {
	dir string
}

// NewFileRepository crea el directorio si no existe.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: crear directorio %s: %w", dir, err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) path(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", fmt.Errorf("localstore: clave inválida %q", key)
	}
	return filepath.Join(r.dir, key+".json"), nil
}

// Load lee el archivo de la clave; (nil, nil) si no existe.
func (r *FileRepository) Load(_ context.Context, key string) ([]byte, error) {
	p, err := r.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("localstore: leer %s: %w", key, err)
	}
	return b, nil
}

// Save escribe en un temporal y renombra, para no dejar un JSON a medias si el proceso muere.
func (r *FileRepository) Save(_ context.Context, key string, value []byte) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(r.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("localstore: crear temporal: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("localstore: escribir %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: cerrar %s: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("localstore: renombrar %s: %w", key, err)
	}
	return nil
}

// Delete borra el archivo de la clave; no falla si no existe.
func (r *FileRepository) Delete(_ context.Context, key string) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("localstore: borrar %s: %w", key, err)
	}
	return nil
}
