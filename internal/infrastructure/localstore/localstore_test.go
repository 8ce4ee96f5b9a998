package localstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/infrastructure/localstore"
)

func TestFileRepository_GuardarYLeer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := localstore.NewFileRepository(filepath.Join(dir, "state"))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "channah-cart", []byte(`{"items":[]}`)))
	require.NoError(t, repo.Save(ctx, "channah-cart", []byte(`{"items":[1]}`)))

	got, err := repo.Load(ctx, "channah-cart")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[1]}`, string(got), "cada escritura sobrescribe el blob completo")

	entries, err := os.ReadDir(filepath.Join(dir, "state"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no deben quedar temporales")
}

func TestFileRepository_ClaveInexistenteDevuelveNil(t *testing.T) {
	repo, err := localstore.NewFileRepository(t.TempDir())
	require.NoError(t, err)

	got, err := repo.Load(context.Background(), "channah-wishlist")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, repo.Delete(context.Background(), "channah-wishlist"))
}

func TestFileRepository_ClaveInvalida(t *testing.T) {
	repo, err := localstore.NewFileRepository(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, repo.Save(context.Background(), "../fuera", []byte("x")))
	_, err = repo.Load(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestFileRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo, err := localstore.NewFileRepository(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "k", []byte("1")))

	require.NoError(t, repo.Delete(ctx, "k"))
	got, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryRepository_DevuelveCopias(t *testing.T) {
	ctx := context.Background()
	repo := localstore.NewMemoryRepository()
	in := []byte("abc")
	require.NoError(t, repo.Save(ctx, "k", in))
	in[0] = 'z'

	got, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := repo.Load(ctx, "k")
	assert.Equal(t, "abc", string(again))
}
