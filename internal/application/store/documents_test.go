package store_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
)

type uploaderStub struct {
	key, contentType, body string
	err                    error
}

func (u *uploaderStub) Upload(_ context.Context, body io.Reader, key, contentType string) (string, error) {
	b, _ := io.ReadAll(body)
	u.key, u.contentType, u.body = key, contentType, string(b)
	if u.err != nil {
		return "", u.err
	}
	return "https://cdn.example.com/" + key, nil
}

func newDocs(up *uploaderStub) *store.DocumentStore {
	if up == nil {
		return store.NewDocumentStore(context.Background(), newRepo(), nil, testOpts())
	}
	return store.NewDocumentStore(context.Background(), newRepo(), up, testOpts())
}

func TestDocuments_AddNormalizaTipoYEtiquetas(t *testing.T) {
	docs := newDocs(nil)
	id := docs.Add(store.DocumentInput{Name: "ISO cert", Type: "desconocido", Tags: []string{"iso", " iso", "", "2026"}})

	doc, ok := docs.Get(id)
	require.True(t, ok)
	assert.Equal(t, entity.DocumentOther, doc.Type)
	assert.Equal(t, []string{"iso", "2026"}, doc.Tags)
	assert.Equal(t, testNow, doc.UploadedAt)
}

func TestDocuments_UploadedAtNoCambiaConUpdate(t *testing.T) {
	clock := testNow
	opts := testOpts()
	opts.Now = func() time.Time { return clock }
	docs := store.NewDocumentStore(context.Background(), newRepo(), nil, opts)
	id := docs.Add(store.DocumentInput{Name: "factura", Type: entity.DocumentInvoice})

	clock = clock.Add(48 * time.Hour)
	name := "factura-marzo"
	require.True(t, docs.Update(id, store.DocumentPatch{Name: &name}))

	doc, _ := docs.Get(id)
	assert.Equal(t, "factura-marzo", doc.Name)
	assert.Equal(t, testNow, doc.UploadedAt)
}

func TestDocuments_EtiquetasSonConjunto(t *testing.T) {
	docs := newDocs(nil)
	id := docs.Add(store.DocumentInput{Name: "spec", Tags: []string{"a"}})

	assert.False(t, docs.AddTag(id, "a"))
	assert.True(t, docs.AddTag(id, "b"))
	assert.True(t, docs.RemoveTag(id, "a"))
	assert.False(t, docs.RemoveTag(id, "a"))

	doc, _ := docs.Get(id)
	assert.Equal(t, []string{"b"}, doc.Tags)
}

func TestDocuments_RemoveLimpiaTodasLasCarpetas(t *testing.T) {
	docs := newDocs(nil)
	id := docs.Add(store.DocumentInput{Name: "contrato"})
	other := docs.Add(store.DocumentInput{Name: "otro"})
	f1 := docs.CreateFolder("Legal", "#333")
	f2 := docs.CreateFolder("2026", "")
	require.True(t, docs.AddToFolder(f1, id))
	require.True(t, docs.AddToFolder(f2, id))
	require.True(t, docs.AddToFolder(f2, other))

	docs.Remove(id)

	for _, f := range docs.Folders() {
		assert.False(t, f.Contains(id), "carpeta %s aún referencia el documento", f.Name)
	}
	folder, _ := docs.GetFolder(f2)
	assert.Equal(t, []string{other}, folder.DocumentIDs)
}

func TestDocuments_AddToFolderExigeAmbos(t *testing.T) {
	docs := newDocs(nil)
	f := docs.CreateFolder("Legal", "")
	id := docs.Add(store.DocumentInput{Name: "x"})

	assert.False(t, docs.AddToFolder(f, "no-existe"))
	assert.False(t, docs.AddToFolder("no-existe", id))
	assert.True(t, docs.AddToFolder(f, id))
	assert.False(t, docs.AddToFolder(f, id), "repetir es no-op")

	docs.DeleteFolder(f)
	_, ok := docs.Get(id)
	assert.True(t, ok, "borrar la carpeta conserva los documentos")
}

func TestDocuments_VencimientosConRelojFijo(t *testing.T) {
	docs := newDocs(nil)
	soon := testNow.Add(10 * 24 * time.Hour)
	later := testNow.Add(90 * 24 * time.Hour)
	past := testNow.Add(-24 * time.Hour)
	docs.Add(store.DocumentInput{Name: "pronto", ExpiryDate: &soon})
	docs.Add(store.DocumentInput{Name: "lejos", ExpiryDate: &later})
	docs.Add(store.DocumentInput{Name: "vencido", ExpiryDate: &past})
	docs.Add(store.DocumentInput{Name: "sin-fecha"})

	expiring := docs.ExpiringWithin(30 * 24 * time.Hour)
	require.Len(t, expiring, 1)
	assert.Equal(t, "pronto", expiring[0].Name)

	expired := docs.Expired()
	require.Len(t, expired, 1)
	assert.Equal(t, "vencido", expired[0].Name)
}

func TestDocuments_VerifyYBusquedas(t *testing.T) {
	docs := newDocs(nil)
	id := docs.Add(store.DocumentInput{
		Name:      "Test report lote 7",
		Type:      entity.DocumentTestReport,
		RelatedTo: &entity.RelatedRef{Type: "product", ID: "p9"},
		Notes:     "laboratorio SGS",
	})
	docs.Add(store.DocumentInput{Name: "factura", Type: entity.DocumentInvoice})

	require.True(t, docs.Verify(id, "admin-1"))
	doc, _ := docs.Get(id)
	assert.True(t, doc.IsVerified)
	assert.Equal(t, "admin-1", doc.VerifiedBy)
	require.NotNil(t, doc.VerifiedAt)

	assert.Len(t, docs.ByType(entity.DocumentTestReport), 1)
	assert.Len(t, docs.ByRelated("product", "p9"), 1)
	assert.Len(t, docs.Search("sgs"), 1)
	assert.Len(t, docs.Search(""), 2)
}

func TestDocuments_UploadRegistraLaURL(t *testing.T) {
	up := &uploaderStub{}
	docs := newDocs(up)

	id, err := docs.Upload(context.Background(), strings.NewReader("%PDF-1.4"), store.DocumentInput{Name: "Cert ISO.pdf", MimeType: "application/pdf"})
	require.NoError(t, err)

	doc, ok := docs.Get(id)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(up.key, "documents/"))
	assert.True(t, strings.HasSuffix(up.key, "cert-iso.pdf"))
	assert.Equal(t, "application/pdf", up.contentType)
	assert.Equal(t, "%PDF-1.4", up.body)
	assert.Equal(t, "https://cdn.example.com/"+up.key, doc.FileURL)
}

func TestDocuments_UploadFallidoNoRegistra(t *testing.T) {
	up := &uploaderStub{err: errors.New("s3 caído")}
	docs := newDocs(up)

	_, err := docs.Upload(context.Background(), strings.NewReader("x"), store.DocumentInput{Name: "a.pdf"})
	require.Error(t, err)
	assert.Empty(t, docs.List())

	_, err = docs.Upload(context.Background(), strings.NewReader("x"), store.DocumentInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
