package store

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jhoicas/channah-state/internal/application/ports"
	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
)

type documentsState struct {
	Documents []entity.Document `json:"documents"`
	Folders   []entity.Folder   `json:"folders"`
}

// repair descarta documentos repetidos y referencias de carpeta a documentos inexistentes.
func (st *documentsState) repair() {
	seen := make(map[string]bool, len(st.Documents))
	docs := make([]entity.Document, 0, len(st.Documents))
	for _, d := range st.Documents {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		docs = append(docs, d)
	}
	st.Documents = docs
	if st.Folders == nil {
		st.Folders = []entity.Folder{}
	}
	for i := range st.Folders {
		ids := make([]string, 0, len(st.Folders[i].DocumentIDs))
		inFolder := map[string]bool{}
		for _, id := range st.Folders[i].DocumentIDs {
			if seen[id] && !inFolder[id] {
				inFolder[id] = true
				ids = append(ids, id)
			}
		}
		st.Folders[i].DocumentIDs = ids
	}
}

// DocumentInput datos para registrar un documento (ID y UploadedAt los asigna el store).
type DocumentInput struct {
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	FileURL    string             `json:"fileUrl"`
	FileSize   int64              `json:"fileSize"`
	MimeType   string             `json:"mimeType"`
	UploadedBy string             `json:"uploadedBy"`
	RelatedTo  *entity.RelatedRef `json:"relatedTo,omitempty"`
	Tags       []string           `json:"tags"`
	ExpiryDate *time.Time         `json:"expiryDate,omitempty"`
	Notes      string             `json:"notes"`
}

// DocumentPatch campos editables; nil = sin cambio. UploadedAt no es editable.
type DocumentPatch struct {
	Name       *string            `json:"name"`
	Type       *string            `json:"type"`
	RelatedTo  *entity.RelatedRef `json:"relatedTo"`
	Tags       []string           `json:"tags"`
	ExpiryDate *time.Time         `json:"expiryDate"`
	Notes      *string            `json:"notes"`
}

// DocumentStore documentos del proveedor y sus carpetas.
type DocumentStore struct {
	*base[documentsState]
	uploader ports.FileUploader
}

// NewDocumentStore construye el store. uploader puede ser nil si no se suben archivos.
func NewDocumentStore(ctx context.Context, repo repository.StateRepository, uploader ports.FileUploader, opts Options) *DocumentStore {
	return &DocumentStore{
		base:     newBase(ctx, repo, KeyDocuments, opts, documentsState{Documents: []entity.Document{}, Folders: []entity.Folder{}}),
		uploader: uploader,
	}
}

func cloneDocument(d entity.Document) entity.Document {
	d.Tags = append([]string{}, d.Tags...)
	if d.RelatedTo != nil {
		r := *d.RelatedTo
		d.RelatedTo = &r
	}
	if d.VerifiedAt != nil {
		t := *d.VerifiedAt
		d.VerifiedAt = &t
	}
	if d.ExpiryDate != nil {
		t := *d.ExpiryDate
		d.ExpiryDate = &t
	}
	return d
}

func cloneFolder(f entity.Folder) entity.Folder {
	f.DocumentIDs = append([]string{}, f.DocumentIDs...)
	return f
}

// uniqueTags normaliza a conjunto conservando el primer orden de aparición.
func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func indexDocument(docs []entity.Document, id string) int {
	for i := range docs {
		if docs[i].ID == id {
			return i
		}
	}
	return -1
}

func indexFolder(folders []entity.Folder, id string) int {
	for i := range folders {
		if folders[i].ID == id {
			return i
		}
	}
	return -1
}

// Add registra el documento y devuelve su ID. Un tipo desconocido se guarda como "other".
func (s *DocumentStore) Add(in DocumentInput) string {
	docType := in.Type
	if !entity.ValidDocumentType(docType) {
		docType = entity.DocumentOther
	}
	now := s.opts.now()
	doc := entity.Document{
		ID:         newID(now),
		Name:       in.Name,
		Type:       docType,
		FileURL:    in.FileURL,
		FileSize:   in.FileSize,
		MimeType:   in.MimeType,
		UploadedBy: in.UploadedBy,
		UploadedAt: now,
		RelatedTo:  in.RelatedTo,
		Tags:       uniqueTags(in.Tags),
		ExpiryDate: in.ExpiryDate,
		Notes:      in.Notes,
	}
	s.mutate(func(st *documentsState) bool {
		st.Documents = append(st.Documents, cloneDocument(doc))
		return true
	})
	return doc.ID
}

// Upload sube el archivo con el FileUploader y registra el documento con la URL devuelta.
func (s *DocumentStore) Upload(ctx context.Context, body io.Reader, in DocumentInput) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("documentos: uploader no configurado")
	}
	if in.Name == "" {
		return "", fmt.Errorf("documentos: nombre requerido: %w", domain.ErrInvalidInput)
	}
	key := path.Join("documents", newID(s.opts.now())+"-"+sanitizeObjectName(in.Name))
	url, err := s.uploader.Upload(ctx, body, key, in.MimeType)
	if err != nil {
		return "", fmt.Errorf("documentos: subir %s: %w", in.Name, err)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	in.FileURL = url
	return s.Add(in), nil
}

func sanitizeObjectName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// Remove elimina el documento y lo saca de todas las carpetas en la misma mutación.
func (s *DocumentStore) Remove(id string) {
	s.mutate(func(st *documentsState) bool {
		i := indexDocument(st.Documents, id)
		if i < 0 {
			return false
		}
		st.Documents = append(st.Documents[:i], st.Documents[i+1:]...)
		for fi := range st.Folders {
			st.Folders[fi].DocumentIDs = removeString(st.Folders[fi].DocumentIDs, id)
		}
		return true
	})
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// Update aplica el patch. Devuelve false si el documento no existe.
func (s *DocumentStore) Update(id string, p DocumentPatch) bool {
	return s.mutate(func(st *documentsState) bool {
		i := indexDocument(st.Documents, id)
		if i < 0 {
			return false
		}
		d := &st.Documents[i]
		if p.Name != nil {
			d.Name = *p.Name
		}
		if p.Type != nil && entity.ValidDocumentType(*p.Type) {
			d.Type = *p.Type
		}
		if p.RelatedTo != nil {
			r := *p.RelatedTo
			d.RelatedTo = &r
		}
		if p.Tags != nil {
			d.Tags = uniqueTags(p.Tags)
		}
		if p.ExpiryDate != nil {
			t := *p.ExpiryDate
			d.ExpiryDate = &t
		}
		if p.Notes != nil {
			d.Notes = *p.Notes
		}
		return true
	})
}

// Get devuelve una copia del documento.
func (s *DocumentStore) Get(id string) (entity.Document, bool) {
	var out entity.Document
	ok := false
	s.read(func(st *documentsState) {
		if i := indexDocument(st.Documents, id); i >= 0 {
			out, ok = cloneDocument(st.Documents[i]), true
		}
	})
	return out, ok
}

// Verify marca el documento como verificado por el usuario dado.
func (s *DocumentStore) Verify(id, by string) bool {
	return s.mutate(func(st *documentsState) bool {
		i := indexDocument(st.Documents, id)
		if i < 0 {
			return false
		}
		now := s.opts.now()
		st.Documents[i].IsVerified = true
		st.Documents[i].VerifiedBy = by
		st.Documents[i].VerifiedAt = &now
		return true
	})
}

// AddTag agrega la etiqueta (conjunto: sin duplicados).
func (s *DocumentStore) AddTag(id, tag string) bool {
	tag = strings.TrimSpace(tag)
	return s.mutate(func(st *documentsState) bool {
		i := indexDocument(st.Documents, id)
		if i < 0 || tag == "" || st.Documents[i].HasTag(tag) {
			return false
		}
		st.Documents[i].Tags = append(st.Documents[i].Tags, tag)
		return true
	})
}

// RemoveTag quita la etiqueta.
func (s *DocumentStore) RemoveTag(id, tag string) bool {
	return s.mutate(func(st *documentsState) bool {
		i := indexDocument(st.Documents, id)
		if i < 0 || !st.Documents[i].HasTag(tag) {
			return false
		}
		st.Documents[i].Tags = removeString(st.Documents[i].Tags, tag)
		return true
	})
}

// List copia de todos los documentos.
func (s *DocumentStore) List() []entity.Document {
	return s.filter(func(entity.Document) bool { return true })
}

func (s *DocumentStore) filter(keep func(entity.Document) bool) []entity.Document {
	out := []entity.Document{}
	s.read(func(st *documentsState) {
		for _, d := range st.Documents {
			if keep(d) {
				out = append(out, cloneDocument(d))
			}
		}
	})
	return out
}

// ByType documentos de un tipo.
func (s *DocumentStore) ByType(docType string) []entity.Document {
	return s.filter(func(d entity.Document) bool { return d.Type == docType })
}

// ByRelated documentos que referencian la entidad (tipo, id).
func (s *DocumentStore) ByRelated(refType, refID string) []entity.Document {
	return s.filter(func(d entity.Document) bool {
		return d.RelatedTo != nil && d.RelatedTo.Type == refType && d.RelatedTo.ID == refID
	})
}

// Search busca texto (sin distinguir mayúsculas) en nombre, etiquetas y notas.
func (s *DocumentStore) Search(text string) []entity.Document {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return s.List()
	}
	return s.filter(func(d entity.Document) bool {
		if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.Notes), q) {
			return true
		}
		for _, t := range d.Tags {
			if strings.Contains(strings.ToLower(t), q) {
				return true
			}
		}
		return false
	})
}

// ExpiringWithin documentos que vencen entre ahora y ahora+d. Los ya vencidos van en Expired.
func (s *DocumentStore) ExpiringWithin(d time.Duration) []entity.Document {
	now := s.opts.now()
	limit := now.Add(d)
	return s.filter(func(doc entity.Document) bool {
		return doc.ExpiryDate != nil && !doc.ExpiryDate.Before(now) && !doc.ExpiryDate.After(limit)
	})
}

// Expired documentos ya vencidos.
func (s *DocumentStore) Expired() []entity.Document {
	now := s.opts.now()
	return s.filter(func(doc entity.Document) bool {
		return doc.ExpiryDate != nil && doc.ExpiryDate.Before(now)
	})
}

// CreateFolder crea una carpeta vacía y devuelve su ID.
func (s *DocumentStore) CreateFolder(name, color string) string {
	now := s.opts.now()
	f := entity.Folder{ID: newID(now), Name: name, Color: color, DocumentIDs: []string{}, CreatedAt: now}
	s.mutate(func(st *documentsState) bool {
		st.Folders = append(st.Folders, f)
		return true
	})
	return f.ID
}

// RenameFolder cambia el nombre de la carpeta.
func (s *DocumentStore) RenameFolder(id, name string) bool {
	return s.mutate(func(st *documentsState) bool {
		i := indexFolder(st.Folders, id)
		if i < 0 {
			return false
		}
		st.Folders[i].Name = name
		return true
	})
}

// DeleteFolder elimina la carpeta; los documentos se conservan.
func (s *DocumentStore) DeleteFolder(id string) {
	s.mutate(func(st *documentsState) bool {
		i := indexFolder(st.Folders, id)
		if i < 0 {
			return false
		}
		st.Folders = append(st.Folders[:i], st.Folders[i+1:]...)
		return true
	})
}

// AddToFolder agrega el documento a la carpeta. Ambos deben existir; repetir es no-op.
func (s *DocumentStore) AddToFolder(folderID, documentID string) bool {
	return s.mutate(func(st *documentsState) bool {
		fi := indexFolder(st.Folders, folderID)
		if fi < 0 || indexDocument(st.Documents, documentID) < 0 || st.Folders[fi].Contains(documentID) {
			return false
		}
		st.Folders[fi].DocumentIDs = append(st.Folders[fi].DocumentIDs, documentID)
		return true
	})
}

// RemoveFromFolder saca el documento de la carpeta.
func (s *DocumentStore) RemoveFromFolder(folderID, documentID string) bool {
	return s.mutate(func(st *documentsState) bool {
		fi := indexFolder(st.Folders, folderID)
		if fi < 0 || !st.Folders[fi].Contains(documentID) {
			return false
		}
		st.Folders[fi].DocumentIDs = removeString(st.Folders[fi].DocumentIDs, documentID)
		return true
	})
}

// GetFolder devuelve una copia de la carpeta.
func (s *DocumentStore) GetFolder(id string) (entity.Folder, bool) {
	var out entity.Folder
	ok := false
	s.read(func(st *documentsState) {
		if i := indexFolder(st.Folders, id); i >= 0 {
			out, ok = cloneFolder(st.Folders[i]), true
		}
	})
	return out, ok
}

// Folders copia de todas las carpetas.
func (s *DocumentStore) Folders() []entity.Folder {
	out := []entity.Folder{}
	s.read(func(st *documentsState) {
		for _, f := range st.Folders {
			out = append(out, cloneFolder(f))
		}
	})
	return out
}

// FolderDocuments documentos de una carpeta; IDs huérfanos se omiten.
func (s *DocumentStore) FolderDocuments(folderID string) []entity.Document {
	out := []entity.Document{}
	s.read(func(st *documentsState) {
		fi := indexFolder(st.Folders, folderID)
		if fi < 0 {
			return
		}
		for _, id := range st.Folders[fi].DocumentIDs {
			if i := indexDocument(st.Documents, id); i >= 0 {
				out = append(out, cloneDocument(st.Documents[i]))
			}
		}
	})
	return out
}
