package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/channah-state/internal/application/dto"
	"github.com/jhoicas/channah-state/internal/application/store"
)

// DocumentHandler expone documentos y carpetas.
type DocumentHandler struct {
	docs *store.DocumentStore
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(docs *store.DocumentStore) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Produce      json
// @Param        type           query  string  false  "Tipo de documento"
// @Param        q              query  string  false  "Texto a buscar"
// @Param        relatedType    query  string  false  "Tipo de entidad relacionada"
// @Param        relatedId      query  string  false  "ID de entidad relacionada"
// @Param        expiringDays   query  int     false  "Vencen en los próximos N días"
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs := h.docs.List()
	switch {
	case c.Query("q") != "":
		docs = h.docs.Search(c.Query("q"))
	case c.Query("type") != "":
		docs = h.docs.ByType(c.Query("type"))
	case c.Query("relatedId") != "":
		docs = h.docs.ByRelated(c.Query("relatedType"), c.Query("relatedId"))
	case c.QueryInt("expiringDays", 0) > 0:
		docs = h.docs.ExpiringWithin(time.Duration(c.QueryInt("expiringDays", 0)) * 24 * time.Hour)
	case c.QueryBool("expired", false):
		docs = h.docs.Expired()
	}
	return c.JSON(dto.Paginate(docs, page(c)))
}

// Create registra un documento ya alojado (fileUrl conocido).
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in store.DocumentInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Name == "" {
		return validation(c, "name es requerido")
	}
	if in.UploadedBy == "" {
		in.UploadedBy = GetUserID(c)
	}
	id := h.docs.Add(in)
	doc, _ := h.docs.Get(id)
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Upload recibe multipart (campo file + metadatos) y lo sube al almacenamiento de archivos.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return validation(c, "file es requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return badBody(c)
	}
	defer f.Close()

	in := store.DocumentInput{
		Name:       c.FormValue("name", fh.Filename),
		Type:       c.FormValue("type"),
		FileSize:   fh.Size,
		MimeType:   fh.Header.Get("Content-Type"),
		UploadedBy: GetUserID(c),
		Notes:      c.FormValue("notes"),
	}
	if tags := c.FormValue("tags"); tags != "" {
		in.Tags = strings.Split(tags, ",")
	}
	if exp := c.FormValue("expiryDate"); exp != "" {
		t, err := time.Parse(time.RFC3339, exp)
		if err != nil {
			return validation(c, "expiryDate debe ser RFC3339")
		}
		in.ExpiryDate = &t
	}
	id, err := h.docs.Upload(c.UserContext(), f, in)
	if err != nil {
		return writeError(c, err)
	}
	doc, _ := h.docs.Get(id)
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Get devuelve el documento.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, ok := h.docs.Get(c.Params("id"))
	if !ok {
		return notFound(c, "documento no encontrado")
	}
	return c.JSON(doc)
}

// Update aplica un patch parcial.
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var p store.DocumentPatch
	if err := c.BodyParser(&p); err != nil {
		return badBody(c)
	}
	if !h.docs.Update(c.Params("id"), p) {
		return notFound(c, "documento no encontrado")
	}
	doc, _ := h.docs.Get(c.Params("id"))
	return c.JSON(doc)
}

// Remove elimina el documento y lo saca de todas las carpetas.
func (h *DocumentHandler) Remove(c *fiber.Ctx) error {
	h.docs.Remove(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// Verify marca el documento como verificado por el usuario de la sesión.
func (h *DocumentHandler) Verify(c *fiber.Ctx) error {
	if !h.docs.Verify(c.Params("id"), GetUserID(c)) {
		return notFound(c, "documento no encontrado")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddTag agrega una etiqueta.
func (h *DocumentHandler) AddTag(c *fiber.Ctx) error {
	h.docs.AddTag(c.Params("id"), c.Params("tag"))
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveTag quita una etiqueta.
func (h *DocumentHandler) RemoveTag(c *fiber.Ctx) error {
	h.docs.RemoveTag(c.Params("id"), c.Params("tag"))
	return c.SendStatus(fiber.StatusNoContent)
}

// ListFolders lista carpetas.
func (h *DocumentHandler) ListFolders(c *fiber.Ctx) error {
	return c.JSON(h.docs.Folders())
}

// CreateFolder crea una carpeta.
func (h *DocumentHandler) CreateFolder(c *fiber.Ctx) error {
	var in struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Name == "" {
		return validation(c, "name es requerido")
	}
	id := h.docs.CreateFolder(in.Name, in.Color)
	folder, _ := h.docs.GetFolder(id)
	return c.Status(fiber.StatusCreated).JSON(folder)
}

// RenameFolder renombra.
func (h *DocumentHandler) RenameFolder(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if !h.docs.RenameFolder(c.Params("id"), in.Name) {
		return notFound(c, "carpeta no encontrada")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteFolder elimina la carpeta; los documentos se conservan.
func (h *DocumentHandler) DeleteFolder(c *fiber.Ctx) error {
	h.docs.DeleteFolder(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// FolderDocuments documentos de la carpeta.
func (h *DocumentHandler) FolderDocuments(c *fiber.Ctx) error {
	if _, ok := h.docs.GetFolder(c.Params("id")); !ok {
		return notFound(c, "carpeta no encontrada")
	}
	return c.JSON(h.docs.FolderDocuments(c.Params("id")))
}

// AddToFolder agrega el documento a la carpeta.
func (h *DocumentHandler) AddToFolder(c *fiber.Ctx) error {
	if !h.docs.AddToFolder(c.Params("id"), c.Params("documentId")) {
		if _, ok := h.docs.GetFolder(c.Params("id")); !ok {
			return notFound(c, "carpeta no encontrada")
		}
		if _, ok := h.docs.Get(c.Params("documentId")); !ok {
			return notFound(c, "documento no encontrado")
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveFromFolder quita el documento de la carpeta.
func (h *DocumentHandler) RemoveFromFolder(c *fiber.Ctx) error {
	h.docs.RemoveFromFolder(c.Params("id"), c.Params("documentId"))
	return c.SendStatus(fiber.StatusNoContent)
}
