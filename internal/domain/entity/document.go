package entity

import "time"

// Tipos de documento.
const (
	DocumentInvoice     = "invoice"
	DocumentCertificate = "certificate"
	DocumentContract    = "contract"
	DocumentSpecSheet   = "spec_sheet"
	DocumentTestReport  = "test_report"
	DocumentOther       = "other"
)

// ValidDocumentType indica si t es uno de los tipos soportados.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentInvoice, DocumentCertificate, DocumentContract, DocumentSpecSheet, DocumentTestReport, DocumentOther:
		return true
	}
	return false
}

// RelatedRef referencia tipo llave foránea a otra entidad (orden, producto, proveedor).
// No es un vínculo vivo: borrar la entidad referida no borra el documento.
type RelatedRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Document archivo de soporte del proveedor. UploadedAt se fija al crear y no cambia.
type Document struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	FileURL    string      `json:"fileUrl"`
	FileSize   int64       `json:"fileSize"`
	MimeType   string      `json:"mimeType"`
	UploadedBy string      `json:"uploadedBy"`
	UploadedAt time.Time   `json:"uploadedAt"`
	RelatedTo  *RelatedRef `json:"relatedTo,omitempty"`
	Tags       []string    `json:"tags"`
	IsVerified bool        `json:"isVerified"`
	VerifiedBy string      `json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time  `json:"verifiedAt,omitempty"`
	ExpiryDate *time.Time  `json:"expiryDate,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// HasTag indica si el documento tiene la etiqueta.
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Folder agrupa documentos por ID (conjunto, el orden no importa).
type Folder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"`
	DocumentIDs []string  `json:"documentIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Contains indica si el documento pertenece a la carpeta.
func (f Folder) Contains(documentID string) bool {
	for _, id := range f.DocumentIDs {
		if id == documentID {
			return true
		}
	}
	return false
}
