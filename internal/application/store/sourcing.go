package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/channah-state/internal/domain"
	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
)

type sourcingState struct {
	Requests []entity.SourcingRequest `json:"requests"`
}

func (st *sourcingState) repair() {
	if st.Requests == nil {
		st.Requests = []entity.SourcingRequest{}
	}
}

// SourcingInput datos para abrir una solicitud.
type SourcingInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Quantity    int              `json:"quantity"`
	Unit        string           `json:"unit"`
	TargetPrice *decimal.Decimal `json:"targetPrice,omitempty"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
}

// SourcingPatch campos editables mientras la solicitud admite ofertas; nil = sin cambio.
type SourcingPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Quantity    *int             `json:"quantity"`
	Unit        *string          `json:"unit"`
	TargetPrice *decimal.Decimal `json:"targetPrice"`
	Deadline    *time.Time       `json:"deadline"`
}

// BidInput oferta de un proveedor.
type BidInput struct {
	VendorID     string          `json:"vendorId"`
	VendorName   string          `json:"vendorName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	MOQ          int             `json:"moq"`
	LeadTimeDays int             `json:"leadTimeDays"`
	Notes        string          `json:"notes"`
}

// SourcingStore solicitudes de cotización: open → bidding → awarded, o closed.
type SourcingStore struct {
	*base[sourcingState]
}

// NewSourcingStore construye el store y lo siembra con el estado persistido.
func NewSourcingStore(ctx context.Context, repo repository.StateRepository, opts Options) *SourcingStore {
	return &SourcingStore{base: newBase(ctx, repo, KeySourcing, opts, sourcingState{Requests: []entity.SourcingRequest{}})}
}

func cloneRequest(r entity.SourcingRequest) entity.SourcingRequest {
	r.Bids = append([]entity.SourcingBid{}, r.Bids...)
	if r.TargetPrice != nil {
		v := *r.TargetPrice
		r.TargetPrice = &v
	}
	if r.Deadline != nil {
		v := *r.Deadline
		r.Deadline = &v
	}
	if r.ClosedAt != nil {
		v := *r.ClosedAt
		r.ClosedAt = &v
	}
	return r
}

func indexRequest(reqs []entity.SourcingRequest, id string) int {
	for i := range reqs {
		if reqs[i].ID == id {
			return i
		}
	}
	return -1
}

func indexBid(bids []entity.SourcingBid, id string) int {
	for i := range bids {
		if bids[i].ID == id {
			return i
		}
	}
	return -1
}

// Create abre una solicitud y devuelve su ID.
func (s *SourcingStore) Create(in SourcingInput) string {
	var id string
	s.mutate(func(st *sourcingState) bool {
		now := s.opts.now()
		id = newID(now)
		qty := in.Quantity
		if qty < 1 {
			qty = 1
		}
		req := entity.SourcingRequest{
			ID:          id,
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
			Quantity:    qty,
			Unit:        in.Unit,
			Status:      entity.SourcingStatusOpen,
			Bids:        []entity.SourcingBid{},
			CreatedAt:   now,
		}
		if in.TargetPrice != nil {
			v := *in.TargetPrice
			req.TargetPrice = &v
		}
		if in.Deadline != nil {
			v := *in.Deadline
			req.Deadline = &v
		}
		st.Requests = append(st.Requests, req)
		return true
	})
	return id
}

// Remove elimina la solicitud. No-op si no existe.
func (s *SourcingStore) Remove(id string) {
	s.mutate(func(st *sourcingState) bool {
		i := indexRequest(st.Requests, id)
		if i < 0 {
			return false
		}
		st.Requests = append(st.Requests[:i], st.Requests[i+1:]...)
		return true
	})
}

// Update aplica el patch. Devuelve false si no existe o si ya fue adjudicada o cerrada.
func (s *SourcingStore) Update(id string, p SourcingPatch) bool {
	return s.mutate(func(st *sourcingState) bool {
		i := indexRequest(st.Requests, id)
		if i < 0 || !st.Requests[i].AcceptsBids() {
			return false
		}
		r := &st.Requests[i]
		if p.Title != nil {
			r.Title = *p.Title
		}
		if p.Description != nil {
			r.Description = *p.Description
		}
		if p.Category != nil {
			r.Category = *p.Category
		}
		if p.Quantity != nil && *p.Quantity >= 1 {
			r.Quantity = *p.Quantity
		}
		if p.Unit != nil {
			r.Unit = *p.Unit
		}
		if p.TargetPrice != nil {
			v := *p.TargetPrice
			r.TargetPrice = &v
		}
		if p.Deadline != nil {
			v := *p.Deadline
			r.Deadline = &v
		}
		return true
	})
}

// withRequest ejecuta fn sobre la solicitud bajo el lock; fn decide si hubo cambio.
func (s *SourcingStore) withRequest(id string, fn func(r *entity.SourcingRequest) (bool, error)) error {
	var err error
	s.mutate(func(st *sourcingState) bool {
		i := indexRequest(st.Requests, id)
		if i < 0 {
			err = fmt.Errorf("solicitud %s: %w", id, domain.ErrNotFound)
			return false
		}
		var changed bool
		changed, err = fn(&st.Requests[i])
		return changed
	})
	return err
}

func (s *SourcingStore) rejectTransition(r *entity.SourcingRequest, action string) error {
	s.log.Warn().Str("request", r.ID).Str("status", r.Status).Str("action", action).Msg("transición rechazada")
	return fmt.Errorf("solicitud %s en estado %s no admite %s: %w", r.ID, r.Status, action, domain.ErrInvalidTransition)
}

// AddBid registra una oferta. La primera oferta pasa la solicitud de open a bidding.
func (s *SourcingStore) AddBid(requestID string, in BidInput) (string, error) {
	var bidID string
	err := s.withRequest(requestID, func(r *entity.SourcingRequest) (bool, error) {
		if !r.AcceptsBids() {
			return false, s.rejectTransition(r, "ofertas")
		}
		now := s.opts.now()
		bidID = newID(now)
		r.Bids = append(r.Bids, entity.SourcingBid{
			ID:           bidID,
			VendorID:     in.VendorID,
			VendorName:   in.VendorName,
			UnitPrice:    in.UnitPrice,
			MOQ:          in.MOQ,
			LeadTimeDays: in.LeadTimeDays,
			Notes:        in.Notes,
			Status:       entity.BidStatusPending,
			SubmittedAt:  now,
		})
		if r.Status == entity.SourcingStatusOpen {
			r.Status = entity.SourcingStatusBidding
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return bidID, nil
}

func (s *SourcingStore) setBidStatus(requestID, bidID, status string) error {
	return s.withRequest(requestID, func(r *entity.SourcingRequest) (bool, error) {
		i := indexBid(r.Bids, bidID)
		if i < 0 {
			return false, fmt.Errorf("oferta %s: %w", bidID, domain.ErrNotFound)
		}
		if !r.AcceptsBids() {
			return false, s.rejectTransition(r, "cambios de oferta")
		}
		if r.Bids[i].Status == status {
			return false, nil
		}
		r.Bids[i].Status = status
		return true, nil
	})
}

// AcceptBid marca la oferta como aceptada. No cambia el estado de la solicitud.
func (s *SourcingStore) AcceptBid(requestID, bidID string) error {
	return s.setBidStatus(requestID, bidID, entity.BidStatusAccepted)
}

// RejectBid marca la oferta como rechazada. No cambia el estado de la solicitud.
func (s *SourcingStore) RejectBid(requestID, bidID string) error {
	return s.setBidStatus(requestID, bidID, entity.BidStatusRejected)
}

// Award adjudica la solicitud a la oferta dada; solo desde bidding y nunca a una oferta
// rechazada. La oferta ganadora queda aceptada.
func (s *SourcingStore) Award(requestID, bidID string) error {
	return s.withRequest(requestID, func(r *entity.SourcingRequest) (bool, error) {
		if r.Status != entity.SourcingStatusBidding {
			return false, s.rejectTransition(r, "adjudicación")
		}
		i := indexBid(r.Bids, bidID)
		if i < 0 {
			return false, fmt.Errorf("oferta %s: %w", bidID, domain.ErrNotFound)
		}
		if r.Bids[i].Status == entity.BidStatusRejected {
			s.log.Warn().Str("request", r.ID).Str("bid", bidID).Msg("adjudicación de oferta rechazada")
			return false, fmt.Errorf("oferta %s rechazada no se puede adjudicar: %w", bidID, domain.ErrInvalidTransition)
		}
		now := s.opts.now()
		r.Bids[i].Status = entity.BidStatusAccepted
		r.Status = entity.SourcingStatusAwarded
		r.AwardedTo = r.Bids[i].VendorID
		r.AwardedBidID = bidID
		r.ClosedAt = &now
		return true, nil
	})
}

// Close cierra la solicitud sin adjudicar; desde open o bidding.
func (s *SourcingStore) Close(requestID string) error {
	return s.withRequest(requestID, func(r *entity.SourcingRequest) (bool, error) {
		if !r.AcceptsBids() {
			return false, s.rejectTransition(r, "cierre")
		}
		now := s.opts.now()
		r.Status = entity.SourcingStatusClosed
		r.ClosedAt = &now
		return true, nil
	})
}

// Get devuelve una copia de la solicitud.
func (s *SourcingStore) Get(id string) (entity.SourcingRequest, bool) {
	var out entity.SourcingRequest
	ok := false
	s.read(func(st *sourcingState) {
		if i := indexRequest(st.Requests, id); i >= 0 {
			out, ok = cloneRequest(st.Requests[i]), true
		}
	})
	return out, ok
}

func (s *SourcingStore) filter(keep func(entity.SourcingRequest) bool) []entity.SourcingRequest {
	out := []entity.SourcingRequest{}
	s.read(func(st *sourcingState) {
		for _, r := range st.Requests {
			if keep(r) {
				out = append(out, cloneRequest(r))
			}
		}
	})
	return out
}

// List copia de todas las solicitudes.
func (s *SourcingStore) List() []entity.SourcingRequest {
	return s.filter(func(entity.SourcingRequest) bool { return true })
}

// ByStatus solicitudes en el estado dado.
func (s *SourcingStore) ByStatus(status string) []entity.SourcingRequest {
	return s.filter(func(r entity.SourcingRequest) bool { return r.Status == status })
}

// ByCategory solicitudes de una categoría (sin distinguir mayúsculas).
func (s *SourcingStore) ByCategory(category string) []entity.SourcingRequest {
	return s.filter(func(r entity.SourcingRequest) bool { return strings.EqualFold(r.Category, category) })
}

// Search busca en título, descripción y categoría.
func (s *SourcingStore) Search(text string) []entity.SourcingRequest {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return s.List()
	}
	return s.filter(func(r entity.SourcingRequest) bool {
		return strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q) ||
			strings.Contains(strings.ToLower(r.Category), q)
	})
}

// BidsByVendor ofertas de un proveedor en todas las solicitudes.
func (s *SourcingStore) BidsByVendor(vendorID string) []entity.SourcingBid {
	out := []entity.SourcingBid{}
	s.read(func(st *sourcingState) {
		for _, r := range st.Requests {
			for _, b := range r.Bids {
				if b.VendorID == vendorID {
					out = append(out, b)
				}
			}
		}
	})
	return out
}
