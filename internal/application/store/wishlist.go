package store

import (
	"context"

	"github.com/jhoicas/channah-state/internal/domain/entity"
	"github.com/jhoicas/channah-state/internal/domain/repository"
)

type wishlistState struct {
	Items []entity.WishlistItem `json:"items"`
}

func (st *wishlistState) repair() {
	items := make([]entity.WishlistItem, 0, len(st.Items))
	for _, it := range st.Items {
		if indexWishlist(items, it.ProductID) < 0 {
			items = append(items, it)
		}
	}
	st.Items = items
}

// WishlistStore lista de deseos; ProductID es único.
type WishlistStore struct {
	*base[wishlistState]
}

// NewWishlistStore construye el store y lo siembra con el estado persistido.
func NewWishlistStore(ctx context.Context, repo repository.StateRepository, opts Options) *WishlistStore {
	return &WishlistStore{base: newBase(ctx, repo, KeyWishlist, opts, wishlistState{Items: []entity.WishlistItem{}})}
}

func indexWishlist(items []entity.WishlistItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add agrega el producto. Devuelve false si ya estaba (no se duplica).
func (s *WishlistStore) Add(item entity.WishlistItem) bool {
	return s.mutate(func(st *wishlistState) bool {
		if indexWishlist(st.Items, item.ProductID) >= 0 {
			return false
		}
		item.AddedAt = s.opts.now()
		st.Items = append(st.Items, item)
		return true
	})
}

// Remove quita el producto. No-op si no existe.
func (s *WishlistStore) Remove(productID string) {
	s.mutate(func(st *wishlistState) bool {
		i := indexWishlist(st.Items, productID)
		if i < 0 {
			return false
		}
		st.Items = append(st.Items[:i], st.Items[i+1:]...)
		return true
	})
}

// Toggle agrega o quita; devuelve true si el producto quedó en la lista.
func (s *WishlistStore) Toggle(item entity.WishlistItem) bool {
	present := false
	s.mutate(func(st *wishlistState) bool {
		if i := indexWishlist(st.Items, item.ProductID); i >= 0 {
			st.Items = append(st.Items[:i], st.Items[i+1:]...)
			return true
		}
		item.AddedAt = s.opts.now()
		st.Items = append(st.Items, item)
		present = true
		return true
	})
	return present
}

// Has indica si el producto está en la lista.
func (s *WishlistStore) Has(productID string) bool {
	ok := false
	s.read(func(st *wishlistState) { ok = indexWishlist(st.Items, productID) >= 0 })
	return ok
}

// Get devuelve el ítem del producto.
func (s *WishlistStore) Get(productID string) (entity.WishlistItem, bool) {
	var out entity.WishlistItem
	ok := false
	s.read(func(st *wishlistState) {
		if i := indexWishlist(st.Items, productID); i >= 0 {
			out, ok = st.Items[i], true
		}
	})
	return out, ok
}

// List copia de los ítems en orden de inserción.
func (s *WishlistStore) List() []entity.WishlistItem {
	var out []entity.WishlistItem
	s.read(func(st *wishlistState) {
		out = append(make([]entity.WishlistItem, 0, len(st.Items)), st.Items...)
	})
	return out
}

// Clear vacía la lista.
func (s *WishlistStore) Clear() {
	s.mutate(func(st *wishlistState) bool {
		if len(st.Items) == 0 {
			return false
		}
		st.Items = []entity.WishlistItem{}
		return true
	})
}

// MoveToCart agrega el producto al carrito y lo quita de la lista.
// Son dos mutaciones independientes: no hay atomicidad entre stores.
func (s *WishlistStore) MoveToCart(productID string, cart *CartStore) bool {
	item, ok := s.Get(productID)
	if !ok {
		return false
	}
	cart.Add(CartItemInput{
		ProductID: item.ProductID,
		Name:      item.Name,
		Slug:      item.Slug,
		Price:     item.Price,
		Image:     item.Image,
		Quantity:  1,
	})
	s.Remove(productID)
	return true
}
