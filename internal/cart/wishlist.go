package cart

import "github.com/google/uuid"

// Wishlist is a toggle-membership set of product ids. It shares its
// lifecycle with the cart: both are session-scoped and reset on logout.
type Wishlist struct {
	ids map[uuid.UUID]struct{}
}

// NewWishlist returns an empty wishlist.
func NewWishlist() *Wishlist {
	return &Wishlist{ids: make(map[uuid.UUID]struct{})}
}

// Toggle inserts id if absent and removes it if present. It never errors.
func (w *Wishlist) Toggle(id uuid.UUID) {
	if _, ok := w.ids[id]; ok {
		delete(w.ids, id)
		return
	}
	w.ids[id] = struct{}{}
}

// Contains reports membership of id.
func (w *Wishlist) Contains(id uuid.UUID) bool {
	_, ok := w.ids[id]
	return ok
}

// Len is the number of wishlisted products.
func (w *Wishlist) Len() int {
	return len(w.ids)
}

// IDs returns the wishlisted product ids in unspecified order.
func (w *Wishlist) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(w.ids))
	for id := range w.ids {
		out = append(out, id)
	}
	return out
}

// RestoreWishlist rebuilds a wishlist from saved ids.
func RestoreWishlist(ids []uuid.UUID) *Wishlist {
	w := NewWishlist()
	for _, id := range ids {
		w.ids[id] = struct{}{}
	}
	return w
}
