package cart

import (
	"tinhme/internal/domain"

	"github.com/google/uuid"
)

// Line is a single cart entry. Price, name, image and category are copied
// from the product at the moment it is first added, not re-fetched later.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"image_url"`
	Quantity  int       `json:"quantity"`
}

// Cart holds a session's in-progress selections. It keeps at most one line
// per product id; repeat adds merge into the existing line. The zero value
// is not usable, use New.
type Cart struct {
	lines map[uuid.UUID]*Line
	order []uuid.UUID // insertion order, for stable display and checkout
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[uuid.UUID]*Line)}
}

// Add merges the product into the cart: an existing line gains quantity 1,
// otherwise a new line with quantity 1 is inserted with the product's
// current price snapshot. Stock is not checked here; it is enforced at
// checkout where it is authoritative.
func (c *Cart) Add(p domain.Product) {
	if line, ok := c.lines[p.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[p.ID] = &Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	}
	c.order = append(c.order, p.ID)
}

// SetQuantity replaces the line's quantity with qty exactly. Quantities
// below 1 are ignored (callers must use Remove to delete a line), as is an
// unknown product id.
func (c *Cart) SetQuantity(id uuid.UUID, qty int) {
	if qty < 1 {
		return
	}
	if line, ok := c.lines[id]; ok {
		line.Quantity = qty
	}
}

// Remove deletes the line for id. Removing an absent id is a no-op.
func (c *Cart) Remove(id uuid.UUID) {
	if _, ok := c.lines[id]; !ok {
		return
	}
	delete(c.lines, id)
	for i, pid := range c.order {
		if pid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart. Safe to call repeatedly.
func (c *Cart) Clear() {
	c.lines = make(map[uuid.UUID]*Line)
	c.order = nil
}

// Total is the sum of price*quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// Count is the sum of quantities, used for the cart badge.
func (c *Cart) Count() int {
	var n int
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Get returns a copy of the line for id, if present.
func (c *Cart) Get(id uuid.UUID) (Line, bool) {
	if line, ok := c.lines[id]; ok {
		return *line, true
	}
	return Line{}, false
}

// Lines returns copies of all lines in insertion order. Mutating the result
// does not affect the cart.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		if line, ok := c.lines[id]; ok {
			out = append(out, *line)
		}
	}
	return out
}

// Restore rebuilds a cart from previously saved lines, preserving their
// order. Lines with quantity below 1 or duplicate product ids are dropped.
func Restore(lines []Line) *Cart {
	c := New()
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		if _, ok := c.lines[line.ProductID]; ok {
			continue
		}
		l := line
		c.lines[line.ProductID] = &l
		c.order = append(c.order, line.ProductID)
	}
	return c
}
