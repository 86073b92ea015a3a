package cart

import (
	"testing"

	"tinhme/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func testProduct(price float64) domain.Product {
	return domain.Product{
		ID:       uuid.New(),
		Name:     "Ceramic Mug",
		Price:    price,
		Category: "Kitchen",
		ImageURL: "https://example.com/mug.jpg",
		Stock:    10,
	}
}

func TestAddMergesRepeatAddsIntoOneLine(t *testing.T) {
	c := New()
	p := testProduct(12.50)

	c.Add(p)
	c.Add(p)
	c.Add(p)

	if c.Len() != 1 {
		t.Fatalf("expected one line, got %d", c.Len())
	}
	line, ok := c.Get(p.ID)
	if !ok {
		t.Fatal("line missing after add")
	}
	if line.Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", line.Quantity)
	}
	if line.Price != p.Price {
		t.Errorf("expected snapshotted price %v, got %v", p.Price, line.Price)
	}
}

func TestAddSnapshotsPriceAtFirstInsert(t *testing.T) {
	c := New()
	p := testProduct(10.00)
	c.Add(p)

	// Catalog price changes do not touch lines already in the cart
	p.Price = 99.99
	c.Add(p)

	line, _ := c.Get(p.ID)
	if line.Price != 10.00 {
		t.Errorf("expected original price 10.00, got %v", line.Price)
	}
	if line.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", line.Quantity)
	}
}

func TestSetQuantityReplacesExactly(t *testing.T) {
	c := New()
	p := testProduct(5.00)
	c.Add(p)

	c.SetQuantity(p.ID, 7)

	line, _ := c.Get(p.ID)
	if line.Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", line.Quantity)
	}
}

func TestSetQuantityBelowOneIsIgnored(t *testing.T) {
	c := New()
	p := testProduct(5.00)
	c.Add(p)
	c.SetQuantity(p.ID, 4)

	c.SetQuantity(p.ID, 0)
	c.SetQuantity(p.ID, -3)

	line, _ := c.Get(p.ID)
	if line.Quantity != 4 {
		t.Errorf("expected quantity 4 after ignored updates, got %d", line.Quantity)
	}
}

func TestSetQuantityUnknownIDIsNoOp(t *testing.T) {
	c := New()
	c.Add(testProduct(5.00))

	c.SetQuantity(uuid.New(), 10)

	if c.Count() != 1 {
		t.Errorf("expected count 1, got %d", c.Count())
	}
}

func TestRemoveThenAddStartsFresh(t *testing.T) {
	c := New()
	p := testProduct(8.00)
	c.Add(p)
	c.SetQuantity(p.ID, 5)

	c.Remove(p.ID)
	if c.Len() != 0 {
		t.Fatalf("expected empty cart after remove, got %d lines", c.Len())
	}

	c.Add(p)
	line, _ := c.Get(p.ID)
	if line.Quantity != 1 {
		t.Errorf("re-added line should start at quantity 1, got %d", line.Quantity)
	}
}

func TestRemoveAbsentIDIsNoOp(t *testing.T) {
	c := New()
	c.Add(testProduct(1.00))

	c.Remove(uuid.New())

	if c.Len() != 1 {
		t.Errorf("expected one line, got %d", c.Len())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	c := New()
	c.Add(testProduct(1.00))
	c.Add(testProduct(2.00))

	c.Clear()
	c.Clear()

	if c.Len() != 0 || c.Total() != 0 || c.Count() != 0 {
		t.Errorf("cart not empty after clear: len=%d total=%v count=%d", c.Len(), c.Total(), c.Count())
	}
}

func TestLinesPreserveInsertionOrder(t *testing.T) {
	c := New()
	first := testProduct(1.00)
	second := testProduct(2.00)
	third := testProduct(3.00)

	c.Add(first)
	c.Add(second)
	c.Add(third)
	c.Add(second) // merge must not reorder

	lines := c.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := []uuid.UUID{first.ID, second.ID, third.ID}
	for i, id := range want {
		if lines[i].ProductID != id {
			t.Errorf("line %d: expected product %s, got %s", i, id, lines[i].ProductID)
		}
	}
}

func TestLinesReturnsCopies(t *testing.T) {
	c := New()
	p := testProduct(4.00)
	c.Add(p)

	lines := c.Lines()
	lines[0].Quantity = 100

	line, _ := c.Get(p.ID)
	if line.Quantity != 1 {
		t.Errorf("mutating Lines() result leaked into the cart: quantity %d", line.Quantity)
	}
}

func TestRestoreDropsInvalidLines(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	c := Restore([]Line{
		{ProductID: id, Name: "A", Price: 1, Quantity: 2},
		{ProductID: id, Name: "A dup", Price: 1, Quantity: 9},
		{ProductID: other, Name: "B", Price: 2, Quantity: 0},
	})

	if c.Len() != 1 {
		t.Fatalf("expected 1 line after restore, got %d", c.Len())
	}
	line, _ := c.Get(id)
	if line.Quantity != 2 {
		t.Errorf("duplicate should be dropped, expected quantity 2, got %d", line.Quantity)
	}
}

func TestProperty_TotalIsSumOfPriceTimesQuantity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total equals the sum over lines of price*quantity", prop.ForAll(
		func(prices []float64, quantities []int) bool {
			c := New()
			var want float64

			n := len(prices)
			if len(quantities) < n {
				n = len(quantities)
			}

			for i := 0; i < n; i++ {
				price := prices[i]
				qty := quantities[i]

				p := testProduct(price)
				c.Add(p)
				c.SetQuantity(p.ID, qty)
				want += price * float64(qty)
			}

			return c.Total() == want
		},
		gen.SliceOf(gen.Float64Range(0, 500)),
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_CountIsSumOfQuantities(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("count equals the sum of line quantities", prop.ForAll(
		func(quantities []int) bool {
			c := New()
			var want int

			for _, qty := range quantities {
				p := testProduct(1.00)
				c.Add(p)
				c.SetQuantity(p.ID, qty)
				want += qty
			}

			return c.Count() == want
		},
		gen.SliceOf(gen.IntRange(1, 50)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_RestoreRoundTripsSavedLines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Restore(Lines()) reproduces the cart", prop.ForAll(
		func(quantities []int) bool {
			c := New()
			for _, qty := range quantities {
				p := testProduct(2.50)
				c.Add(p)
				c.SetQuantity(p.ID, qty)
			}

			restored := Restore(c.Lines())

			if restored.Len() != c.Len() || restored.Total() != c.Total() || restored.Count() != c.Count() {
				return false
			}

			want := c.Lines()
			got := restored.Lines()
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
