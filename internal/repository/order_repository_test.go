package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tinhme/internal/domain"

	"github.com/google/uuid"
)

func seedProduct(t *testing.T, price float64, stock int) *domain.Product {
	t.Helper()

	now := time.Now()
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      "Walnut Shelf",
		Price:     price,
		Category:  "Living Room",
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM products WHERE id = $1", product.ID)
	})
	return product
}

func buildOrder(userID uuid.UUID, product *domain.Product, qty int) *domain.Order {
	now := time.Now()
	orderID := uuid.New()
	return &domain.Order{
		ID:     orderID,
		UserID: userID,
		Items: []domain.OrderItem{{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  qty,
		}},
		Total:     product.Price * float64(qty),
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func currentStock(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	var stock int
	if err := testDB.QueryRow("SELECT stock FROM products WHERE id = $1", productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func TestCreateOrderConsumesStockAndPersistsItems(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	product := seedProduct(t, 25.00, 10)
	order := buildOrder(user.ID, product, 3)

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if stock := currentStock(t, product.ID); stock != 7 {
		t.Errorf("expected stock 7 after checkout, got %d", stock)
	}

	found, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Total != 75.00 || found.Status != domain.OrderStatusPending {
		t.Errorf("unexpected order: total=%v status=%s", found.Total, found.Status)
	}
	if len(found.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(found.Items))
	}
	item := found.Items[0]
	if item.ProductID != product.ID || item.Name != product.Name || item.Price != 25.00 || item.Quantity != 3 {
		t.Errorf("item snapshot mismatch: %+v", item)
	}
}

func TestCreateOrderShortfallWritesNothing(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	product := seedProduct(t, 25.00, 2)
	order := buildOrder(user.ID, product, 5)

	err := repo.Create(ctx, order)

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != product.ID || stockErr.Requested != 5 || stockErr.Available != 2 {
		t.Errorf("unexpected error fields: %+v", stockErr)
	}

	// The whole transaction must have rolled back
	if stock := currentStock(t, product.ID); stock != 2 {
		t.Errorf("stock must be untouched, got %d", stock)
	}
	if _, err := repo.FindByID(ctx, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("no order row should exist, got %v", err)
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	missing := &domain.Product{ID: uuid.New(), Name: "Ghost Chair", Price: 10.00}
	order := buildOrder(user.ID, missing, 1)

	if err := repo.Create(ctx, order); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCancelWithRestockReturnsQuantities(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	user := insertUser(t, domain.RoleCustomer)
	product := seedProduct(t, 25.00, 10)
	order := buildOrder(user.ID, product, 4)

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if stock := currentStock(t, product.ID); stock != 6 {
		t.Fatalf("expected stock 6 after checkout, got %d", stock)
	}

	if err := repo.CancelWithRestock(ctx, order); err != nil {
		t.Fatalf("CancelWithRestock failed: %v", err)
	}

	if stock := currentStock(t, product.ID); stock != 10 {
		t.Errorf("expected stock restored to 10, got %d", stock)
	}

	found, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Status != domain.OrderStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", found.Status)
	}
}

func TestUpdateStatusUnknownOrderReturnsNotFound(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	err := repo.UpdateStatus(ctx, uuid.New(), domain.OrderStatusShipped)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListByUserScopesToOwner(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	alice := insertUser(t, domain.RoleCustomer)
	bob := insertUser(t, domain.RoleCustomer)
	product := seedProduct(t, 25.00, 100)

	mine := buildOrder(alice.ID, product, 1)
	theirs := buildOrder(bob.ID, product, 2)
	for _, order := range []*domain.Order{mine, theirs} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	orders, err := repo.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].ID != mine.ID {
		t.Errorf("listed order belongs to someone else")
	}
	if len(orders[0].Items) != 1 {
		t.Errorf("items should be loaded with the order, got %d", len(orders[0].Items))
	}
}

func TestSalesByMonthExcludesCancelledOrders(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()

	if _, err := testDB.Exec("DELETE FROM orders"); err != nil {
		t.Fatalf("failed to reset orders: %v", err)
	}

	user := insertUser(t, domain.RoleCustomer)
	product := seedProduct(t, 50.00, 100)

	kept := buildOrder(user.ID, product, 2)
	cancelled := buildOrder(user.ID, product, 1)
	for _, order := range []*domain.Order{kept, cancelled} {
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.CancelWithRestock(ctx, cancelled); err != nil {
		t.Fatalf("CancelWithRestock failed: %v", err)
	}

	stats, err := repo.SalesByMonth(ctx)
	if err != nil {
		t.Fatalf("SalesByMonth failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 month of sales, got %d", len(stats))
	}
	if stats[0].Sales != 100.00 {
		t.Errorf("cancelled revenue must not count, got %v", stats[0].Sales)
	}
}
