package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tinhme/internal/cart"
	"tinhme/internal/domain"
	"tinhme/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated is returned when checkout is attempted without a
	// resolved session identity.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrEmptyCart is returned when checkout is attempted on a cart with no
	// lines.
	ErrEmptyCart = errors.New("cart is empty")
)

// MonthlySales is one bar of the admin sales chart.
type MonthlySales struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

// OrderService composes orders from carts and drives the fulfillment
// lifecycle. Checkout never clears the cart itself: a cart whose order
// failed to persist must stay intact for retry, so clearing is the
// caller's job after a successful return.
type OrderService interface {
	Checkout(ctx context.Context, identity *domain.User, c *cart.Cart) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus) (*domain.Order, error)
	SalesReport(ctx context.Context) ([]MonthlySales, error)
	Summary(ctx context.Context) (totalRevenue float64, pendingOrders int, err error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// Checkout converts the cart into an immutable order owned by identity.
// Preconditions: identity resolved, cart non-empty. Items are deep copies
// of the cart lines and the total is computed once here; later cart or
// catalog changes never touch the stored order. Stock is consumed inside
// the order repository's transaction, so a shortfall aborts the whole
// checkout with no order written.
func (s *orderService) Checkout(ctx context.Context, identity *domain.User, c *cart.Cart) (*domain.Order, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if c == nil || c.Len() == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	orderID := uuid.New()

	lines := c.Lines()
	items := make([]domain.OrderItem, 0, len(lines))
	var total float64
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		})
		total += line.Price * float64(line.Quantity)
	}

	order := &domain.Order{
		ID:        orderID,
		UserID:    identity.ID,
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	return order, nil
}

// GetOrder retrieves a single order with its items.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders retrieves all orders for the admin console.
func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersForUser retrieves the order history of one customer.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus transitions an order to target. Legality is checked here,
// against the in-memory state machine, before anything is persisted; an
// illegal request returns *domain.IllegalTransitionError and changes
// nothing. Cancelling a pending order returns its quantities to stock.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Transition(target); err != nil {
		return nil, err
	}

	if target == domain.OrderStatusCancelled {
		if err := s.orderRepo.CancelWithRestock(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to cancel order: %w", err)
		}
	} else {
		if err := s.orderRepo.UpdateStatus(ctx, orderID, target); err != nil {
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
	}

	return order, nil
}

// SalesReport aggregates monthly revenue for the dashboard chart.
func (s *orderService) SalesReport(ctx context.Context) ([]MonthlySales, error) {
	stats, err := s.orderRepo.SalesByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}

	report := make([]MonthlySales, 0, len(stats))
	for _, stat := range stats {
		report = append(report, MonthlySales{
			Name:  stat.Month.Format("Jan 2006"),
			Sales: stat.Sales,
		})
	}
	return report, nil
}

// Summary returns the dashboard headline figures: total revenue across all
// orders and the number still pending.
func (s *orderService) Summary(ctx context.Context) (float64, int, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to summarize orders: %w", err)
	}

	var revenue float64
	var pending int
	for _, order := range orders {
		revenue += order.Total
		if order.Status == domain.OrderStatusPending {
			pending++
		}
	}
	return revenue, pending, nil
}
