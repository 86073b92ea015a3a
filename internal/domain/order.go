package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// validNext enumerates every legal fulfillment transition. DELIVERED and
// CANCELLED are terminal; a shipped order can no longer be cancelled.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:   {OrderStatusDelivered: true},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether from -> to is a legal fulfillment transition.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// IllegalTransitionError reports a fulfillment transition outside the legal
// set, carrying both statuses for diagnostics.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition from %s to %s", e.From, e.To)
}

// OrderItem is a frozen snapshot of a cart line at checkout time. It copies
// the product's display fields so that later catalog edits never alter a
// past order.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	ImageURL  string    `json:"image_url" db:"image_url"`
}

// Order is the immutable record created from a cart at checkout. Only the
// status field changes after creation, and only through Transition.
type Order struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total" db:"total"`
	Status    OrderStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Transition moves the order to target if the transition is legal. On an
// illegal request the order is left unchanged and an
// *IllegalTransitionError is returned.
func (o *Order) Transition(target OrderStatus) error {
	if !CanTransition(o.Status, target) {
		return &IllegalTransitionError{From: o.Status, To: target}
	}
	o.Status = target
	return nil
}
