package transport

import (
	"errors"
	"net/http"

	"tinhme/internal/domain"
	"tinhme/internal/middleware"
	"tinhme/internal/repository"
	"tinhme/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateStatusRequest represents the fulfillment transition payload
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DashboardResponse represents the admin dashboard headline figures
type DashboardResponse struct {
	TotalRevenue  float64           `json:"total_revenue"`
	PendingOrders int               `json:"pending_orders"`
	LowStock      []*domain.Product `json:"low_stock"`
}

// OrderHandler handles HTTP requests for orders and the admin dashboard.
type OrderHandler struct {
	orderService   service.OrderService
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, catalogService service.CatalogService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers order routes: customers see their own history,
// admins see everything and drive fulfillment.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListMine)
		r.Get("/{orderID}", h.Get)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/orders", h.ListAll)
		r.Put("/orders/{orderID}/status", h.UpdateStatus)
		r.Get("/reports/sales", h.SalesReport)
		r.Get("/dashboard", h.Dashboard)
	})
}

// ListMine returns the authenticated customer's order history.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListOrdersForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Get returns a single order. Customers may only read their own; admins
// may read any.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	role, _ := middleware.GetUserRole(r.Context())
	if order.UserID != userID && role != domain.RoleAdmin {
		// Hide the order's existence from other customers
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListAll returns every order for the admin console.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus drives the fulfillment lifecycle. Illegal transitions are
// rejected with the attempted edge in the error details and leave the
// order untouched.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target := domain.OrderStatus(req.Status)
	if !target.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, target)
	if err != nil {
		var transitionErr *domain.IllegalTransitionError
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.As(err, &transitionErr):
			middleware.RespondWithErrorDetails(w, http.StatusConflict, "illegal status transition", map[string]interface{}{
				"from": string(transitionErr.From),
				"to":   string(transitionErr.To),
			})
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(target)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// SalesReport returns monthly revenue for the dashboard chart.
func (h *OrderHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.orderService.SalesReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build sales report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// Dashboard returns the admin landing figures: revenue, pending order
// count and products running low.
func (h *OrderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	revenue, pending, err := h.orderService.Summary(r.Context())
	if err != nil {
		h.logger.Error("Failed to summarize orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	lowStock, err := h.catalogService.LowStock(r.Context())
	if err != nil {
		h.logger.Error("Failed to list low stock products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DashboardResponse{
		TotalRevenue:  revenue,
		PendingOrders: pending,
		LowStock:      lowStock,
	})
}
