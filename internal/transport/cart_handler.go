package transport

import (
	"errors"
	"net/http"

	"tinhme/internal/cart"
	"tinhme/internal/domain"
	"tinhme/internal/middleware"
	"tinhme/internal/repository"
	"tinhme/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart payload
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// UpdateQuantityRequest represents the set-quantity payload
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartResponse represents the session cart
type CartResponse struct {
	Items []cart.Line `json:"items"`
	Total float64     `json:"total"`
	Count int         `json:"count"`
}

// WishlistResponse represents the session wishlist
type WishlistResponse struct {
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// CartHandler handles the session cart, wishlist and checkout. Every route
// is authenticated: the cart is keyed by the session identity and survives
// reloads through the redis-backed store.
type CartHandler struct {
	store          *cart.Store
	catalogService service.CatalogService
	orderService   service.OrderService
	logger         *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(store *cart.Store, catalogService service.CatalogService, orderService service.OrderService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		store:          store,
		catalogService: catalogService,
		orderService:   orderService,
		logger:         logger,
	}
}

// RegisterRoutes registers cart and wishlist routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
		r.Post("/checkout", h.Checkout)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetWishlist)
		r.Post("/{productID}/toggle", h.ToggleWishlist)
	})
}

// GetCart returns the session cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := h.store.LoadCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// AddItem merges a product into the cart: an existing line gains quantity
// one, a new product gets a fresh line with the product's current price
// snapshotted.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	c, err := h.store.LoadCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	c.Add(*product)

	if err := h.store.SaveCart(r.Context(), userID, c); err != nil {
		h.logger.Error("Failed to save cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// UpdateQuantity sets a line's quantity exactly. Quantities below one are
// rejected by validation; unknown product ids are a no-op.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.store.LoadCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	c.SetQuantity(productID, req.Quantity)

	if err := h.store.SaveCart(r.Context(), userID, c); err != nil {
		h.logger.Error("Failed to save cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// RemoveItem deletes a line from the cart. Removing an absent line is fine.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	c, err := h.store.LoadCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	c.Remove(productID)

	if err := h.store.SaveCart(r.Context(), userID, c); err != nil {
		h.logger.Error("Failed to save cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(c))
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.store.ClearCart(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(cart.New()))
}

// Checkout converts the cart into an order. The saved cart is cleared only
// after the order persisted; a failed checkout leaves it intact for retry.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := h.store.LoadCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	// The auth middleware already verified the token, so the identity can
	// be rebuilt from its claims without another user lookup.
	identity := &domain.User{ID: userID}
	if role, ok := middleware.GetUserRole(r.Context()); ok {
		identity.Role = role
	}

	order, err := h.orderService.Checkout(r.Context(), identity, c)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	if err := h.store.ClearCart(r.Context(), userID); err != nil {
		// The order exists; losing the clear only leaves a stale cart
		h.logger.Error("Failed to clear cart after checkout", zap.Error(err))
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *CartHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var stockErr *repository.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrUnauthenticated):
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authenticated")
	case errors.As(err, &stockErr):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, "insufficient stock", map[string]interface{}{
			"product_id": stockErr.ProductID.String(),
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusConflict, "a cart item is no longer available")
	default:
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
	}
}

// GetWishlist returns the session wishlist.
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	wl, err := h.store.LoadWishlist(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{ProductIDs: wl.IDs()})
}

// ToggleWishlist flips a product's wishlist membership.
func (h *CartHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	wl, err := h.store.LoadWishlist(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load wishlist")
		return
	}

	wl.Toggle(productID)

	if err := h.store.SaveWishlist(r.Context(), userID, wl); err != nil {
		h.logger.Error("Failed to save wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{ProductIDs: wl.IDs()})
}

func toCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Items: c.Lines(),
		Total: c.Total(),
		Count: c.Count(),
	}
}
