package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis key layout:
//   cart:{user_id}     -> JSON array of lines
//   wishlist:{user_id} -> JSON array of product ids
const (
	keyCart     = "cart:%s"
	keyWishlist = "wishlist:%s"
)

// SessionTTL bounds how long an abandoned cart or wishlist survives.
var SessionTTL = 30 * 24 * time.Hour

// Store persists carts and wishlists in Redis so a session survives
// reloads. Entries are cleared on logout and after checkout.
type Store struct {
	client *redis.Client
}

// NewStore creates a Store backed by the given Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// LoadCart fetches the user's saved cart, or an empty cart when none is
// saved.
func (s *Store) LoadCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	key := fmt.Sprintf(keyCart, userID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return Restore(lines), nil
}

// SaveCart persists the user's cart, replacing any previous snapshot.
func (s *Store) SaveCart(ctx context.Context, userID uuid.UUID, c *Cart) error {
	key := fmt.Sprintf(keyCart, userID)

	data, err := json.Marshal(c.Lines())
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, key, data, SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// LoadWishlist fetches the user's saved wishlist, or an empty one.
func (s *Store) LoadWishlist(ctx context.Context, userID uuid.UUID) (*Wishlist, error) {
	key := fmt.Sprintf(keyWishlist, userID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return NewWishlist(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist: %w", err)
	}

	return RestoreWishlist(ids), nil
}

// SaveWishlist persists the user's wishlist.
func (s *Store) SaveWishlist(ctx context.Context, userID uuid.UUID, w *Wishlist) error {
	key := fmt.Sprintf(keyWishlist, userID)

	data, err := json.Marshal(w.IDs())
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}

	if err := s.client.Set(ctx, key, data, SessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}

// ClearCart drops the user's saved cart. Called after a successful checkout.
func (s *Store) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, fmt.Sprintf(keyCart, userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Clear drops both the cart and the wishlist. Called on logout.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	keys := []string{
		fmt.Sprintf(keyCart, userID),
		fmt.Sprintf(keyWishlist, userID),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
