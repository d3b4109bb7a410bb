// Package repository persists per-session storefront state (cart, wishlist,
// most-viewed counters) in Redis. Each key holds a JSON array, mirroring the
// storefront client's storage format; there is no cross-session
// synchronization and no schema versioning.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
)

// SessionTTL is how long idle session state is retained.
const SessionTTL = 90 * 24 * time.Hour

// ErrItemNotFound is returned when a cart or wishlist entry does not exist.
var ErrItemNotFound = errors.New("item not found")

// SessionStore is the storefront session state interface. Handlers depend on
// this so tests can substitute a mock.
type SessionStore interface {
	GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, sessionID string, item models.CartItem) ([]models.CartItem, error)
	UpdateCartQuantity(ctx context.Context, sessionID, variationID string, quantity int) ([]models.CartItem, error)
	RemoveCartItem(ctx context.Context, sessionID, variationID string) ([]models.CartItem, error)
	ClearCart(ctx context.Context, sessionID string) error

	GetWishlist(ctx context.Context, sessionID string) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, sessionID string, item models.WishlistItem) ([]models.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, sessionID, variationID string) ([]models.WishlistItem, error)
	ClearWishlist(ctx context.Context, sessionID string) error

	RecordView(ctx context.Context, sessionID, productID string) (int64, error)
	TopViewed(ctx context.Context, sessionID string, limit int) ([]models.ViewCount, error)
}

// RedisSessionStore implements SessionStore on Redis.
type RedisSessionStore struct {
	redis  *redis.Client
	logger *logrus.Entry
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a session store backed by the given client.
func NewRedisSessionStore(client *redis.Client, logger *logrus.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		redis:  client,
		logger: logger.WithField("component", "session-store"),
	}
}

func cartKey(sessionID string) string     { return "cartItems:" + sessionID }
func wishlistKey(sessionID string) string { return "wishlistItems:" + sessionID }
func viewsKey(sessionID string) string    { return "mostViewed:" + sessionID }

// GetCart returns the session's cart. A missing key is an empty cart;
// unreadable stored JSON degrades to an empty cart rather than failing.
func (s *RedisSessionStore) GetCart(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.loadJSON(ctx, cartKey(sessionID), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// AddCartItem inserts the item, enforcing at most one entry per variation:
// adding an already-present variation bumps its quantity instead.
func (s *RedisSessionStore) AddCartItem(ctx context.Context, sessionID string, item models.CartItem) ([]models.CartItem, error) {
	items, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	merged := false
	for i := range items {
		if items[i].VariationID == item.VariationID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	if err := s.saveJSON(ctx, cartKey(sessionID), items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateCartQuantity sets the quantity of an existing entry, floored at 1.
func (s *RedisSessionStore) UpdateCartQuantity(ctx context.Context, sessionID, variationID string, quantity int) ([]models.CartItem, error) {
	items, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}

	found := false
	for i := range items {
		if items[i].VariationID == variationID {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := s.saveJSON(ctx, cartKey(sessionID), items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveCartItem deletes the entry for the variation.
func (s *RedisSessionStore) RemoveCartItem(ctx context.Context, sessionID, variationID string) ([]models.CartItem, error) {
	items, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := items[:0]
	found := false
	for _, item := range items {
		if item.VariationID == variationID {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := s.saveJSON(ctx, cartKey(sessionID), out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearCart drops the session's cart.
func (s *RedisSessionStore) ClearCart(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, cartKey(sessionID)).Err()
}

// GetWishlist returns the session's wishlist.
func (s *RedisSessionStore) GetWishlist(ctx context.Context, sessionID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := s.loadJSON(ctx, wishlistKey(sessionID), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	return items, nil
}

// AddWishlistItem inserts the item unless the variation is already present.
func (s *RedisSessionStore) AddWishlistItem(ctx context.Context, sessionID string, item models.WishlistItem) ([]models.WishlistItem, error) {
	items, err := s.GetWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, existing := range items {
		if existing.VariationID == item.VariationID {
			return items, nil
		}
	}
	items = append(items, item)

	if err := s.saveJSON(ctx, wishlistKey(sessionID), items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveWishlistItem deletes the entry for the variation.
func (s *RedisSessionStore) RemoveWishlistItem(ctx context.Context, sessionID, variationID string) ([]models.WishlistItem, error) {
	items, err := s.GetWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := items[:0]
	found := false
	for _, item := range items {
		if item.VariationID == variationID {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		return nil, ErrItemNotFound
	}

	if err := s.saveJSON(ctx, wishlistKey(sessionID), out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearWishlist drops the session's wishlist.
func (s *RedisSessionStore) ClearWishlist(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, wishlistKey(sessionID)).Err()
}

// RecordView increments the product's view counter and returns the new count.
func (s *RedisSessionStore) RecordView(ctx context.Context, sessionID, productID string) (int64, error) {
	key := viewsKey(sessionID)
	count, err := s.redis.HIncrBy(ctx, key, productID, 1).Result()
	if err != nil {
		return 0, err
	}
	_ = s.redis.Expire(ctx, key, SessionTTL).Err()
	return count, nil
}

// TopViewed returns the session's most viewed products, highest first.
func (s *RedisSessionStore) TopViewed(ctx context.Context, sessionID string, limit int) ([]models.ViewCount, error) {
	counts, err := s.redis.HGetAll(ctx, viewsKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]models.ViewCount, 0, len(counts))
	for productID, raw := range counts {
		views, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, models.ViewCount{ProductID: productID, Views: views})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].ProductID < out[j].ProductID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *RedisSessionStore) loadJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("discarding unreadable session state")
		_ = s.redis.Del(ctx, key).Err()
	}
	return nil
}

func (s *RedisSessionStore) saveJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, SessionTTL).Err()
}
