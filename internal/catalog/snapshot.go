// Package catalog owns the in-memory catalog snapshot the browse engine
// computes over. The snapshot is fetched once from the remote catalog API,
// normalized, and reused until its freshness window lapses; the engine never
// runs on partial data.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/clients"
	"storefront-service/internal/models"
)

// SnapshotTTL is the freshness window of a fetched catalog snapshot.
const SnapshotTTL = 5 * time.Minute

// ErrSnapshotUnavailable is returned when no snapshot could be obtained.
var ErrSnapshotUnavailable = errors.New("catalog snapshot unavailable")

// Fetcher retrieves the full catalog payload for a tenant.
type Fetcher interface {
	FetchCatalog(ctx context.Context, tenantID string) (*clients.CatalogPayload, error)
}

// Snapshot is one immutable catalog fetch. All browse computation runs
// synchronously over a snapshot; nothing mutates it after Normalize.
type Snapshot struct {
	Products   []models.Product
	Categories []*models.CategoryNode
	FetchedAt  time.Time
}

// Store caches catalog snapshots per tenant: an in-process copy first, a
// Redis copy of the serialized payload second, the remote API last. Redis is
// optional; without it the store degrades to in-process caching only.
type Store struct {
	fetcher Fetcher
	redis   *redis.Client
	logger  *logrus.Entry
	ttl     time.Duration

	mu        sync.Mutex
	snapshots map[string]*Snapshot
}

// NewStore creates a snapshot store. redisClient may be nil.
func NewStore(fetcher Fetcher, redisClient *redis.Client, logger *logrus.Logger) *Store {
	return &Store{
		fetcher:   fetcher,
		redis:     redisClient,
		logger:    logger.WithField("component", "catalog-store"),
		ttl:       SnapshotTTL,
		snapshots: make(map[string]*Snapshot),
	}
}

// Get returns a fresh snapshot for the tenant, fetching one if needed.
// Concurrent callers for the same tenant share a single fetch; the mutex is
// the "has fetched" guard preventing duplicate initial fetches.
func (s *Store) Get(ctx context.Context, tenantID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.snapshots[tenantID]; ok && time.Since(snap.FetchedAt) < s.ttl {
		return snap, nil
	}

	if snap := s.loadFromRedis(ctx, tenantID); snap != nil {
		s.snapshots[tenantID] = snap
		return snap, nil
	}

	payload, err := s.fetcher.FetchCatalog(ctx, tenantID)
	if err != nil {
		s.logger.WithError(err).WithField("tenantId", tenantID).Error("catalog fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}

	snap := Normalize(payload)
	s.snapshots[tenantID] = snap
	s.saveToRedis(ctx, tenantID, payload)

	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"products": len(snap.Products),
	}).Info("catalog snapshot refreshed")

	return snap, nil
}

// Invalidate drops any cached snapshot for the tenant.
func (s *Store) Invalidate(ctx context.Context, tenantID string) {
	s.mu.Lock()
	delete(s.snapshots, tenantID)
	s.mu.Unlock()

	if s.redis != nil {
		_ = s.redis.Del(ctx, snapshotKey(tenantID)).Err()
	}
}

// Normalize converts a raw catalog payload into an immutable snapshot.
// Variation attribute bags are parsed exactly once here and cached on the
// variation record, so facet extraction and constraint matching never
// re-parse JSON per request.
func Normalize(payload *clients.CatalogPayload) *Snapshot {
	snap := &Snapshot{
		Products:   payload.Products,
		Categories: payload.Categories,
		FetchedAt:  time.Now(),
	}
	for pi := range snap.Products {
		variations := snap.Products[pi].Variations
		for vi := range variations {
			variations[vi].Attributes = models.ParseFilterBag(variations[vi].RawFilters)
		}
	}
	return snap
}

func snapshotKey(tenantID string) string {
	return "storefront:catalog:" + tenantID
}

func (s *Store) loadFromRedis(ctx context.Context, tenantID string) *Snapshot {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, snapshotKey(tenantID)).Bytes()
	if err != nil {
		return nil
	}
	var payload clients.CatalogPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.WithError(err).Warn("discarding unreadable cached snapshot")
		_ = s.redis.Del(ctx, snapshotKey(tenantID)).Err()
		return nil
	}
	return Normalize(&payload)
}

func (s *Store) saveToRedis(ctx context.Context, tenantID string, payload *clients.CatalogPayload) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, snapshotKey(tenantID), data, s.ttl).Err(); err != nil {
		s.logger.WithError(err).Warn("failed to cache snapshot in redis")
	}
}
