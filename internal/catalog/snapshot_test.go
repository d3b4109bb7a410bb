package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
)

type stubFetcher struct {
	payload *clients.CatalogPayload
	err     error
	calls   int
}

func (f *stubFetcher) FetchCatalog(ctx context.Context, tenantID string) (*clients.CatalogPayload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func testPayload(t *testing.T) *clients.CatalogPayload {
	t.Helper()
	raw, err := json.Marshal([]models.FilterPair{
		{Key: "Material", Value: "Cast Iron"},
		{Key: "Material", Value: "Steel"},
	})
	require.NoError(t, err)

	return &clients.CatalogPayload{
		Products: []models.Product{
			{
				ID: "p1", Title: "Iron Gear Pump",
				Variations: []models.Variation{{ID: "v1", RawFilters: raw}},
			},
		},
		Categories: []*models.CategoryNode{{ID: "10", Name: "Hydraulics"}},
	}
}

func TestNormalizeParsesAttributeBagsOnce(t *testing.T) {
	snap := Normalize(testPayload(t))

	require.Len(t, snap.Products, 1)
	attrs := snap.Products[0].Variations[0].Attributes
	assert.Equal(t, map[string][]string{"Material": {"Cast Iron", "Steel"}}, attrs)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestNormalizeToleratesMalformedBags(t *testing.T) {
	payload := &clients.CatalogPayload{
		Products: []models.Product{
			{ID: "p1", Variations: []models.Variation{{ID: "v1", RawFilters: json.RawMessage(`{{not json`)}}},
		},
	}

	snap := Normalize(payload)

	assert.Empty(t, snap.Products[0].Variations[0].Attributes)
}

func TestStoreGetCachesWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload(t)}
	store := NewStore(fetcher, nil, logrus.New())

	first, err := store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)
	second, err := store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fetcher.calls)
}

func TestStoreGetIsolatesTenants(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload(t)}
	store := NewStore(fetcher, nil, logrus.New())

	_, err := store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "tenant-b")
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls)
}

func TestStoreGetFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	store := NewStore(fetcher, nil, logrus.New())

	snap, err := store.Get(context.Background(), "tenant-a")

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestStoreInvalidateForcesRefetch(t *testing.T) {
	fetcher := &stubFetcher{payload: testPayload(t)}
	store := NewStore(fetcher, nil, logrus.New())

	_, err := store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)

	store.Invalidate(context.Background(), "tenant-a")

	_, err = store.Get(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}
