package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/catalog"
	"storefront-service/internal/clients"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
)

type stubCatalogFetcher struct {
	payload *clients.CatalogPayload
	err     error
}

func (f *stubCatalogFetcher) FetchCatalog(ctx context.Context, tenantID string) (*clients.CatalogPayload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func browsePayload() *clients.CatalogPayload {
	ironFilters, _ := json.Marshal([]models.FilterPair{{Key: "Material", Value: "Cast Iron"}})
	aluFilters, _ := json.Marshal([]models.FilterPair{{Key: "Material", Value: "Aluminum"}})
	brassFilters, _ := json.Marshal([]models.FilterPair{{Key: "Material", Value: "Brass"}})

	gearPumps := models.CategoryRef{
		ParentID: "10", ParentName: "Hydraulics",
		SubID: "11", SubName: "Pumps",
		ChildID: "12", ChildName: "Gear Pumps",
	}
	ballValves := models.CategoryRef{
		ParentID: "10", ParentName: "Hydraulics",
		SubID: "14", SubName: "Valves",
		ChildID: "15", ChildName: "Ball Valves",
	}
	chainDrive := models.CategoryRef{
		ParentID: "20", ParentName: "Automation",
		SubID: "21", SubName: "Openers",
		ChildID: "22", ChildName: "Chain Drive",
	}

	return &clients.CatalogPayload{
		Products: []models.Product{
			{
				ID: "p1", Title: "Iron Gear Pump", Category: gearPumps,
				Variations: []models.Variation{
					{ID: "v1", SKUCode: "SKU-v1", RegularPrice: 100, OfferPrice: 80, MadeIn: "USA", RawFilters: ironFilters},
					{ID: "v2", SKUCode: "SKU-v2", RegularPrice: 120, MadeIn: "Germany", RawFilters: aluFilters},
				},
			},
			{
				ID: "p2", Title: "Brass Ball Valve", Category: ballValves,
				Variations: []models.Variation{
					{ID: "v3", SKUCode: "SKU-v3", RegularPrice: 40, OfferPrice: 35, MadeIn: "Taiwan", RawFilters: brassFilters},
				},
			},
			{
				ID: "p3", Title: "Chain Drive Opener", Category: chainDrive,
				Variations: []models.Variation{
					{ID: "v4", SKUCode: "SKU-v4", RegularPrice: 300, MadeIn: "Mexico"},
				},
			},
		},
		Categories: []*models.CategoryNode{
			{
				ID: "10", Name: "Hydraulics",
				Children: []*models.CategoryNode{
					{ID: "11", Name: "Pumps", Children: []*models.CategoryNode{
						{ID: "12", Name: "Gear Pumps"},
						{ID: "13", Name: "Piston Pumps"},
					}},
					{ID: "14", Name: "Valves", Children: []*models.CategoryNode{
						{ID: "15", Name: "Ball Valves"},
					}},
				},
			},
			{
				ID: "20", Name: "Automation",
				Children: []*models.CategoryNode{
					{ID: "21", Name: "Openers", Children: []*models.CategoryNode{
						{ID: "22", Name: "Chain Drive"},
					}},
				},
			},
		},
	}
}

func setupBrowseRouter(fetcher catalog.Fetcher, maxPageSize int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	store := catalog.NewStore(fetcher, nil, logger)
	h := NewBrowseHandler(store, nil, logger, maxPageSize)

	router := gin.New()
	group := router.Group("/api/v1/storefront")
	group.Use(middleware.TenantMiddleware())
	group.Use(middleware.SessionMiddleware())
	{
		group.GET("/products", h.GetProducts)
		group.GET("/categories", h.GetCategories)
		group.GET("/facets", h.GetFacets)
	}
	return router
}

func doBrowse(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Tenant-ID", "tenant-a")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetProductsRequiresTenant(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProductsUnfilteredListing(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	w := doBrowse(router, "/api/v1/storefront/products")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Rows, 4)
	assert.Equal(t, 3, resp.Pagination.TotalProducts)
	assert.Equal(t, 4, resp.Pagination.TotalOptions)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNext)
	// No category selected: facets stay suppressed.
	assert.Empty(t, resp.Facets)
}

func TestGetProductsCategoryScopeEnablesFacets(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	w := doBrowse(router, "/api/v1/storefront/products?parent_category=hydraulics-10")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Pagination.TotalProducts)
	assert.Equal(t, "parent_category=hydraulics-10", resp.AppliedQuery)
	require.Len(t, resp.Facets, 1)
	assert.Equal(t, "Material", resp.Facets[0].Key)
	assert.Equal(t, []string{"Aluminum", "Brass", "Cast Iron"}, resp.Facets[0].Options)
	for _, row := range resp.Rows {
		assert.NotEqual(t, "p3", row.Product.ID)
	}
}

func TestGetProductsAppliesFiltersAndPrice(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	w := doBrowse(router, "/api/v1/storefront/products?parent_category=hydraulics-10&filter_material=Cast%20Iron|Brass&max_price=50")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "v3", resp.Rows[0].Variation.ID)
}

func TestGetProductsSearch(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	w := doBrowse(router, "/api/v1/storefront/products?search=brass+ball+valve")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Rows)
	assert.Equal(t, "p2", resp.Rows[0].Product.ID)
}

func TestGetProductsClampsPageSize(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 2)

	w := doBrowse(router, "/api/v1/storefront/products?page_size=50")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Pagination.PageSize)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
}

func TestGetProductsCatalogUnavailable(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{err: errors.New("upstream down")}, 100)

	w := doBrowse(router, "/api/v1/storefront/products")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CATALOG_UNAVAILABLE", resp.Error.Code)
}

func TestGetCategoriesAnnotatesTree(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	w := doBrowse(router, "/api/v1/storefront/categories?sub_category=valves-14")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.CategoryTreeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Categories, 2)
	hydraulics := resp.Categories[0]
	assert.Equal(t, "hydraulics-10", hydraulics.Slug)
	assert.True(t, hydraulics.Toggle)
	assert.True(t, hydraulics.Children[1].Toggle)
	assert.False(t, hydraulics.Children[0].Toggle)
}

func TestGetFacetsWithoutCategoryIsEmpty(t *testing.T) {
	router := setupBrowseRouter(&stubCatalogFetcher{payload: browsePayload()}, 100)

	w := doBrowse(router, "/api/v1/storefront/facets")

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.FacetsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Facets)
}
