package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/browse"
	"storefront-service/internal/catalog"
	"storefront-service/internal/events"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/search"
)

// BrowseHandler serves the product listing, category tree and facet
// endpoints. All computation runs synchronously over the tenant's catalog
// snapshot; the handler owns no state beyond its collaborators.
type BrowseHandler struct {
	snapshots       *catalog.Store
	eventsPublisher *events.Publisher
	logger          *logrus.Entry
	maxPageSize     int
}

// NewBrowseHandler creates a browse handler. eventsPublisher may be nil when
// NATS is not configured.
func NewBrowseHandler(snapshots *catalog.Store, eventsPublisher *events.Publisher, logger *logrus.Logger, maxPageSize int) *BrowseHandler {
	return &BrowseHandler{
		snapshots:       snapshots,
		eventsPublisher: eventsPublisher,
		logger:          logger.WithField("component", "browse-handler"),
		maxPageSize:     maxPageSize,
	}
}

// GetProducts returns one listing page for the request's query state.
// @Summary Browse products
// @Description Runs search, category, attribute, price and origin filters over the catalog snapshot and returns one product-grouped page.
// @Tags storefront
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param search query string false "Free-text query"
// @Param parent_category query string false "Parent category slug (name-id)"
// @Param sub_category query string false "Sub category slug (name-id)"
// @Param child_category query string false "Child category slug (name-id)"
// @Param min_price query number false "Minimum effective price"
// @Param max_price query number false "Maximum effective price"
// @Param exclude_usa query bool false "Exclude variations made in the USA"
// @Param page query int false "Page number (1-based)"
// @Success 200 {object} models.ListingResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /storefront/products [get]
func (h *BrowseHandler) GetProducts(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	qs := browse.ParseQueryState(c.Request.URL.Query())
	if h.maxPageSize > 0 && qs.PageSize > h.maxPageSize {
		qs.PageSize = h.maxPageSize
	}

	snap, err := h.snapshots.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.respondSnapshotError(c, err)
		return
	}

	_, active := browse.NormalizeTree(snap.Categories, qs)

	candidates := h.resolveCandidates(c, snap, qs)
	rows := browse.Apply(candidates, active, qs)
	facets := browse.ExtractFacets(browse.InScopeProducts(candidates, active), active.Selected())

	page := browse.Paginate(rows, qs.Page, qs.PageSize)
	totalPages := page.TotalPages(qs.PageSize)

	c.JSON(http.StatusOK, models.ListingResponse{
		Success:      true,
		Rows:         page.Rows,
		Facets:       facets,
		AppliedQuery: qs.Encode().Encode(),
		Pagination: models.PaginationInfo{
			Page:          qs.Page,
			PageSize:      qs.PageSize,
			TotalProducts: page.TotalProducts,
			TotalOptions:  page.TotalOptions,
			TotalPages:    totalPages,
			HasNext:       qs.Page < totalPages,
			HasPrevious:   qs.Page > 1,
		},
	})
}

// resolveCandidates runs the search scorer for non-empty queries, otherwise
// passes the full snapshot through unmodified.
func (h *BrowseHandler) resolveCandidates(c *gin.Context, snap *catalog.Snapshot, qs browse.QueryState) []browse.Candidate {
	if qs.Search == "" {
		return browse.NewCandidates(snap.Products)
	}

	results := search.Search(snap.Products, qs.Search)

	padded := 0
	candidates := make([]browse.Candidate, 0, len(results))
	for _, r := range results {
		if r.LowConfidence {
			padded++
		}
		cand := browse.Candidate{
			Product:       r.Product,
			Score:         r.Score,
			LowConfidence: r.LowConfidence,
		}
		if r.Best != nil {
			cand.Variations = []*models.Variation{r.Best}
		} else {
			for vi := range r.Product.Variations {
				cand.Variations = append(cand.Variations, &r.Product.Variations[vi])
			}
		}
		candidates = append(candidates, cand)
	}

	if h.eventsPublisher != nil {
		h.eventsPublisher.PublishSearch(
			middleware.GetTenantID(c),
			middleware.GetSessionID(c),
			qs.Search,
			len(results),
			padded,
		)
	}

	return candidates
}

// GetCategories returns the category tree annotated for the request's
// query state.
// @Summary Category tree
// @Tags storefront
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Success 200 {object} models.CategoryTreeResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /storefront/categories [get]
func (h *BrowseHandler) GetCategories(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	qs := browse.ParseQueryState(c.Request.URL.Query())

	snap, err := h.snapshots.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.respondSnapshotError(c, err)
		return
	}

	tree, _ := browse.NormalizeTree(snap.Categories, qs)
	c.JSON(http.StatusOK, models.CategoryTreeResponse{
		Success:    true,
		Categories: tree,
	})
}

// GetFacets returns the dynamic attribute facets for the current category
// scope. With no category selected the facet list is empty.
// @Summary Facets for current scope
// @Tags storefront
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Success 200 {object} models.FacetsResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /storefront/facets [get]
func (h *BrowseHandler) GetFacets(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	qs := browse.ParseQueryState(c.Request.URL.Query())

	snap, err := h.snapshots.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.respondSnapshotError(c, err)
		return
	}

	_, active := browse.NormalizeTree(snap.Categories, qs)
	candidates := browse.NewCandidates(snap.Products)
	facets := browse.ExtractFacets(browse.InScopeProducts(candidates, active), active.Selected())

	c.JSON(http.StatusOK, models.FacetsResponse{
		Success: true,
		Facets:  facets,
	})
}

func (h *BrowseHandler) respondSnapshotError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrSnapshotUnavailable) {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CATALOG_UNAVAILABLE",
				Message: "The catalog is temporarily unavailable. Please retry.",
			},
		})
		return
	}
	h.logger.WithError(err).Error("unexpected snapshot error")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "INTERNAL_ERROR",
			Message: "Failed to load the catalog.",
		},
	})
}
