package models

// Error describes a single API error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse is the error envelope returned by all handlers.
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

// SuccessResponse is the generic success envelope.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// PaginationInfo describes the product-level pagination of a listing page.
// Pagination counts distinct products, not rows: a page with nine products
// may carry more than nine rows when products have several variations.
type PaginationInfo struct {
	Page          int  `json:"page"`
	PageSize      int  `json:"pageSize"`
	TotalProducts int  `json:"totalProducts"`
	TotalOptions  int  `json:"totalOptions"`
	TotalPages    int  `json:"totalPages"`
	HasNext       bool `json:"hasNext"`
	HasPrevious   bool `json:"hasPrevious"`
}

// ListingResponse is the full product-listing payload: the rows on the
// requested page plus the facets available for the current category scope.
// AppliedQuery is the canonical encoding of the state that produced the
// page, suitable for sharing and for building filter-toggle links.
type ListingResponse struct {
	Success      bool           `json:"success"`
	Rows         []DisplayRow   `json:"rows"`
	Facets       []FacetGroup   `json:"facets"`
	AppliedQuery string         `json:"appliedQuery"`
	Pagination   PaginationInfo `json:"pagination"`
}

// CategoryTreeResponse carries the annotated category tree.
type CategoryTreeResponse struct {
	Success    bool            `json:"success"`
	Categories []*CategoryNode `json:"categories"`
}

// FacetsResponse carries the facet groups for the current scope.
type FacetsResponse struct {
	Success bool         `json:"success"`
	Facets  []FacetGroup `json:"facets"`
}
