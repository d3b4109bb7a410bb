package browse

import "storefront-service/internal/models"

// Page is one listing page re-grouped under product identity.
type Page struct {
	Rows          []models.DisplayRow
	TotalProducts int
	TotalOptions  int
}

// Paginate windows the filtered rows by distinct product identity.
//
// The distinct product ids are collected in first-seen order (the upstream
// sort order), the id list is paginated, and every row whose product falls
// in the current window is kept. A page therefore renders more rows than
// the page size when its products carry multiple surviving variations.
// TotalOptions counts all rows; TotalProducts counts distinct products.
//
// Pages are 1-based. An out-of-range page yields an empty row set; callers
// are expected to clamp.
func Paginate(rows []models.DisplayRow, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	ids := make([]string, 0, len(rows))
	seen := map[string]bool{}
	for _, row := range rows {
		id := row.ProductID()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	window := map[string]bool{}
	if start < len(ids) {
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			window[id] = true
		}
	}

	out := Page{
		Rows:          []models.DisplayRow{},
		TotalProducts: len(ids),
		TotalOptions:  len(rows),
	}
	for _, row := range rows {
		if window[row.ProductID()] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// TotalPages returns the number of pages for the given page size.
func (p Page) TotalPages(pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return (p.TotalProducts + pageSize - 1) / pageSize
}
