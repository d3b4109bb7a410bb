package browse

import (
	"strings"

	"storefront-service/internal/models"
)

// Candidate is one product entering the constraint pipeline, carrying the
// variations still in play for it. Search produces candidates holding only
// the best-scoring variation; plain browsing produces candidates holding
// every variation.
type Candidate struct {
	Product       *models.Product
	Variations    []*models.Variation
	Score         float64
	LowConfidence bool
}

// NewCandidates wraps snapshot products unmodified, with all variations.
func NewCandidates(products []models.Product) []Candidate {
	out := make([]Candidate, 0, len(products))
	for i := range products {
		p := &products[i]
		c := Candidate{Product: p}
		for vi := range p.Variations {
			c.Variations = append(c.Variations, &p.Variations[vi])
		}
		out = append(out, c)
	}
	return out
}

// Apply runs the constraint stages in their fixed order: category
// membership, dynamic attribute selection, then price range and origin
// exclusion. Each stage consumes the previous stage's output; a stage with
// no active constraint passes everything through. The result is a flat list
// of display rows at variation granularity, preserving the input's product
// order. Pure filtering: no side effects, idempotent for identical inputs.
//
// Out-of-stock variations are never excluded here; stock is display state.
func Apply(candidates []Candidate, active ActiveCategory, qs QueryState) []models.DisplayRow {
	candidates = filterByCategory(candidates, active)
	rows := flatten(candidates)
	rows = filterByAttributes(rows, qs)
	rows = filterByPriceAndOrigin(rows, qs)
	return rows
}

// InScopeProducts returns the category-filtered products, the scope facet
// extraction runs over.
func InScopeProducts(candidates []Candidate, active ActiveCategory) []*models.Product {
	filtered := filterByCategory(candidates, active)
	out := make([]*models.Product, 0, len(filtered))
	for _, c := range filtered {
		out = append(out, c.Product)
	}
	return out
}

// filterByCategory requires the product's denormalized category chain to
// match the toggled path at every toggled level. A product lacking the
// required nesting is excluded entirely.
func filterByCategory(candidates []Candidate, active ActiveCategory) []Candidate {
	if !active.Selected() {
		return candidates
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		ref := c.Product.Category
		if s := active.ParentSlug(); s != "" && CategorySlug(ref.ParentName, ref.ParentID) != s {
			continue
		}
		if s := active.SubSlug(); s != "" && CategorySlug(ref.SubName, ref.SubID) != s {
			continue
		}
		if s := active.ChildSlug(); s != "" && CategorySlug(ref.ChildName, ref.ChildID) != s {
			continue
		}
		out = append(out, c)
	}
	return out
}

// flatten expands candidates into variation-level rows. A product with no
// surviving variations contributes one synthetic row so it stays visible in
// unfiltered listings.
func flatten(candidates []Candidate) []models.DisplayRow {
	var rows []models.DisplayRow
	for _, c := range candidates {
		if len(c.Variations) == 0 {
			rows = append(rows, models.DisplayRow{
				Product:       c.Product,
				Score:         c.Score,
				LowConfidence: c.LowConfidence,
			})
			continue
		}
		for _, v := range c.Variations {
			rows = append(rows, models.DisplayRow{
				Product:       c.Product,
				Variation:     v,
				Score:         c.Score,
				LowConfidence: c.LowConfidence,
			})
		}
	}
	return rows
}

// filterByAttributes keeps rows whose variation satisfies every selected
// facet group: within a group any selected value may match (OR), across
// groups all must (AND). Facet keys are matched by slug. When any dynamic
// filter is active, a row without parsed attribute data is excluded
// outright; absence of data is not a match.
func filterByAttributes(rows []models.DisplayRow, qs QueryState) []models.DisplayRow {
	if !qs.HasFilters() {
		return rows
	}

	out := make([]models.DisplayRow, 0, len(rows))
	for _, row := range rows {
		if row.Variation == nil || len(row.Variation.Attributes) == 0 {
			continue
		}
		if matchesAllGroups(row.Variation.Attributes, qs) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAllGroups(attrs map[string][]string, qs QueryState) bool {
	for facetSlug := range qs.Filters {
		if !matchesGroup(attrs, facetSlug, qs) {
			return false
		}
	}
	return true
}

func matchesGroup(attrs map[string][]string, facetSlug string, qs QueryState) bool {
	for key, values := range attrs {
		if facetKeySlug(key) != facetSlug {
			continue
		}
		for _, value := range values {
			if qs.Selected(facetSlug, value) {
				return true
			}
		}
	}
	return false
}

// filterByPriceAndOrigin applies the price range (inclusive on both bounds,
// against the effective price) and the made-in-USA exclusion. The two
// constraints compose: both are enforced when both are set.
//
// Rows without a variation have no price or origin data and are excluded
// whenever either constraint is active.
func filterByPriceAndOrigin(rows []models.DisplayRow, qs QueryState) []models.DisplayRow {
	priceActive := qs.MinPrice != nil || qs.MaxPrice != nil
	if !priceActive && !qs.ExcludeUSA {
		return rows
	}

	out := make([]models.DisplayRow, 0, len(rows))
	for _, row := range rows {
		if row.Variation == nil {
			continue
		}
		if priceActive {
			price := row.Variation.EffectivePrice()
			if qs.MinPrice != nil && price < *qs.MinPrice {
				continue
			}
			if qs.MaxPrice != nil && price > *qs.MaxPrice {
				continue
			}
		}
		if qs.ExcludeUSA && strings.Contains(strings.ToLower(row.Variation.MadeIn), "usa") {
			continue
		}
		out = append(out, row)
	}
	return out
}
