package browse

import (
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"storefront-service/internal/models"
)

// ExtractFacets derives the dynamic attribute filters available for the
// products in scope. The scope is the category-filtered, pre-attribute-filter
// product set.
//
// Facets are deliberately suppressed at the "all products" scope: with no
// category selected the result is always empty, since merging attribute keys
// across unrelated product families produces a combinatorial facet explosion.
//
// Variations with absent or malformed attribute bags simply contribute
// nothing. Groups are ordered by key and options by value, both
// case-insensitively.
func ExtractFacets(products []*models.Product, categorySelected bool) []models.FacetGroup {
	if !categorySelected {
		return []models.FacetGroup{}
	}

	observed := map[string]map[string]bool{}
	for _, product := range products {
		for vi := range product.Variations {
			for key, values := range product.Variations[vi].Attributes {
				if observed[key] == nil {
					observed[key] = map[string]bool{}
				}
				for _, value := range values {
					observed[key][value] = true
				}
			}
		}
	}

	groups := make([]models.FacetGroup, 0, len(observed))
	for key, valueSet := range observed {
		options := make([]string, 0, len(valueSet))
		for value := range valueSet {
			options = append(options, value)
		}
		sort.Slice(options, func(i, j int) bool {
			return caseInsensitiveLess(options[i], options[j])
		})
		groups = append(groups, models.FacetGroup{
			Key:     key,
			Slug:    facetKeySlug(key),
			Options: options,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return caseInsensitiveLess(groups[i].Key, groups[j].Key)
	})
	return groups
}

// facetKeySlug is the URL-safe form of a facet key, shared by facet
// extraction and the filter_<key> query parameters.
func facetKeySlug(key string) string {
	return slug.Make(key)
}

func caseInsensitiveLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
