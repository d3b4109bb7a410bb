// Package browse implements the product listing engine: category tree
// normalization, facet derivation, the constraint pipeline, and
// product-grouped pagination. Everything here is a pure function of the
// catalog snapshot and the request's query state.
package browse

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of distinct products per listing page.
const DefaultPageSize = 9

// filterParamPrefix marks dynamic attribute selections in the query string,
// e.g. filter_drive-type=chain%20drive|belt%20drive.
const filterParamPrefix = "filter_"

// QueryState is the decoded browse state of a request. The URL query string
// is the source of truth for every filter dimension; this value object is the
// single place it is encoded and decoded. An absent parameter means
// "unconstrained" for that dimension.
type QueryState struct {
	ParentSlug string
	SubSlug    string
	ChildSlug  string

	Search string

	// Filters maps a slugified facet key to the selected values for that
	// facet. Values are OR'd within a key and AND'd across keys.
	Filters map[string][]string

	MinPrice   *float64
	MaxPrice   *float64
	ExcludeUSA bool

	Page     int
	PageSize int
}

// ParseQueryState decodes a request query string into a QueryState.
// Unparseable numeric parameters are dropped rather than failing the request.
func ParseQueryState(values url.Values) QueryState {
	qs := QueryState{
		ParentSlug: values.Get("parent_category"),
		SubSlug:    values.Get("sub_category"),
		ChildSlug:  values.Get("child_category"),
		Search:     strings.TrimSpace(values.Get("search")),
		Filters:    map[string][]string{},
		Page:       1,
		PageSize:   DefaultPageSize,
	}

	if v := values.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			qs.MinPrice = &f
		}
	}
	if v := values.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			qs.MaxPrice = &f
		}
	}
	if v := values.Get("exclude_usa"); v != "" {
		qs.ExcludeUSA, _ = strconv.ParseBool(v)
	}
	if v := values.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			qs.Page = n
		}
	}
	if v := values.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			qs.PageSize = n
		}
	}

	for name := range values {
		if !strings.HasPrefix(name, filterParamPrefix) {
			continue
		}
		key := strings.TrimPrefix(name, filterParamPrefix)
		if key == "" {
			continue
		}
		selected := decodeFilterValues(values.Get(name))
		if len(selected) > 0 {
			qs.Filters[key] = selected
		}
	}

	return qs
}

// Encode renders the state back into query parameters. Encode and
// ParseQueryState round-trip: defaults and empty dimensions are omitted.
func (qs QueryState) Encode() url.Values {
	values := url.Values{}
	setIfNonEmpty(values, "parent_category", qs.ParentSlug)
	setIfNonEmpty(values, "sub_category", qs.SubSlug)
	setIfNonEmpty(values, "child_category", qs.ChildSlug)
	setIfNonEmpty(values, "search", qs.Search)

	if qs.MinPrice != nil {
		values.Set("min_price", strconv.FormatFloat(*qs.MinPrice, 'f', -1, 64))
	}
	if qs.MaxPrice != nil {
		values.Set("max_price", strconv.FormatFloat(*qs.MaxPrice, 'f', -1, 64))
	}
	if qs.ExcludeUSA {
		values.Set("exclude_usa", "true")
	}
	if qs.Page > 1 {
		values.Set("page", strconv.Itoa(qs.Page))
	}
	if qs.PageSize > 0 && qs.PageSize != DefaultPageSize {
		values.Set("page_size", strconv.Itoa(qs.PageSize))
	}

	keys := make([]string, 0, len(qs.Filters))
	for key := range qs.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if encoded := encodeFilterValues(qs.Filters[key]); encoded != "" {
			values.Set(filterParamPrefix+key, encoded)
		}
	}

	return values
}

// HasCategory reports whether any category level is selected.
func (qs QueryState) HasCategory() bool {
	return qs.ParentSlug != "" || qs.SubSlug != "" || qs.ChildSlug != ""
}

// HasFilters reports whether any dynamic attribute filter is active.
func (qs QueryState) HasFilters() bool {
	return len(qs.Filters) > 0
}

// Selected reports whether the given value is selected under the facet slug.
func (qs QueryState) Selected(facetSlug, value string) bool {
	for _, v := range qs.Filters[facetSlug] {
		if v == value {
			return true
		}
	}
	return false
}

// decodeFilterValues splits a pipe-delimited, percent-encoded value list.
// Each value is escaped individually so literal pipes inside a value survive
// the round trip.
func decodeFilterValues(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, part := range parts {
		value, err := url.QueryUnescape(part)
		if err != nil {
			value = part
		}
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out
}

func encodeFilterValues(values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		escaped = append(escaped, url.QueryEscape(v))
	}
	return strings.Join(escaped, "|")
}

func setIfNonEmpty(values url.Values, name, value string) {
	if value != "" {
		values.Set(name, value)
	}
}
