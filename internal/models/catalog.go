package models

import (
	"encoding/json"
	"strings"
)

// Feature is a display attribute attached to a variation (e.g. "Material" -> "Steel").
type Feature struct {
	FeatureName  string `json:"featureName"`
	FeatureValue string `json:"featureValue"`
}

// FilterPair is one entry of a variation's raw attribute bag.
type FilterPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Variation is a sellable option of a product. A variation always belongs to
// exactly one product.
type Variation struct {
	ID             string    `json:"id"`
	VariationName  string    `json:"variationName"`
	VariationValue string    `json:"variationValue"`
	SKUCode        string    `json:"skuCode"`
	Stock          int       `json:"stock"`
	RegularPrice   float64   `json:"regularPrice"`
	OfferPrice     float64   `json:"offerPrice"`
	MadeIn         string    `json:"madeIn"`
	Image          string    `json:"image"`
	Features       []Feature `json:"features,omitempty"`

	// RawFilters is the attribute bag exactly as the catalog API returns it:
	// either a JSON array of {key,value} pairs or a JSON string containing one.
	RawFilters json.RawMessage `json:"filters,omitempty"`

	// Attributes is the validated form of RawFilters, built once at snapshot
	// load time. Blank keys and values are discarded; a malformed bag yields
	// an empty map, never an error.
	Attributes map[string][]string `json:"-"`
}

// EffectivePrice is the price used for display and range filtering.
// A positive offer price takes precedence over the regular price.
func (v *Variation) EffectivePrice() float64 {
	if v.OfferPrice > 0 {
		return v.OfferPrice
	}
	return v.RegularPrice
}

// CategoryRef is the category chain denormalized onto a product at fetch time.
type CategoryRef struct {
	ParentID   string `json:"parentId"`
	ParentName string `json:"parentName"`
	SubID      string `json:"subId"`
	SubName    string `json:"subName"`
	ChildID    string `json:"childId"`
	ChildName  string `json:"childName"`
}

// Product is a catalog product with 0..N variations. Immutable per fetch.
type Product struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Info       string      `json:"info,omitempty"`
	Details    string      `json:"details,omitempty"`
	Category   CategoryRef `json:"category"`
	Variations []Variation `json:"variations,omitempty"`
}

// CategoryNode is one node of the three-level category tree
// (parent -> sub -> child). Slug and Toggle are derived, not stored:
// they are recomputed from the current query state on every request.
type CategoryNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug,omitempty"`
	Toggle   bool            `json:"toggle"`
	Stock    int             `json:"stock,omitempty"`
	Children []*CategoryNode `json:"children,omitempty"`
}

// Clone returns a deep copy of the node. The normalizer annotates copies so
// the shared snapshot tree is never mutated in place.
func (n *CategoryNode) Clone() *CategoryNode {
	if n == nil {
		return nil
	}
	out := &CategoryNode{
		ID:    n.ID,
		Name:  n.Name,
		Slug:  n.Slug,
		Stock: n.Stock,
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return out
}

// FacetGroup is one dynamic attribute filter derived from the variations in
// scope: the key and the sorted set of distinct values observed for it.
// Ephemeral; recomputed whenever the product scope changes.
type FacetGroup struct {
	Key     string   `json:"key"`
	Slug    string   `json:"slug"`
	Options []string `json:"options"`
}

// DisplayRow is one listing row at variation granularity. A product with no
// variations yields a single synthetic row with Variation == nil.
type DisplayRow struct {
	Product       *Product   `json:"product"`
	Variation     *Variation `json:"variation,omitempty"`
	Score         float64    `json:"score,omitempty"`
	LowConfidence bool       `json:"lowConfidence,omitempty"`
}

// ProductID returns the grouping key used by pagination.
func (r DisplayRow) ProductID() string {
	return r.Product.ID
}

// ParseFilterBag converts a raw attribute bag into a key -> values map.
// The bag is tolerated in either of the two shapes the catalog API emits:
// a JSON array of pairs, or a JSON string wrapping such an array. Malformed
// input degrades to an empty map; it never fails the caller.
func ParseFilterBag(raw json.RawMessage) map[string][]string {
	out := map[string][]string{}
	if len(raw) == 0 {
		return out
	}

	data := []byte(raw)
	// Unwrap a JSON-encoded string payload first.
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		data = []byte(asString)
	}

	var pairs []FilterPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return out
	}

	for _, p := range pairs {
		key := strings.TrimSpace(p.Key)
		value := strings.TrimSpace(p.Value)
		if key == "" || value == "" {
			continue
		}
		if !containsString(out[key], value) {
			out[key] = append(out[key], value)
		}
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
