// Package search scores free-text queries against the catalog snapshot.
// Scoring is weighted-field token matching with typo tolerance; category
// browsing gets priority over fuzzy relevance via an exact-category
// short-circuit, and sparse result sets are padded with explicitly tagged
// low-confidence category matches.
package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"storefront-service/internal/models"
)

const (
	// ScoreThreshold is the minimum score a pair must reach to appear in
	// confident results.
	ScoreThreshold = 0.1

	// fuzzyMinSimilarity gates the edit-distance path: only near misses
	// (typo territory) contribute.
	fuzzyMinSimilarity = 0.7

	// paddingMinSimilarity is the looser gate for recall padding, so a
	// borderline typo still surfaces its category neighborhood.
	paddingMinSimilarity = 0.5

	// ResultFloor triggers the recall-padding fallback when confident
	// results are sparser than this.
	ResultFloor = 10

	prefixFactor    = 0.8
	substringFactor = 0.6
	fuzzyFactor     = 0.5
	phraseBonus     = 1.5
	coverageBonus   = 0.5
)

// Result is one ranked product. Best is the product's highest-scoring
// variation; nil means the whole product matched (category short-circuit,
// zero-variation products, or padding). LowConfidence marks recall-padding
// entries appended without scoring.
type Result struct {
	Product       *models.Product
	Best          *models.Variation
	Score         float64
	MatchedTokens int
	LowConfidence bool
}

// scoredField is one candidate text with its weight and exact-match bonus.
type scoredField struct {
	text      string
	weight    float64
	bonus     float64
	important bool
}

// Search ranks products against the query. The caller handles the
// empty-query pass-through; a query that tokenizes to nothing returns an
// empty result. Missing fields contribute zero; an empty catalog yields an
// empty result, never an error.
func Search(products []models.Product, query string) []Result {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []Result{}
	}
	fullQuery := strings.ToLower(strings.TrimSpace(query))

	if exact := exactCategoryMatches(products, fullQuery); len(exact) > 0 {
		return exact
	}

	results := make([]Result, 0, len(products))
	for i := range products {
		if r, ok := scoreProduct(&products[i], tokens, fullQuery); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].MatchedTokens > results[j].MatchedTokens
	})

	if len(results) < ResultFloor {
		results = padWithCategoryMatches(results, products, tokens)
	}
	return results
}

// exactCategoryMatches implements the category short-circuit: when the full
// untokenized query equals a category name at any level, category browsing
// wins and scoring is skipped entirely.
func exactCategoryMatches(products []models.Product, fullQuery string) []Result {
	var out []Result
	for i := range products {
		ref := products[i].Category
		if strings.ToLower(ref.ChildName) == fullQuery ||
			strings.ToLower(ref.SubName) == fullQuery ||
			strings.ToLower(ref.ParentName) == fullQuery {
			out = append(out, Result{Product: &products[i]})
		}
	}
	return out
}

// scoreProduct scores every variation of the product independently and
// retains the single best one.
func scoreProduct(product *models.Product, tokens []string, fullQuery string) (Result, bool) {
	best := Result{Product: product}

	if len(product.Variations) == 0 {
		score, matched := scoreFields(productFields(product), tokens, fullQuery)
		if score <= ScoreThreshold {
			return Result{}, false
		}
		return Result{Product: product, Score: score, MatchedTokens: matched}, true
	}

	for vi := range product.Variations {
		v := &product.Variations[vi]
		fields := append(productFields(product), variationFields(v)...)
		score, matched := scoreFields(fields, tokens, fullQuery)
		if score > best.Score {
			best.Score = score
			best.Best = v
			best.MatchedTokens = matched
		}
	}

	if best.Score <= ScoreThreshold {
		return Result{}, false
	}
	return best, true
}

func productFields(p *models.Product) []scoredField {
	return []scoredField{
		{text: p.Title, weight: 3.0, bonus: 2.0, important: true},
		{text: p.Category.ChildName, weight: 2.0, bonus: 1.5, important: true},
		{text: p.Category.SubName, weight: 1.5, bonus: 1.0, important: true},
		{text: p.Category.ParentName, weight: 1.2, bonus: 1.0, important: true},
		{text: p.Info, weight: 0.5, bonus: 0.25},
		{text: p.Details, weight: 0.5, bonus: 0.25},
	}
}

func variationFields(v *models.Variation) []scoredField {
	fields := []scoredField{
		{text: v.SKUCode, weight: 3.0, bonus: 2.0, important: true},
		{text: v.VariationName, weight: 2.0, bonus: 1.5, important: true},
		{text: v.VariationValue, weight: 1.5, bonus: 1.0},
	}
	for _, f := range v.Features {
		fields = append(fields,
			scoredField{text: f.FeatureName, weight: 1.0, bonus: 0.5},
			scoredField{text: f.FeatureValue, weight: 1.0, bonus: 0.5},
		)
	}
	return fields
}

// scoreFields sums per-token contributions across all fields, applies the
// token-coverage multiplier, then the phrase bonus for multi-token queries
// whose joined form appears in an important field.
func scoreFields(fields []scoredField, tokens []string, fullQuery string) (float64, int) {
	var total float64
	matched := 0

	for _, token := range tokens {
		var tokenScore float64
		for _, field := range fields {
			tokenScore += scoreToken(token, field)
		}
		if tokenScore > 0 {
			matched++
		}
		total += tokenScore
	}

	if total == 0 {
		return 0, 0
	}

	coverage := float64(matched) / float64(len(tokens))
	total *= 1 + coverage*coverageBonus

	if len(tokens) > 1 {
		for _, field := range fields {
			if field.important && strings.Contains(strings.ToLower(field.text), fullQuery) {
				total *= phraseBonus
				break
			}
		}
	}

	return total, matched
}

// scoreToken matches one token against one field: exact beats prefix beats
// substring beats fuzzy. The fuzzy path compares the token against each word
// of the field and contributes only above the similarity gate.
func scoreToken(token string, field scoredField) float64 {
	text := strings.ToLower(strings.TrimSpace(field.text))
	if text == "" {
		return 0
	}

	switch {
	case text == token:
		return field.weight + field.bonus
	case strings.HasPrefix(text, token):
		return field.weight * prefixFactor
	case strings.Contains(text, token):
		return field.weight * substringFactor
	}

	if sim := bestWordSimilarity(token, text); sim > fuzzyMinSimilarity {
		return field.weight * sim * fuzzyFactor
	}
	return 0
}

// bestWordSimilarity returns the highest normalized edit-distance similarity
// between the token and any word of the field text.
func bestWordSimilarity(token, text string) float64 {
	var best float64
	for _, word := range strings.Fields(text) {
		maxLen := len(token)
		if len(word) > maxLen {
			maxLen = len(word)
		}
		if maxLen == 0 {
			continue
		}
		distance := levenshtein.ComputeDistance(token, word)
		if sim := 1 - float64(distance)/float64(maxLen); sim > best {
			best = sim
		}
	}
	return best
}

// padWithCategoryMatches appends not-yet-included products whose category
// names contain any query token, or sit within the looser padding
// similarity of one. These entries are not scored or ranked; they exist to
// keep sparse result sets usable and are tagged so callers can distinguish
// them from confident matches.
func padWithCategoryMatches(results []Result, products []models.Product, tokens []string) []Result {
	included := map[string]bool{}
	for _, r := range results {
		included[r.Product.ID] = true
	}

	for i := range products {
		p := &products[i]
		if included[p.ID] {
			continue
		}
		if categoryNearAnyToken(p.Category, tokens) {
			results = append(results, Result{Product: p, LowConfidence: true})
			included[p.ID] = true
		}
	}
	return results
}

func categoryNearAnyToken(ref models.CategoryRef, tokens []string) bool {
	names := []string{
		strings.ToLower(ref.ChildName),
		strings.ToLower(ref.SubName),
		strings.ToLower(ref.ParentName),
	}
	for _, token := range tokens {
		for _, name := range names {
			if name == "" {
				continue
			}
			if strings.Contains(name, token) || bestWordSimilarity(token, name) > paddingMinSimilarity {
				return true
			}
		}
	}
	return false
}
