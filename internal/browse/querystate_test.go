package browse

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryStateDefaults(t *testing.T) {
	qs := ParseQueryState(url.Values{})

	assert.Equal(t, 1, qs.Page)
	assert.Equal(t, DefaultPageSize, qs.PageSize)
	assert.False(t, qs.HasCategory())
	assert.False(t, qs.HasFilters())
	assert.Nil(t, qs.MinPrice)
	assert.Nil(t, qs.MaxPrice)
	assert.False(t, qs.ExcludeUSA)
}

func TestParseQueryStateDropsUnparseableNumbers(t *testing.T) {
	values := url.Values{}
	values.Set("min_price", "cheap")
	values.Set("max_price", "12x")
	values.Set("page", "-3")
	values.Set("page_size", "zero")

	qs := ParseQueryState(values)

	assert.Nil(t, qs.MinPrice)
	assert.Nil(t, qs.MaxPrice)
	assert.Equal(t, 1, qs.Page)
	assert.Equal(t, DefaultPageSize, qs.PageSize)
}

func TestParseQueryStateFilters(t *testing.T) {
	values := url.Values{}
	values.Set("filter_material", "Cast%20Iron|Steel|Cast%20Iron")
	values.Set("filter_", "ignored")
	values.Set("filter_empty", "")

	qs := ParseQueryState(values)

	require.Len(t, qs.Filters, 1)
	assert.Equal(t, []string{"Cast Iron", "Steel"}, qs.Filters["material"])
	assert.True(t, qs.Selected("material", "Steel"))
	assert.False(t, qs.Selected("material", "Brass"))
}

func TestQueryStateRoundTrip(t *testing.T) {
	min, max := 25.5, 300.0
	original := QueryState{
		ParentSlug: "hydraulics-10",
		SubSlug:    "pumps-11",
		ChildSlug:  "gear-pumps-12",
		Search:     "gear pump",
		Filters: map[string][]string{
			"material":  {"Cast Iron", "A|B"},
			"flow-rate": {"10 GPM"},
		},
		MinPrice:   &min,
		MaxPrice:   &max,
		ExcludeUSA: true,
		Page:       3,
		PageSize:   18,
	}

	decoded := ParseQueryState(original.Encode())

	assert.Equal(t, original.ParentSlug, decoded.ParentSlug)
	assert.Equal(t, original.SubSlug, decoded.SubSlug)
	assert.Equal(t, original.ChildSlug, decoded.ChildSlug)
	assert.Equal(t, original.Search, decoded.Search)
	assert.Equal(t, original.Filters, decoded.Filters)
	require.NotNil(t, decoded.MinPrice)
	require.NotNil(t, decoded.MaxPrice)
	assert.Equal(t, min, *decoded.MinPrice)
	assert.Equal(t, max, *decoded.MaxPrice)
	assert.True(t, decoded.ExcludeUSA)
	assert.Equal(t, 3, decoded.Page)
	assert.Equal(t, 18, decoded.PageSize)
}

func TestQueryStateEncodeOmitsDefaults(t *testing.T) {
	encoded := QueryState{Page: 1, PageSize: DefaultPageSize}.Encode()

	assert.Empty(t, encoded.Encode())
}
