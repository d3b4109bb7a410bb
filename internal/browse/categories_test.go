package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySlug(t *testing.T) {
	assert.Equal(t, "gear-pumps-12", CategorySlug("Gear Pumps", "12"))
	assert.Equal(t, "valves-14", CategorySlug("Valves", "14"))
}

func TestNormalizeTreeDoesNotMutateInput(t *testing.T) {
	tree := fixtureTree()

	annotated, _ := NormalizeTree(tree, QueryState{ParentSlug: "hydraulics-10"})

	assert.Empty(t, tree[0].Slug)
	assert.False(t, tree[0].Toggle)
	assert.NotSame(t, tree[0], annotated[0])
	assert.True(t, annotated[0].Toggle)
}

func TestNormalizeTreeAssignsSlugsEverywhere(t *testing.T) {
	annotated, _ := NormalizeTree(fixtureTree(), QueryState{})

	assert.Equal(t, "hydraulics-10", annotated[0].Slug)
	assert.Equal(t, "pumps-11", annotated[0].Children[0].Slug)
	assert.Equal(t, "gear-pumps-12", annotated[0].Children[0].Children[0].Slug)
	assert.Equal(t, "chain-drive-22", annotated[1].Children[0].Children[0].Slug)
}

func TestNormalizeTreeReconstructsAncestryFromChild(t *testing.T) {
	_, active := NormalizeTree(fixtureTree(), QueryState{ChildSlug: "gear-pumps-12"})

	require.NotNil(t, active.Child)
	require.NotNil(t, active.Sub)
	require.NotNil(t, active.Parent)
	assert.Equal(t, "gear-pumps-12", active.ChildSlug())
	assert.Equal(t, "pumps-11", active.SubSlug())
	assert.Equal(t, "hydraulics-10", active.ParentSlug())
	assert.True(t, active.Child.Toggle)
	assert.True(t, active.Sub.Toggle)
	assert.True(t, active.Parent.Toggle)
}

func TestNormalizeTreeExplicitParentWinsOverInferred(t *testing.T) {
	// The child lives under Hydraulics but the URL names Automation. The
	// explicit parent stands and the orphaned child selection is dropped.
	_, active := NormalizeTree(fixtureTree(), QueryState{
		ParentSlug: "automation-20",
		ChildSlug:  "gear-pumps-12",
	})

	require.NotNil(t, active.Parent)
	assert.Equal(t, "automation-20", active.ParentSlug())
	assert.Nil(t, active.Child)
}

func TestNormalizeTreeDropsSubOutsideExplicitParent(t *testing.T) {
	_, active := NormalizeTree(fixtureTree(), QueryState{
		ParentSlug: "automation-20",
		SubSlug:    "pumps-11",
		ChildSlug:  "gear-pumps-12",
	})

	require.NotNil(t, active.Parent)
	assert.Equal(t, "automation-20", active.ParentSlug())
	assert.Nil(t, active.Sub)
	assert.Nil(t, active.Child)
}

func TestNormalizeTreeUnknownSlugIsUnconstrained(t *testing.T) {
	annotated, active := NormalizeTree(fixtureTree(), QueryState{ParentSlug: "does-not-exist-99"})

	assert.False(t, active.Selected())
	for _, parent := range annotated {
		assert.False(t, parent.Toggle)
	}
}

func TestNormalizeTreeTogglesAtMostOnePerLevel(t *testing.T) {
	annotated, _ := NormalizeTree(fixtureTree(), QueryState{SubSlug: "valves-14"})

	var toggledSubs int
	for _, parent := range annotated {
		for _, sub := range parent.Children {
			if sub.Toggle {
				toggledSubs++
				assert.Equal(t, "valves-14", sub.Slug)
			}
		}
	}
	assert.Equal(t, 1, toggledSubs)
	assert.True(t, annotated[0].Toggle)
}
