package browse

import (
	"github.com/gosimple/slug"
	"storefront-service/internal/models"
)

// ActiveCategory is the deepest unambiguous category selection resolved from
// the query state. Nil levels are unselected. Pointers reference the
// annotated tree returned alongside, never the shared snapshot tree.
type ActiveCategory struct {
	Parent *models.CategoryNode
	Sub    *models.CategoryNode
	Child  *models.CategoryNode
}

// ParentSlug returns the toggled parent slug, or "".
func (a ActiveCategory) ParentSlug() string {
	if a.Parent == nil {
		return ""
	}
	return a.Parent.Slug
}

// SubSlug returns the toggled sub-category slug, or "".
func (a ActiveCategory) SubSlug() string {
	if a.Sub == nil {
		return ""
	}
	return a.Sub.Slug
}

// ChildSlug returns the toggled child-category slug, or "".
func (a ActiveCategory) ChildSlug() string {
	if a.Child == nil {
		return ""
	}
	return a.Child.Slug
}

// Selected reports whether any level is toggled.
func (a ActiveCategory) Selected() bool {
	return a.Parent != nil || a.Sub != nil || a.Child != nil
}

// CategorySlug builds the deterministic slug of a category node.
func CategorySlug(name, id string) string {
	return slug.Make(name) + "-" + id
}

// NormalizeTree annotates the raw category tree with slugs and toggle state
// derived from the query state, and resolves the active selection.
//
// The input tree is never mutated: the function deep-copies it, assigns
// slugs depth-first, then walks it matching the parent/sub/child slugs from
// the URL. Explicit URL parameters are authoritative at their own level;
// tree containment is only used to reconstruct ancestry for levels the URL
// leaves blank. A slug that matches nothing is dropped (treated as
// unconstrained), never an error. At most one node per level ends up
// toggled, and a toggled node implies its ancestors are toggled too.
func NormalizeTree(tree []*models.CategoryNode, qs QueryState) ([]*models.CategoryNode, ActiveCategory) {
	annotated := make([]*models.CategoryNode, 0, len(tree))
	for _, parent := range tree {
		annotated = append(annotated, parent.Clone())
	}
	for _, parent := range annotated {
		assignSlugs(parent)
	}

	active := resolveActive(annotated, qs)

	if active.Parent != nil {
		active.Parent.Toggle = true
	}
	if active.Sub != nil {
		active.Sub.Toggle = true
	}
	if active.Child != nil {
		active.Child.Toggle = true
	}

	return annotated, active
}

func assignSlugs(node *models.CategoryNode) {
	node.Slug = CategorySlug(node.Name, node.ID)
	node.Toggle = false
	for _, child := range node.Children {
		assignSlugs(child)
	}
}

// resolveActive matches URL slugs against the annotated tree.
//
// Matching runs deepest-first so blank ancestor levels can be reconstructed
// from containment, but an explicit parent or sub parameter always wins over
// the inferred ancestor — even when it does not actually contain the matched
// descendant. In that inconsistent case the orphaned deeper selection is
// dropped.
func resolveActive(tree []*models.CategoryNode, qs QueryState) ActiveCategory {
	var active ActiveCategory

	// Deepest level first: locate the child and remember its real ancestry.
	var childParent, childSub *models.CategoryNode
	if qs.ChildSlug != "" {
		for _, parent := range tree {
			for _, sub := range parent.Children {
				for _, child := range sub.Children {
					if child.Slug == qs.ChildSlug && active.Child == nil {
						active.Child = child
						childParent, childSub = parent, sub
					}
				}
			}
		}
	}

	var subParent *models.CategoryNode
	if qs.SubSlug != "" {
		for _, parent := range tree {
			for _, sub := range parent.Children {
				if sub.Slug == qs.SubSlug && active.Sub == nil {
					active.Sub = sub
					subParent = parent
				}
			}
		}
	} else if childSub != nil {
		active.Sub = childSub
		subParent = childParent
	}

	if qs.ParentSlug != "" {
		for _, parent := range tree {
			if parent.Slug == qs.ParentSlug && active.Parent == nil {
				active.Parent = parent
			}
		}
	} else if subParent != nil {
		active.Parent = subParent
	} else if childParent != nil {
		active.Parent = childParent
	}

	// Drop selections whose required nesting does not hold under the
	// explicitly chosen ancestors.
	if active.Sub != nil && active.Parent != nil && !containsNode(active.Parent, active.Sub) {
		active.Sub = nil
		active.Child = nil
	}
	if active.Child != nil {
		anchor := active.Sub
		if anchor == nil {
			anchor = active.Parent
		}
		if anchor != nil && !containsNode(anchor, active.Child) {
			active.Child = nil
		}
	}

	return active
}

func containsNode(node, want *models.CategoryNode) bool {
	for _, child := range node.Children {
		if child == want || containsNode(child, want) {
			return true
		}
	}
	return false
}
