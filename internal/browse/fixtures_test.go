package browse

import (
	"storefront-service/internal/models"
)

// fixtureTree is a three-level category tree used across the browse tests.
func fixtureTree() []*models.CategoryNode {
	return []*models.CategoryNode{
		{
			ID: "10", Name: "Hydraulics",
			Children: []*models.CategoryNode{
				{
					ID: "11", Name: "Pumps",
					Children: []*models.CategoryNode{
						{ID: "12", Name: "Gear Pumps", Stock: 5},
						{ID: "13", Name: "Piston Pumps", Stock: 2},
					},
				},
				{
					ID: "14", Name: "Valves",
					Children: []*models.CategoryNode{
						{ID: "15", Name: "Ball Valves", Stock: 7},
					},
				},
			},
		},
		{
			ID: "20", Name: "Automation",
			Children: []*models.CategoryNode{
				{
					ID: "21", Name: "Openers",
					Children: []*models.CategoryNode{
						{ID: "22", Name: "Chain Drive", Stock: 4},
					},
				},
			},
		},
	}
}

func variation(id string, regular, offer float64, madeIn string, stock int, attrs map[string][]string) models.Variation {
	return models.Variation{
		ID:           id,
		SKUCode:      "SKU-" + id,
		RegularPrice: regular,
		OfferPrice:   offer,
		MadeIn:       madeIn,
		Stock:        stock,
		Attributes:   attrs,
	}
}

// fixtureProducts covers every category branch plus a zero-variation product.
func fixtureProducts() []models.Product {
	gearPumps := models.CategoryRef{
		ParentID: "10", ParentName: "Hydraulics",
		SubID: "11", SubName: "Pumps",
		ChildID: "12", ChildName: "Gear Pumps",
	}
	pistonPumps := models.CategoryRef{
		ParentID: "10", ParentName: "Hydraulics",
		SubID: "11", SubName: "Pumps",
		ChildID: "13", ChildName: "Piston Pumps",
	}
	ballValves := models.CategoryRef{
		ParentID: "10", ParentName: "Hydraulics",
		SubID: "14", SubName: "Valves",
		ChildID: "15", ChildName: "Ball Valves",
	}
	chainDrive := models.CategoryRef{
		ParentID: "20", ParentName: "Automation",
		SubID: "21", SubName: "Openers",
		ChildID: "22", ChildName: "Chain Drive",
	}

	return []models.Product{
		{
			ID: "p1", Title: "Iron Gear Pump", Category: gearPumps,
			Variations: []models.Variation{
				variation("v1", 100, 80, "USA", 3, map[string][]string{
					"Flow Rate": {"10 GPM"},
					"Material":  {"Cast Iron"},
				}),
				variation("v2", 120, 0, "Germany", 0, map[string][]string{
					"Flow Rate": {"20 GPM"},
					"Material":  {"Aluminum"},
				}),
			},
		},
		{
			ID: "p2", Title: "Compact Piston Pump", Category: pistonPumps,
			Variations: []models.Variation{
				variation("v3", 250, 0, "Made in USA", 8, map[string][]string{
					"Material": {"Steel"},
				}),
			},
		},
		{
			ID: "p3", Title: "Brass Ball Valve", Category: ballValves,
			Variations: []models.Variation{
				variation("v4", 40, 35, "Taiwan", 12, map[string][]string{
					"Material": {"Brass"},
				}),
			},
		},
		{
			ID: "p4", Title: "Chain Drive Opener", Category: chainDrive,
			Variations: []models.Variation{
				variation("v5", 300, 280, "Mexico", 6, map[string][]string{
					"Drive Type": {"Chain Drive"},
				}),
			},
		},
		{
			// No variations: listed via a synthetic row.
			ID: "p5", Title: "Bare Flange", Category: gearPumps,
		},
	}
}

func rowVariationIDs(rows []models.DisplayRow) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Variation == nil {
			ids = append(ids, row.Product.ID+"/synthetic")
			continue
		}
		ids = append(ids, row.Variation.ID)
	}
	return ids
}

func floatPtr(f float64) *float64 {
	return &f
}
