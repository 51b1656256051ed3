package costing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RecipeImpact is the simulated cost change of one recipe.
type RecipeImpact struct {
	RecipeID      uuid.UUID
	RecipeName    string
	OriginalCost  decimal.Decimal
	NewCost       decimal.Decimal
	Delta         decimal.Decimal
	DeltaPct      decimal.Decimal
	AffectedItems int
}

// InflationResult lists the recipes affected by a category price change,
// largest absolute delta first.
type InflationResult struct {
	Category                string
	Percentage              decimal.Decimal
	Multiplier              decimal.Decimal
	AffectedIngredientCount int
	Impacts                 []RecipeImpact
}

// Simulator estimates the first-order impact of a price shock.
type Simulator struct {
	g *Graph
}

func NewSimulator(g *Graph) *Simulator {
	return &Simulator{g: g}
}

// Simulate applies a percentage change to every ingredient of category and
// reports the recipes whose direct items reference one of them.
//
// Only direct items are repriced. A recipe that reaches an affected
// ingredient through a sub-recipe keeps the sub-recipe item at its current
// cost.
func (s *Simulator) Simulate(category string, percentage decimal.Decimal) (*InflationResult, error) {
	multiplier := one.Add(percentage.Div(hundred))
	affected := s.g.IngredientsInCategory(category)
	res := &InflationResult{
		Category:                category,
		Percentage:              percentage,
		Multiplier:              multiplier,
		AffectedIngredientCount: len(affected),
		Impacts:                 []RecipeImpact{},
	}
	if len(affected) == 0 {
		return res, nil
	}

	inCategory := make(map[uuid.UUID]bool, len(affected))
	for _, ing := range affected {
		inCategory[ing.ID] = true
	}

	w := (&Evaluator{g: s.g}).newWalk()
	for i := range s.g.recipes {
		r := &s.g.recipes[i]
		original := decimal.Zero
		simulated := decimal.Zero
		hits := 0
		w.enter(i)
		for j := range r.Items {
			item := &r.Items[j]
			c, err := w.itemCost(item)
			if err != nil {
				return nil, err
			}
			original = original.Add(c)
			if id, ok := item.Ref.IngredientID(); ok && inCategory[id] {
				c = c.Mul(multiplier)
				hits++
			}
			simulated = simulated.Add(c)
		}
		w.leave()
		if hits == 0 {
			continue
		}

		delta := simulated.Sub(original)
		pct := decimal.Zero
		if original.IsPositive() {
			pct = delta.Div(original).Mul(hundred)
		}
		res.Impacts = append(res.Impacts, RecipeImpact{
			RecipeID:      r.ID,
			RecipeName:    r.Name,
			OriginalCost:  original,
			NewCost:       simulated,
			Delta:         delta,
			DeltaPct:      pct,
			AffectedItems: hits,
		})
	}

	sort.SliceStable(res.Impacts, func(a, b int) bool {
		return res.Impacts[a].Delta.Abs().GreaterThan(res.Impacts[b].Delta.Abs())
	})
	return res, nil
}
