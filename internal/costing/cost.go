package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RealCostPerUsageUnit converts the purchase-unit cost of ing into the cost of
// one usable usage unit: (currentCost / conversionRatio) / yieldFactor.
//
// A missing field, or a non-positive ratio or yield, yields 0.
func RealCostPerUsageUnit(ing *Ingredient) decimal.Decimal {
	if ing == nil || !ing.CurrentCost.Valid || !ing.ConversionRatio.Valid || !ing.YieldFactor.Valid {
		return decimal.Zero
	}
	ratio := ing.ConversionRatio.Decimal
	yield := ing.YieldFactor.Decimal
	if !ratio.IsPositive() || !yield.IsPositive() {
		return decimal.Zero
	}
	return ing.CurrentCost.Decimal.Div(ratio).Div(yield)
}

// Evaluator derives recipe costs from a Graph.
type Evaluator struct {
	g *Graph
}

func NewEvaluator(g *Graph) *Evaluator {
	return &Evaluator{g: g}
}

// ItemCost returns the cost of one recipe item. Dangling references cost 0.
func (e *Evaluator) ItemCost(item RecipeItem) (decimal.Decimal, error) {
	return e.newWalk().itemCost(&item)
}

// TotalCost returns the sum of the item costs of a recipe.
func (e *Evaluator) TotalCost(recipeID uuid.UUID) (decimal.Decimal, error) {
	idx, ok := e.g.recipeIdx[recipeID]
	if !ok {
		return decimal.Zero, recipeNotFound(recipeID)
	}
	return e.newWalk().totalCost(idx)
}

// CostPerPortion returns TotalCost divided by the recipe yield, or 0 for a
// recipe without a positive yield.
func (e *Evaluator) CostPerPortion(recipeID uuid.UUID) (decimal.Decimal, error) {
	idx, ok := e.g.recipeIdx[recipeID]
	if !ok {
		return decimal.Zero, recipeNotFound(recipeID)
	}
	return e.newWalk().costPerPortion(idx)
}

// SuggestedPrice returns CostPerPortion / (1 - targetMargin), or 0 when the
// margin is 1 or more.
func (e *Evaluator) SuggestedPrice(recipeID uuid.UUID) (decimal.Decimal, error) {
	r, ok := e.g.Recipe(recipeID)
	if !ok {
		return decimal.Zero, recipeNotFound(recipeID)
	}
	cpp, err := e.newWalk().costPerPortion(e.g.recipeIdx[recipeID])
	if err != nil {
		return decimal.Zero, err
	}
	return suggestedPrice(cpp, r.TargetMargin), nil
}

func suggestedPrice(costPerPortion, margin decimal.Decimal) decimal.Decimal {
	if margin.GreaterThanOrEqual(one) {
		return decimal.Zero
	}
	return costPerPortion.Div(one.Sub(margin))
}

// ItemCostLine is the cost contribution of one recipe item.
type ItemCostLine struct {
	ItemID   uuid.UUID
	Ref      ItemRef
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Cost     decimal.Decimal
}

// CostBreakdown is the full cost view of a recipe.
type CostBreakdown struct {
	RecipeID       uuid.UUID
	RecipeName     string
	YieldQuantity  decimal.Decimal
	TotalCost      decimal.Decimal
	CostPerPortion decimal.Decimal
	SuggestedPrice decimal.Decimal
	Items          []ItemCostLine
}

// Breakdown computes total cost, cost per portion, suggested price and the
// per-item costs of a recipe in a single traversal.
func (e *Evaluator) Breakdown(recipeID uuid.UUID) (*CostBreakdown, error) {
	idx, ok := e.g.recipeIdx[recipeID]
	if !ok {
		return nil, recipeNotFound(recipeID)
	}
	r := &e.g.recipes[idx]
	w := e.newWalk()

	w.enter(idx)
	lines := make([]ItemCostLine, 0, len(r.Items))
	total := decimal.Zero
	for i := range r.Items {
		item := &r.Items[i]
		c, err := w.itemCost(item)
		if err != nil {
			return nil, err
		}
		total = total.Add(c)
		lines = append(lines, ItemCostLine{
			ItemID:   item.ID,
			Ref:      item.Ref,
			Name:     e.g.refName(item.Ref),
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Cost:     c,
		})
	}
	w.leave()

	cpp := perPortion(total, r.YieldQuantity)
	return &CostBreakdown{
		RecipeID:       r.ID,
		RecipeName:     r.Name,
		YieldQuantity:  r.YieldQuantity,
		TotalCost:      total,
		CostPerPortion: cpp,
		SuggestedPrice: suggestedPrice(cpp, r.TargetMargin),
		Items:          lines,
	}, nil
}

func perPortion(total, yield decimal.Decimal) decimal.Decimal {
	if !yield.IsPositive() {
		return decimal.Zero
	}
	return total.Div(yield)
}

// refName resolves the display name of an item reference, "" when dangling.
func (g *Graph) refName(ref ItemRef) string {
	if id, ok := ref.IngredientID(); ok {
		if ing, found := g.Ingredient(id); found {
			return ing.Name
		}
		return ""
	}
	if id, ok := ref.SubRecipeID(); ok {
		if r, found := g.Recipe(id); found {
			return r.Name
		}
	}
	return ""
}

// walk is the state of one top-level cost traversal. It tracks the recipes on
// the current path to detect cycles and memoizes cost per portion so shared
// sub-recipes are evaluated once.
type walk struct {
	g      *Graph
	onPath map[int]bool
	path   []int
	memo   map[int]decimal.Decimal
}

func (e *Evaluator) newWalk() *walk {
	return &walk{
		g:      e.g,
		onPath: make(map[int]bool),
		memo:   make(map[int]decimal.Decimal),
	}
}

func (w *walk) enter(idx int) {
	w.onPath[idx] = true
	w.path = append(w.path, idx)
}

func (w *walk) leave() {
	last := w.path[len(w.path)-1]
	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, last)
}

// cycleTo builds the id path from the first visit of idx back to idx.
func (w *walk) cycleTo(idx int) *EngineError {
	return newCycleError(pathFrom(w.g, w.path, idx))
}

func pathFrom(g *Graph, path []int, idx int) []uuid.UUID {
	start := 0
	for i, v := range path {
		if v == idx {
			start = i
			break
		}
	}
	ids := make([]uuid.UUID, 0, len(path)-start+1)
	for _, v := range path[start:] {
		ids = append(ids, g.recipes[v].ID)
	}
	return append(ids, g.recipes[idx].ID)
}

func (w *walk) itemCost(item *RecipeItem) (decimal.Decimal, error) {
	if id, ok := item.Ref.IngredientID(); ok {
		ing, found := w.g.Ingredient(id)
		if !found {
			return decimal.Zero, nil
		}
		return RealCostPerUsageUnit(ing).Mul(item.Quantity), nil
	}
	if id, ok := item.Ref.SubRecipeID(); ok {
		idx, found := w.g.recipeIdx[id]
		if !found {
			return decimal.Zero, nil
		}
		cpp, err := w.costPerPortion(idx)
		if err != nil {
			return decimal.Zero, err
		}
		return cpp.Mul(item.Quantity), nil
	}
	return decimal.Zero, nil
}

func (w *walk) totalCost(idx int) (decimal.Decimal, error) {
	if w.onPath[idx] {
		return decimal.Zero, w.cycleTo(idx)
	}
	w.enter(idx)
	defer w.leave()

	total := decimal.Zero
	items := w.g.recipes[idx].Items
	for i := range items {
		c, err := w.itemCost(&items[i])
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(c)
	}
	return total, nil
}

func (w *walk) costPerPortion(idx int) (decimal.Decimal, error) {
	if v, ok := w.memo[idx]; ok {
		return v, nil
	}
	total, err := w.totalCost(idx)
	if err != nil {
		return decimal.Zero, err
	}
	v := perPortion(total, w.g.recipes[idx].YieldQuantity)
	w.memo[idx] = v
	return v, nil
}
