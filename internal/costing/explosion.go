package costing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DemandRequest asks for Quantity yield units of a recipe on behalf of Origin,
// typically an event order.
type DemandRequest struct {
	RecipeID uuid.UUID
	Quantity decimal.Decimal
	Origin   string
}

// IngredientRequirement is the consolidated need for one base ingredient.
type IngredientRequirement struct {
	IngredientID uuid.UUID
	Name         string
	Category     string
	Unit         string
	Required     decimal.Decimal
	Stock        decimal.Decimal
	ToBuy        decimal.Decimal
	Origins      []string
}

// SubRecipeRequirement is the consolidated production need for one sub-recipe.
type SubRecipeRequirement struct {
	RecipeID uuid.UUID
	Name     string
	Unit     string
	Required decimal.Decimal
	Origins  []string
}

// ProductionPlan is the result of exploding a set of demand requests.
//
// Totals do not depend on the order of the requests. Origins and the ordered
// accessors follow first-seen order.
type ProductionPlan struct {
	IngredientTotals map[uuid.UUID]*IngredientRequirement
	SubRecipeTotals  map[uuid.UUID]*SubRecipeRequirement

	// ContributingOrigins lists the origins of every resolved request.
	ContributingOrigins []string

	// Unresolved holds requests whose recipe is not in the catalog.
	Unresolved []DemandRequest

	ingredientOrder []uuid.UUID
	subRecipeOrder  []uuid.UUID
}

func newProductionPlan() *ProductionPlan {
	return &ProductionPlan{
		IngredientTotals: make(map[uuid.UUID]*IngredientRequirement),
		SubRecipeTotals:  make(map[uuid.UUID]*SubRecipeRequirement),
	}
}

// Ingredients returns the ingredient requirements in first-seen order.
func (p *ProductionPlan) Ingredients() []*IngredientRequirement {
	out := make([]*IngredientRequirement, 0, len(p.ingredientOrder))
	for _, id := range p.ingredientOrder {
		out = append(out, p.IngredientTotals[id])
	}
	return out
}

// SubRecipes returns the sub-recipe requirements in first-seen order.
func (p *ProductionPlan) SubRecipes() []*SubRecipeRequirement {
	out := make([]*SubRecipeRequirement, 0, len(p.subRecipeOrder))
	for _, id := range p.subRecipeOrder {
		out = append(out, p.SubRecipeTotals[id])
	}
	return out
}

// ShoppingList returns the ingredient requirements that are not covered by stock.
func (p *ProductionPlan) ShoppingList() []*IngredientRequirement {
	var out []*IngredientRequirement
	for _, req := range p.Ingredients() {
		if req.ToBuy.IsPositive() {
			out = append(out, req)
		}
	}
	return out
}

func (p *ProductionPlan) addIngredient(ing *Ingredient, qty decimal.Decimal, stock StockSnapshot, origin string) {
	req, ok := p.IngredientTotals[ing.ID]
	if !ok {
		req = &IngredientRequirement{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Category:     ing.Category,
			Unit:         ing.UsageUnit,
			Required:     decimal.Zero,
			Stock:        stock.Level(ing.ID),
		}
		p.IngredientTotals[ing.ID] = req
		p.ingredientOrder = append(p.ingredientOrder, ing.ID)
	}
	req.Required = req.Required.Add(qty)
	req.ToBuy = decimal.Max(decimal.Zero, req.Required.Sub(req.Stock))
	req.Origins = appendUnique(req.Origins, origin)
}

func (p *ProductionPlan) addSubRecipe(r *Recipe, qty decimal.Decimal, origin string) {
	req, ok := p.SubRecipeTotals[r.ID]
	if !ok {
		req = &SubRecipeRequirement{
			RecipeID: r.ID,
			Name:     r.Name,
			Unit:     r.YieldUnit,
			Required: decimal.Zero,
		}
		p.SubRecipeTotals[r.ID] = req
		p.subRecipeOrder = append(p.subRecipeOrder, r.ID)
	}
	req.Required = req.Required.Add(qty)
	req.Origins = appendUnique(req.Origins, origin)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// Aggregator explodes demand into base ingredient and sub-recipe totals.
type Aggregator struct {
	g     *Graph
	stock StockSnapshot
}

// NewAggregator binds a graph to the stock levels every request is measured
// against. Stock is never decremented during an explosion.
func NewAggregator(g *Graph, stock StockSnapshot) *Aggregator {
	return &Aggregator{g: g, stock: stock}
}

// Explode consolidates every demand request into one ProductionPlan.
func (a *Aggregator) Explode(demands []DemandRequest) (*ProductionPlan, error) {
	for i, d := range demands {
		if d.Quantity.IsNegative() {
			return nil, &EngineError{
				Code:     ErrCodeInvalidDemand,
				Message:  fmt.Sprintf("demand %d has negative quantity %s", i, d.Quantity),
				RecipeID: d.RecipeID,
			}
		}
	}

	plan := newProductionPlan()
	for _, d := range demands {
		idx, ok := a.g.recipeIdx[d.RecipeID]
		if !ok {
			plan.Unresolved = append(plan.Unresolved, d)
			continue
		}
		plan.ContributingOrigins = appendUnique(plan.ContributingOrigins, d.Origin)

		x := explosion{a: a, plan: plan, onPath: make(map[int]bool)}
		if err := x.explode(idx, d.Quantity, d.Origin); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

type explosion struct {
	a      *Aggregator
	plan   *ProductionPlan
	onPath map[int]bool
	path   []int
}

func (x *explosion) explode(idx int, needed decimal.Decimal, origin string) error {
	g := x.a.g
	if x.onPath[idx] {
		return newCycleError(pathFrom(g, x.path, idx))
	}
	r := &g.recipes[idx]
	if !r.YieldQuantity.IsPositive() {
		return nil
	}
	factor := needed.Div(r.YieldQuantity)

	if r.Kind == KindSubRecipe {
		x.plan.addSubRecipe(r, needed, origin)
	}

	x.onPath[idx] = true
	x.path = append(x.path, idx)
	defer func() {
		x.path = x.path[:len(x.path)-1]
		delete(x.onPath, idx)
	}()

	for _, item := range r.Items {
		qty := item.Quantity.Mul(factor)
		if id, ok := item.Ref.IngredientID(); ok {
			if ing, found := g.Ingredient(id); found {
				x.plan.addIngredient(ing, qty, x.a.stock, origin)
			}
			continue
		}
		if id, ok := item.Ref.SubRecipeID(); ok {
			child, found := g.recipeIdx[id]
			if !found {
				continue
			}
			if err := x.explode(child, qty, origin); err != nil {
				return err
			}
		}
	}
	return nil
}
