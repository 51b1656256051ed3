// Package costing is the recipe cost and production explosion engine.
//
// Everything in this package operates over an immutable Graph snapshot of the
// catalog. No function here performs I/O or holds locks; a Graph may be shared
// by any number of concurrent readers.
package costing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScalingLaw governs how an ingredient quantity grows when a recipe is batch-scaled.
type ScalingLaw string

const (
	ScalingLinear      ScalingLaw = "linear"
	ScalingLogarithmic ScalingLaw = "logarithmic"
)

// RecipeKind mirrors the menu classification of a recipe.
type RecipeKind string

const (
	KindFinalDish RecipeKind = "final_dish"
	KindSubRecipe RecipeKind = "sub_recipe"
	KindBeverage  RecipeKind = "beverage"
	KindDessert   RecipeKind = "dessert"
	KindAppetizer RecipeKind = "appetizer"
)

// Valid reports whether k is one of the known recipe kinds.
func (k RecipeKind) Valid() bool {
	switch k {
	case KindFinalDish, KindSubRecipe, KindBeverage, KindDessert, KindAppetizer:
		return true
	}
	return false
}

// Ingredient is a purchasable catalog entry.
//
// CurrentCost is expressed per purchase unit; ConversionRatio converts one
// purchase unit into usage units (1000 for kg -> g) and YieldFactor is the
// usable fraction after trimming. Any of the three may be absent.
type Ingredient struct {
	ID              uuid.UUID
	Name            string
	Category        string
	UsageUnit       string
	CurrentCost     decimal.NullDecimal
	ConversionRatio decimal.NullDecimal
	YieldFactor     decimal.NullDecimal
	ScalingLaw      ScalingLaw
	Stock           decimal.Decimal
	MinStock        decimal.Decimal
}

// Law returns the ingredient scaling law, defaulting to linear.
func (i *Ingredient) Law() ScalingLaw {
	if i.ScalingLaw == ScalingLogarithmic {
		return ScalingLogarithmic
	}
	return ScalingLinear
}

type refKind uint8

const (
	refNone refKind = iota
	refIngredient
	refSubRecipe
)

// ItemRef points a recipe item at exactly one ingredient or one child recipe.
// The zero value references nothing and is rejected by NewGraph.
type ItemRef struct {
	kind refKind
	id   uuid.UUID
}

// IngredientRef references an ingredient.
func IngredientRef(id uuid.UUID) ItemRef { return ItemRef{kind: refIngredient, id: id} }

// SubRecipeRef references a child recipe.
func SubRecipeRef(id uuid.UUID) ItemRef { return ItemRef{kind: refSubRecipe, id: id} }

// IngredientID returns the referenced ingredient id, if r references one.
func (r ItemRef) IngredientID() (uuid.UUID, bool) {
	return r.id, r.kind == refIngredient
}

// SubRecipeID returns the referenced child recipe id, if r references one.
func (r ItemRef) SubRecipeID() (uuid.UUID, bool) {
	return r.id, r.kind == refSubRecipe
}

// IsZero reports whether r references nothing.
func (r ItemRef) IsZero() bool {
	return r.kind == refNone || r.id == uuid.Nil
}

// ID returns the referenced id regardless of its kind.
func (r ItemRef) ID() uuid.UUID { return r.id }

func (r ItemRef) String() string {
	switch r.kind {
	case refIngredient:
		return "ingredient:" + r.id.String()
	case refSubRecipe:
		return "recipe:" + r.id.String()
	}
	return "none"
}

// RecipeItem is one line of a recipe. Quantity is expressed in Unit.
type RecipeItem struct {
	ID       uuid.UUID
	Ref      ItemRef
	Quantity decimal.Decimal
	Unit     string
	Scalable bool
}

// Recipe is a batch formula yielding YieldQuantity units of YieldUnit.
type Recipe struct {
	ID            uuid.UUID
	Name          string
	Kind          RecipeKind
	YieldQuantity decimal.Decimal
	YieldUnit     string
	TargetMargin  decimal.Decimal
	Items         []RecipeItem
}

// Graph is an immutable snapshot of the catalog: ingredients and recipes
// stored in arena slices and addressed through id indexes.
type Graph struct {
	ingredients []Ingredient
	recipes     []Recipe

	ingredientIdx map[uuid.UUID]int
	recipeIdx     map[uuid.UUID]int

	// children[i] holds the arena indexes of the resolvable child recipes of
	// recipes[i], in item order.
	children [][]int
}

// NewGraph copies ingredients and recipes into a new Graph.
//
// It rejects duplicate ids, items that reference nothing and direct
// self-references. Dangling references and indirect cycles are tolerated
// here: the former cost 0, the latter fail when traversed. Use Cycles to
// reject indirect cycles up front.
func NewGraph(ingredients []Ingredient, recipes []Recipe) (*Graph, error) {
	g := &Graph{
		ingredients:   make([]Ingredient, len(ingredients)),
		recipes:       make([]Recipe, len(recipes)),
		ingredientIdx: make(map[uuid.UUID]int, len(ingredients)),
		recipeIdx:     make(map[uuid.UUID]int, len(recipes)),
		children:      make([][]int, len(recipes)),
	}

	for i, ing := range ingredients {
		if _, dup := g.ingredientIdx[ing.ID]; dup {
			return nil, &EngineError{
				Code:    ErrCodeDuplicateID,
				Message: fmt.Sprintf("duplicate ingredient id %s", ing.ID),
			}
		}
		g.ingredients[i] = ing
		g.ingredientIdx[ing.ID] = i
	}

	for i, r := range recipes {
		if _, dup := g.recipeIdx[r.ID]; dup {
			return nil, &EngineError{
				Code:     ErrCodeDuplicateID,
				Message:  "duplicate recipe id",
				RecipeID: r.ID,
			}
		}
		items := make([]RecipeItem, len(r.Items))
		for j, item := range r.Items {
			if item.Ref.IsZero() {
				return nil, &EngineError{
					Code:     ErrCodeInvalidItem,
					Message:  fmt.Sprintf("item %d references neither an ingredient nor a recipe", j),
					RecipeID: r.ID,
				}
			}
			if child, ok := item.Ref.SubRecipeID(); ok && child == r.ID {
				return nil, &EngineError{
					Code:     ErrCodeSelfReference,
					Message:  "recipe cannot contain itself",
					RecipeID: r.ID,
				}
			}
			items[j] = item
		}
		r.Items = items
		g.recipes[i] = r
		g.recipeIdx[r.ID] = i
	}

	for i := range g.recipes {
		for _, item := range g.recipes[i].Items {
			if child, ok := item.Ref.SubRecipeID(); ok {
				if ci, found := g.recipeIdx[child]; found {
					g.children[i] = append(g.children[i], ci)
				}
			}
		}
	}
	return g, nil
}

// Ingredient looks up an ingredient by id. The result must not be modified.
func (g *Graph) Ingredient(id uuid.UUID) (*Ingredient, bool) {
	i, ok := g.ingredientIdx[id]
	if !ok {
		return nil, false
	}
	return &g.ingredients[i], true
}

// Recipe looks up a recipe by id. The result must not be modified.
func (g *Graph) Recipe(id uuid.UUID) (*Recipe, bool) {
	i, ok := g.recipeIdx[id]
	if !ok {
		return nil, false
	}
	return &g.recipes[i], true
}

// Recipes returns every recipe in catalog order.
func (g *Graph) Recipes() []*Recipe {
	out := make([]*Recipe, len(g.recipes))
	for i := range g.recipes {
		out[i] = &g.recipes[i]
	}
	return out
}

// Ingredients returns every ingredient in catalog order.
func (g *Graph) Ingredients() []*Ingredient {
	out := make([]*Ingredient, len(g.ingredients))
	for i := range g.ingredients {
		out[i] = &g.ingredients[i]
	}
	return out
}

// IngredientsInCategory returns the ingredients whose category matches exactly.
func (g *Graph) IngredientsInCategory(category string) []*Ingredient {
	var out []*Ingredient
	for i := range g.ingredients {
		if g.ingredients[i].Category == category {
			out = append(out, &g.ingredients[i])
		}
	}
	return out
}

// Stock captures the stock level of every ingredient in the graph.
func (g *Graph) Stock() StockSnapshot {
	levels := make(map[uuid.UUID]decimal.Decimal, len(g.ingredients))
	for _, ing := range g.ingredients {
		levels[ing.ID] = ing.Stock
	}
	return StockSnapshot{levels: levels}
}

// StockSnapshot is an immutable view of on-hand ingredient stock.
type StockSnapshot struct {
	levels map[uuid.UUID]decimal.Decimal
}

// NewStockSnapshot copies levels into a snapshot.
func NewStockSnapshot(levels map[uuid.UUID]decimal.Decimal) StockSnapshot {
	cp := make(map[uuid.UUID]decimal.Decimal, len(levels))
	for id, qty := range levels {
		cp[id] = qty
	}
	return StockSnapshot{levels: cp}
}

// Level returns the stock of an ingredient, zero when unknown.
func (s StockSnapshot) Level(id uuid.UUID) decimal.Decimal {
	if qty, ok := s.levels[id]; ok {
		return qty
	}
	return decimal.Zero
}

// Cycles returns every cycle in the composition graph as a path of recipe ids
// whose first element is repeated at the end. The result is empty for an
// acyclic graph and deterministic for a given catalog order.
func (g *Graph) Cycles() [][]uuid.UUID {
	t := tarjan{
		g:       g,
		index:   make([]int, len(g.recipes)),
		lowlink: make([]int, len(g.recipes)),
		onStack: make([]bool, len(g.recipes)),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for i := range g.recipes {
		if t.index[i] == -1 {
			t.strongConnect(i)
		}
	}

	var cycles [][]uuid.UUID
	for _, scc := range t.sccs {
		if len(scc) < 2 {
			continue
		}
		cycles = append(cycles, g.cyclePath(scc))
	}
	return cycles
}

// Validate returns a CYCLE_DETECTED error for the first cycle in the graph.
func (g *Graph) Validate() error {
	if cycles := g.Cycles(); len(cycles) > 0 {
		return newCycleError(cycles[0])
	}
	return nil
}

type tarjan struct {
	g       *Graph
	counter int
	index   []int
	lowlink []int
	onStack []bool
	stack   []int
	sccs    [][]int
}

func (t *tarjan) strongConnect(v int) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.children[v] {
		if t.index[w] == -1 {
			t.strongConnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	var scc []int
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	t.sccs = append(t.sccs, scc)
}

// cyclePath walks edges inside one strongly connected component, starting at
// its lowest arena index, until it returns to the start.
func (g *Graph) cyclePath(scc []int) []uuid.UUID {
	member := make(map[int]bool, len(scc))
	start := scc[0]
	for _, v := range scc {
		member[v] = true
		if v < start {
			start = v
		}
	}

	visited := make(map[int]bool, len(scc))
	var path []int
	var dfs func(v int) bool
	dfs = func(v int) bool {
		path = append(path, v)
		visited[v] = true
		for _, w := range g.children[v] {
			if w == start {
				path = append(path, w)
				return true
			}
			if member[w] && !visited[w] && dfs(w) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	dfs(start)

	ids := make([]uuid.UUID, len(path))
	for i, v := range path {
		ids[i] = g.recipes[v].ID
	}
	return ids
}
