// Package catalogfile reads catalogs and demand lists written in YAML.
//
// Files reference ingredients and recipes by name. Ids are derived from the
// name (UUID v5), so the same file always yields the same graph and can be
// re-imported without creating duplicates.
package catalogfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"catercost/internal/costing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://catercost.local/catalog"))

// DefaultTargetMargin applies to recipes that do not declare one.
var DefaultTargetMargin = decimal.RequireFromString("0.35")

func IngredientID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("ingredient:"+name))
}

func RecipeID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("recipe:"+name))
}

// ItemID identifies the pos-th item of a recipe.
func ItemID(recipe string, pos int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("item:%s:%d", recipe, pos)))
}

// Number is a decimal read from a YAML scalar without a float round trip.
type Number struct {
	decimal.Decimal
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", value.Line)
	}
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %q is not a number", value.Line, value.Value)
	}
	n.Decimal = d
	return nil
}

// Null converts an optional number; a nil receiver is NULL.
func (n *Number) Null() decimal.NullDecimal {
	if n == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(n.Decimal)
}

type IngredientDef struct {
	Name            string  `yaml:"name"`
	SKU             string  `yaml:"sku"`
	Category        string  `yaml:"category"`
	PurchaseUnit    string  `yaml:"purchase_unit"`
	UsageUnit       string  `yaml:"usage_unit"`
	Cost            *Number `yaml:"cost"`
	ConversionRatio *Number `yaml:"conversion_ratio"`
	YieldFactor     *Number `yaml:"yield_factor"`
	ScalingLaw      string  `yaml:"scaling_law"`
	Stock           Number  `yaml:"stock"`
	MinStock        Number  `yaml:"min_stock"`
}

// ItemDef names exactly one of Ingredient and Recipe.
type ItemDef struct {
	Ingredient string `yaml:"ingredient"`
	Recipe     string `yaml:"recipe"`
	Quantity   Number `yaml:"quantity"`
	Unit       string `yaml:"unit"`
	Scalable   *bool  `yaml:"scalable"`
	Notes      string `yaml:"notes"`
}

// IsScalable defaults to true.
func (d ItemDef) IsScalable() bool { return d.Scalable == nil || *d.Scalable }

type RecipeDef struct {
	Name            string    `yaml:"name"`
	Description     string    `yaml:"description"`
	Kind            string    `yaml:"kind"`
	Yield           Number    `yaml:"yield"`
	YieldUnit       string    `yaml:"yield_unit"`
	TargetMargin    *Number   `yaml:"target_margin"`
	PreparationTime int       `yaml:"preparation_time"`
	ShelfLifeHours  int       `yaml:"shelf_life_hours"`
	Items           []ItemDef `yaml:"items"`
}

// Margin returns the declared target margin or DefaultTargetMargin.
func (d RecipeDef) Margin() decimal.Decimal {
	if d.TargetMargin == nil {
		return DefaultTargetMargin
	}
	return d.TargetMargin.Decimal
}

// RecipeKind returns the declared kind, final_dish when omitted.
func (d RecipeDef) RecipeKind() costing.RecipeKind {
	if d.Kind == "" {
		return costing.KindFinalDish
	}
	return costing.RecipeKind(d.Kind)
}

// File is a parsed catalog.
type File struct {
	Ingredients []IngredientDef `yaml:"ingredients"`
	Recipes     []RecipeDef     `yaml:"recipes"`
}

// Load reads and validates a catalog file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func decodeStrict(data []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Parse decodes a catalog and checks that names are unique, kinds and
// scaling laws are known and every item references exactly one entry that
// the file defines. Composition cycles are left to Graph.
func Parse(data []byte) (*File, error) {
	var f File
	if err := decodeStrict(data, &f); err != nil {
		return nil, err
	}

	ingredients := make(map[string]bool, len(f.Ingredients))
	for i, ing := range f.Ingredients {
		if ing.Name == "" {
			return nil, fmt.Errorf("ingredient %d: name is required", i)
		}
		if ingredients[ing.Name] {
			return nil, fmt.Errorf("ingredient %q is defined twice", ing.Name)
		}
		ingredients[ing.Name] = true
		switch costing.ScalingLaw(ing.ScalingLaw) {
		case "", costing.ScalingLinear, costing.ScalingLogarithmic:
		default:
			return nil, fmt.Errorf("ingredient %q: unknown scaling_law %q", ing.Name, ing.ScalingLaw)
		}
	}

	recipes := make(map[string]bool, len(f.Recipes))
	for i, r := range f.Recipes {
		if r.Name == "" {
			return nil, fmt.Errorf("recipe %d: name is required", i)
		}
		if recipes[r.Name] {
			return nil, fmt.Errorf("recipe %q is defined twice", r.Name)
		}
		recipes[r.Name] = true
		if !r.RecipeKind().Valid() {
			return nil, fmt.Errorf("recipe %q: unknown kind %q", r.Name, r.Kind)
		}
	}

	for _, r := range f.Recipes {
		for j, it := range r.Items {
			switch {
			case (it.Ingredient == "") == (it.Recipe == ""):
				return nil, fmt.Errorf("recipe %q item %d: set exactly one of ingredient and recipe", r.Name, j)
			case it.Ingredient != "" && !ingredients[it.Ingredient]:
				return nil, fmt.Errorf("recipe %q item %d: unknown ingredient %q", r.Name, j, it.Ingredient)
			case it.Recipe != "" && !recipes[it.Recipe]:
				return nil, fmt.Errorf("recipe %q item %d: unknown recipe %q", r.Name, j, it.Recipe)
			}
		}
	}
	return &f, nil
}

// Graph builds the engine snapshot of the catalog.
func (f *File) Graph() (*costing.Graph, error) {
	ings := make([]costing.Ingredient, 0, len(f.Ingredients))
	for _, d := range f.Ingredients {
		ings = append(ings, costing.Ingredient{
			ID:              IngredientID(d.Name),
			Name:            d.Name,
			Category:        d.Category,
			UsageUnit:       d.UsageUnit,
			CurrentCost:     d.Cost.Null(),
			ConversionRatio: d.ConversionRatio.Null(),
			YieldFactor:     d.YieldFactor.Null(),
			ScalingLaw:      costing.ScalingLaw(d.ScalingLaw),
			Stock:           d.Stock.Decimal,
			MinStock:        d.MinStock.Decimal,
		})
	}

	recs := make([]costing.Recipe, 0, len(f.Recipes))
	for _, d := range f.Recipes {
		r := costing.Recipe{
			ID:            RecipeID(d.Name),
			Name:          d.Name,
			Kind:          d.RecipeKind(),
			YieldQuantity: d.Yield.Decimal,
			YieldUnit:     d.YieldUnit,
			TargetMargin:  d.Margin(),
			Items:         make([]costing.RecipeItem, 0, len(d.Items)),
		}
		for j, it := range d.Items {
			ref := costing.IngredientRef(IngredientID(it.Ingredient))
			if it.Recipe != "" {
				ref = costing.SubRecipeRef(RecipeID(it.Recipe))
			}
			r.Items = append(r.Items, costing.RecipeItem{
				ID:       ItemID(d.Name, j),
				Ref:      ref,
				Quantity: it.Quantity.Decimal,
				Unit:     it.Unit,
				Scalable: it.IsScalable(),
			})
		}
		recs = append(recs, r)
	}
	return costing.NewGraph(ings, recs)
}

// DependencyOrder returns the recipes with every sub-recipe ahead of the
// recipes that use it. It fails on a composition cycle.
func (f *File) DependencyOrder() ([]RecipeDef, error) {
	byName := make(map[string]RecipeDef, len(f.Recipes))
	for _, r := range f.Recipes {
		byName[r.Name] = r
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(f.Recipes))
	out := make([]RecipeDef, 0, len(f.Recipes))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("recipe %q contains itself via %v", name, append(path, name))
		}
		state[name] = visiting
		for _, it := range byName[name].Items {
			if it.Recipe == "" {
				continue
			}
			if err := visit(it.Recipe, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, byName[name])
		return nil
	}

	for _, r := range f.Recipes {
		if err := visit(r.Name, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ── Demand ───────────────────────────────────────────────────────────────────

type DemandDef struct {
	Recipe   string `yaml:"recipe"`
	Quantity Number `yaml:"quantity"`
	Origin   string `yaml:"origin"`
}

type demandFile struct {
	Demand []DemandDef `yaml:"demand"`
}

// LoadDemand reads a demand list. Recipe names are resolved to ids without
// consulting a catalog, so unknown names surface as unresolved demand.
func LoadDemand(path string) ([]costing.DemandRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reqs, err := ParseDemand(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

func ParseDemand(data []byte) ([]costing.DemandRequest, error) {
	var f demandFile
	if err := decodeStrict(data, &f); err != nil {
		return nil, err
	}
	reqs := make([]costing.DemandRequest, 0, len(f.Demand))
	for i, d := range f.Demand {
		if d.Recipe == "" {
			return nil, fmt.Errorf("demand %d: recipe is required", i)
		}
		origin := d.Origin
		if origin == "" {
			origin = fmt.Sprintf("line-%d", i+1)
		}
		reqs = append(reqs, costing.DemandRequest{
			RecipeID: RecipeID(d.Recipe),
			Quantity: d.Quantity.Decimal,
			Origin:   origin,
		})
	}
	return reqs, nil
}
