package costing

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// logarithmicExponent is applied to the scaling factor of logarithmic
// ingredients when scaling up.
const logarithmicExponent = 0.85

// ScaledItem is the projection of one recipe item at the target yield.
type ScaledItem struct {
	ItemID           uuid.UUID
	Ref              ItemRef
	Name             string
	OriginalQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Unit             string
	ScalingLaw       ScalingLaw
	Scalable         bool
}

// ScalingResult is a scaled projection of a recipe. The recipe itself is
// never modified.
type ScalingResult struct {
	RecipeID      uuid.UUID
	RecipeName    string
	OriginalYield decimal.Decimal
	TargetYield   decimal.Decimal
	YieldUnit     string
	Factor        decimal.Decimal
	Items         []ScaledItem
}

// Scaler rescales recipes to a target yield.
type Scaler struct {
	g *Graph
}

func NewScaler(g *Graph) *Scaler {
	return &Scaler{g: g}
}

// Scale computes every item quantity of a recipe for the target yield.
//
// Ingredients with a logarithmic law grow by factor^0.85 when scaling up.
// Everything else, sub-recipe items included, scales linearly.
func (s *Scaler) Scale(recipeID uuid.UUID, target decimal.Decimal) (*ScalingResult, error) {
	r, ok := s.g.Recipe(recipeID)
	if !ok {
		return nil, recipeNotFound(recipeID)
	}
	if !target.IsPositive() {
		return nil, &EngineError{
			Code:     ErrCodeInvalidTarget,
			Message:  "target quantity must be greater than zero",
			RecipeID: recipeID,
		}
	}
	if !r.YieldQuantity.IsPositive() {
		return nil, &EngineError{
			Code:     ErrCodeNotScalable,
			Message:  "recipe yield must be greater than zero",
			RecipeID: recipeID,
		}
	}

	factor := target.Div(r.YieldQuantity)
	var damped decimal.Decimal
	if factor.GreaterThan(one) {
		damped = dampen(factor)
	}

	res := &ScalingResult{
		RecipeID:      r.ID,
		RecipeName:    r.Name,
		OriginalYield: r.YieldQuantity,
		TargetYield:   target,
		YieldUnit:     r.YieldUnit,
		Factor:        factor,
		Items:         make([]ScaledItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		law := ScalingLinear
		if id, ok := item.Ref.IngredientID(); ok {
			if ing, found := s.g.Ingredient(id); found {
				law = ing.Law()
			}
		}

		newQty := item.Quantity.Mul(factor)
		if law == ScalingLogarithmic && factor.GreaterThan(one) {
			newQty = item.Quantity.Mul(damped)
		}

		res.Items = append(res.Items, ScaledItem{
			ItemID:           item.ID,
			Ref:              item.Ref,
			Name:             s.g.refName(item.Ref),
			OriginalQuantity: item.Quantity,
			NewQuantity:      newQty,
			Unit:             item.Unit,
			ScalingLaw:       law,
			Scalable:         item.Scalable,
		})
	}
	return res, nil
}

// dampen returns factor^0.85. Factors beyond float64 range are raised in
// log10 space so the result stays a finite decimal.
func dampen(factor decimal.Decimal) decimal.Decimal {
	p := math.Pow(factor.InexactFloat64(), logarithmicExponent)
	if !math.IsInf(p, 0) && !math.IsNaN(p) {
		return decimal.NewFromFloat(p)
	}
	// factor = m * 10^e with 1 <= m < 10
	e := int64(factor.NumDigits()) + int64(factor.Exponent()) - 1
	m := factor.Shift(int32(-e)).InexactFloat64()
	l := logarithmicExponent * (float64(e) + math.Log10(m))
	k := math.Floor(l)
	return decimal.NewFromFloat(math.Pow(10, l-k)).Shift(int32(k))
}
