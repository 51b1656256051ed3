package dto

import "github.com/shopspring/decimal"

// ─── Recipe cost ─────────────────────────────────────────────────────────────

type ItemCostResponse struct {
	ItemID        string          `json:"item_id"`
	IngredientID  *string         `json:"ingredient_id,omitempty"`
	ChildRecipeID *string         `json:"child_recipe_id,omitempty"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	Cost          decimal.Decimal `json:"cost"`
}

// RecipeCostResponse is returned by GET /v1/recipes/:id/cost.
type RecipeCostResponse struct {
	RecipeID       string             `json:"recipe_id"`
	RecipeName     string             `json:"recipe_name"`
	YieldQuantity  decimal.Decimal    `json:"yield_quantity"`
	TotalCost      decimal.Decimal    `json:"total_cost"`
	CostPerPortion decimal.Decimal    `json:"cost_per_portion"`
	SuggestedPrice decimal.Decimal    `json:"suggested_price"`
	Items          []ItemCostResponse `json:"items"`
}

// ─── Scaling ─────────────────────────────────────────────────────────────────

type ScaledItemResponse struct {
	ItemID           string          `json:"item_id"`
	IngredientID     *string         `json:"ingredient_id,omitempty"`
	ChildRecipeID    *string         `json:"child_recipe_id,omitempty"`
	Name             string          `json:"name"`
	OriginalQuantity decimal.Decimal `json:"original_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Unit             string          `json:"unit"`
	ScalingLaw       string          `json:"scaling_law"`
	Scalable         bool            `json:"scalable"`
}

// ScalingResponse is returned by GET /v1/recipes/:id/scale.
type ScalingResponse struct {
	RecipeID      string               `json:"recipe_id"`
	RecipeName    string               `json:"recipe_name"`
	OriginalYield decimal.Decimal      `json:"original_yield"`
	TargetYield   decimal.Decimal      `json:"target_yield"`
	YieldUnit     string               `json:"yield_unit"`
	ScalingFactor decimal.Decimal      `json:"scaling_factor"`
	Items         []ScaledItemResponse `json:"items"`
}

// ─── Production plan ─────────────────────────────────────────────────────────

type PlanQuery struct {
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

type IngredientRequirementResponse struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	Required     decimal.Decimal `json:"required"`
	Stock        decimal.Decimal `json:"stock"`
	ToBuy        decimal.Decimal `json:"to_buy"`
	Origins      []string        `json:"origins"`
}

type SubRecipeRequirementResponse struct {
	RecipeID string          `json:"recipe_id"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Required decimal.Decimal `json:"required"`
	Origins  []string        `json:"origins"`
}

type ContributingEvent struct {
	ID          string `json:"id"`
	EventNumber string `json:"event_number"`
	Name        string `json:"name"`
	EventDate   string `json:"event_date"`
	GuestCount  int    `json:"guest_count"`
}

// ProductionPlanResponse is returned by GET /v1/production/plan.
type ProductionPlanResponse struct {
	StartDate          string                          `json:"start_date"`
	EndDate            string                          `json:"end_date"`
	Ingredients        []IngredientRequirementResponse `json:"ingredients"`
	SubRecipes         []SubRecipeRequirementResponse  `json:"sub_recipes"`
	ContributingEvents []ContributingEvent             `json:"contributing_events"`
	UnresolvedRecipes  []string                        `json:"unresolved_recipes,omitempty"`
}

// ShoppingListResponse is returned by GET /v1/production/shopping-list.
type ShoppingListResponse struct {
	StartDate string                          `json:"start_date"`
	EndDate   string                          `json:"end_date"`
	Items     []IngredientRequirementResponse `json:"items"`
}

type DispatchResponse struct {
	Queued    bool   `json:"queued"`
	Recipient string `json:"recipient"`
	ItemCount int    `json:"item_count"`
}

// ─── Inflation simulation ────────────────────────────────────────────────────

type SimulationQuery struct {
	Category   string  `form:"category"   validate:"required"`
	Percentage float64 `form:"percentage" validate:"gt=-100"`
}

type RecipeImpactResponse struct {
	RecipeID      string          `json:"recipe_id"`
	RecipeName    string          `json:"recipe_name"`
	OriginalCost  decimal.Decimal `json:"original_cost"`
	NewCost       decimal.Decimal `json:"new_cost"`
	Delta         decimal.Decimal `json:"delta"`
	DeltaPct      decimal.Decimal `json:"delta_pct"`
	AffectedItems int             `json:"affected_items"`
}

// SimulationResponse is returned by GET /v1/simulation/inflation.
type SimulationResponse struct {
	Category                string                 `json:"category"`
	Percentage              decimal.Decimal        `json:"percentage"`
	AffectedIngredientCount int                    `json:"affected_ingredient_count"`
	AffectedRecipeCount     int                    `json:"affected_recipe_count"`
	Impacts                 []RecipeImpactResponse `json:"impacts"`
}
