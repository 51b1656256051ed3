package dto

import "github.com/shopspring/decimal"

// RecipeItemRequest must reference exactly one of an ingredient or a child
// recipe; the service rejects anything else.
type RecipeItemRequest struct {
	IngredientID  *string         `json:"ingredient_id"   validate:"omitempty,uuid"`
	ChildRecipeID *string         `json:"child_recipe_id" validate:"omitempty,uuid"`
	Quantity      decimal.Decimal `json:"quantity"        validate:"gt=0"`
	Unit          string          `json:"unit"            validate:"required,max=20"`
	Scalable      *bool           `json:"scalable"`
	Notes         *string         `json:"notes"           validate:"omitempty,max=500"`
}

// RecipeRequest is used for both create and full replace; items are replaced
// atomically with the header.
type RecipeRequest struct {
	Name            string              `json:"name"             validate:"required,min=2,max=200"`
	Description     *string             `json:"description"`
	Kind            string              `json:"kind"             validate:"required,oneof=final_dish sub_recipe beverage dessert appetizer"`
	YieldQuantity   decimal.Decimal     `json:"yield_quantity"   validate:"gt=0"`
	YieldUnit       string              `json:"yield_unit"       validate:"required,max=20"`
	TargetMargin    decimal.Decimal     `json:"target_margin"    validate:"gte=0,lt=1"`
	PreparationTime int                 `json:"preparation_time" validate:"gte=0"`
	ShelfLifeHours  int                 `json:"shelf_life_hours" validate:"gte=0"`
	Items           []RecipeItemRequest `json:"items"            validate:"dive"`
}

type RecipeFilter struct {
	Name  string `form:"name"`
	Kind  string `form:"kind"`
	Tag   string `form:"tag"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type RecipeItemResponse struct {
	ID            string          `json:"id"`
	IngredientID  *string         `json:"ingredient_id"`
	ChildRecipeID *string         `json:"child_recipe_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	Scalable      bool            `json:"scalable"`
	Notes         *string         `json:"notes"`
}

type RecipeResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Description     *string              `json:"description"`
	Kind            string               `json:"kind"`
	YieldQuantity   decimal.Decimal      `json:"yield_quantity"`
	YieldUnit       string               `json:"yield_unit"`
	TargetMargin    decimal.Decimal      `json:"target_margin"`
	PreparationTime int                  `json:"preparation_time"`
	ShelfLifeHours  int                  `json:"shelf_life_hours"`
	Items           []RecipeItemResponse `json:"items"`
	Tags            []string             `json:"tags"`
}

type RecipeListResponse struct {
	Data       []RecipeResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}
