package dto

import "github.com/shopspring/decimal"

type CreateTagRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	Category    *string `json:"category"    validate:"omitempty,oneof=EVENT_TYPE COURSE DIETARY SERVICE"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// RecipeTagsRequest replaces every tag of a recipe. An empty list clears them.
type RecipeTagsRequest struct {
	Tags []string `json:"tags" validate:"dive,min=2,max=100"`
}

type TagResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// SuggestionQuery is bound from the query string of GET /v1/suggestions/recipes.
// A suggested recipe carries the event-type tag, the course tag when given
// and every dietary tag.
type SuggestionQuery struct {
	EventType string   `form:"event_type" validate:"required"`
	Course    string   `form:"course_type"`
	Dietary   []string `form:"dietary"`
	Limit     int      `form:"limit,default=20" validate:"min=1,max=100"`
}

// BeverageQuery is bound from the query string of GET /v1/suggestions/beverages.
type BeverageQuery struct {
	ServiceType string `form:"service_type" validate:"required"`
	Limit       int    `form:"limit,default=10" validate:"min=1,max=50"`
}

// RecipeSuggestion is a tagged recipe priced from the current catalog.
type RecipeSuggestion struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Tags           []string        `json:"tags"`
	CostPerPortion decimal.Decimal `json:"cost_per_portion"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
}
