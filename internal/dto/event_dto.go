package dto

import "github.com/shopspring/decimal"

type CreateEventRequest struct {
	EventNumber string  `json:"event_number" validate:"required,max=50"`
	Name        string  `json:"name"         validate:"required,max=200"`
	ClientName  string  `json:"client_name"  validate:"required,max=200"`
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
	EventDate   string  `json:"event_date"   validate:"required,datetime=2006-01-02"`
	GuestCount  int     `json:"guest_count"  validate:"gt=0"`
	VenueName   *string `json:"venue_name"`
	Status      string  `json:"status"       validate:"omitempty,oneof=prospect quoted confirmed in_progress completed cancelled"`
	Notes       *string `json:"notes"`
}

type UpdateEventRequest struct {
	Name        *string `json:"name"         validate:"omitempty,max=200"`
	ClientName  *string `json:"client_name"  validate:"omitempty,max=200"`
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
	EventDate   *string `json:"event_date"   validate:"omitempty,datetime=2006-01-02"`
	GuestCount  *int    `json:"guest_count"  validate:"omitempty,gt=0"`
	VenueName   *string `json:"venue_name"`
	Status      *string `json:"status"       validate:"omitempty,oneof=prospect quoted confirmed in_progress completed cancelled"`
	Notes       *string `json:"notes"`
}

// AddOrderRequest adds a recipe to an event. UnitPrice overrides the recipe's
// suggested price when set.
type AddOrderRequest struct {
	RecipeID  string           `json:"recipe_id"  validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"   validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Notes     *string          `json:"notes"      validate:"omitempty,max=500"`
}

type EventFilter struct {
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type EventOrderResponse struct {
	ID              string          `json:"id"`
	RecipeID        string          `json:"recipe_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPriceFrozen decimal.Decimal `json:"unit_price_frozen"`
	CostAtSale      decimal.Decimal `json:"cost_at_sale"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Notes           *string         `json:"notes"`
}

type EventResponse struct {
	ID           string               `json:"id"`
	EventNumber  string               `json:"event_number"`
	Name         string               `json:"name"`
	ClientName   string               `json:"client_name"`
	ClientEmail  *string              `json:"client_email"`
	EventDate    string               `json:"event_date"`
	GuestCount   int                  `json:"guest_count"`
	VenueName    *string              `json:"venue_name"`
	Status       string               `json:"status"`
	Notes        *string              `json:"notes"`
	Orders       []EventOrderResponse `json:"orders"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	TotalCost    decimal.Decimal      `json:"total_cost"`
	Margin       decimal.Decimal      `json:"margin"`
}

type EventListResponse struct {
	Data       []EventResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
