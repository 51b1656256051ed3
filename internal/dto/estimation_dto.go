package dto

import "github.com/shopspring/decimal"

type EstimationRequest struct {
	GuestCount    int    `json:"guest_count"    validate:"required,gt=0"`
	DurationHours int    `json:"duration_hours" validate:"required,gt=0,lte=24"`
	Season        string `json:"season"         validate:"required,oneof=summer winter spring autumn"`
	EventType     string `json:"event_type"     validate:"required,oneof=wedding corporate birthday"`
}

type EstimationResponse struct {
	SoftDrinksLiters decimal.Decimal `json:"soft_drinks_liters"`
	WineBottles      decimal.Decimal `json:"wine_bottles"`
	ChampagneBottles decimal.Decimal `json:"champagne_bottles"`
	BeerLiters       decimal.Decimal `json:"beer_liters"`
	IceKg            decimal.Decimal `json:"ice_kg"`
	FingerFoodPieces int             `json:"finger_food_pieces"`
}
