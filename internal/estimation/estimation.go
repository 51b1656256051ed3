// Package estimation projects beverage, ice and finger-food quantities for a
// catering event from its headcount, length, season and type.
package estimation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Season string

const (
	Summer Season = "summer"
	Winter Season = "winter"
	Spring Season = "spring"
	Autumn Season = "autumn"
)

type EventType string

const (
	Wedding   EventType = "wedding"
	Corporate EventType = "corporate"
	Birthday  EventType = "birthday"
)

// Request describes the event being estimated.
type Request struct {
	GuestCount    int
	DurationHours int
	Season        Season
	EventType     EventType
}

// Result holds event totals. Liquids, bottles and ice are rounded to one
// decimal place.
type Result struct {
	SoftDrinksLiters decimal.Decimal
	WineBottles      decimal.Decimal
	ChampagneBottles decimal.Decimal
	BeerLiters       decimal.Decimal
	IceKg            decimal.Decimal
	FingerFoodPieces int
}

// seasonRates are per guest: soft drinks and beer in liters per hour, ice in
// kg for the whole event.
type seasonRates struct {
	softDrinks, beer, ice decimal.Decimal
}

var seasons = map[Season]seasonRates{
	Summer: {softDrinks: d("0.6"), beer: d("0.5"), ice: d("1.0")},
	Winter: {softDrinks: d("0.3"), beer: d("0.2"), ice: d("0.4")},
	Spring: {softDrinks: d("0.45"), beer: d("0.35"), ice: d("0.7")},
	Autumn: {softDrinks: d("0.45"), beer: d("0.35"), ice: d("0.7")},
}

// eventProfile adjusts consumption for the kind of event. Wine and champagne
// are bottles per guest; the multipliers apply to the hourly season rates.
type eventProfile struct {
	wine, champagne       decimal.Decimal
	beerMul, softDrinkMul decimal.Decimal
	fingerFoodOffset      int
}

var events = map[EventType]eventProfile{
	Wedding:   {wine: d("0.4"), champagne: d("0.2"), beerMul: d("1.2"), softDrinkMul: d("0.8")},
	Corporate: {wine: d("0.2"), champagne: d("0.05"), beerMul: d("0.8"), softDrinkMul: d("1"), fingerFoodOffset: -2},
	Birthday:  {wine: d("0.25"), champagne: d("0.1"), beerMul: d("1"), softDrinkMul: d("1")},
}

const (
	// Events shorter than heavyCocktailHours get a light cocktail service.
	heavyCocktailHours  = 3
	lightCocktailPieces = 5
	heavyCocktailPieces = 14
	minPiecesPerGuest   = 3
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Estimate computes the consumption totals for req.
func Estimate(req Request) (*Result, error) {
	if req.GuestCount <= 0 {
		return nil, fmt.Errorf("estimation: guest count must be positive, got %d", req.GuestCount)
	}
	if req.DurationHours <= 0 {
		return nil, fmt.Errorf("estimation: duration must be positive, got %d hours", req.DurationHours)
	}
	season, ok := seasons[req.Season]
	if !ok {
		return nil, fmt.Errorf("estimation: unknown season %q", req.Season)
	}
	profile, ok := events[req.EventType]
	if !ok {
		return nil, fmt.Errorf("estimation: unknown event type %q", req.EventType)
	}

	guests := decimal.NewFromInt(int64(req.GuestCount))
	guestHours := guests.Mul(decimal.NewFromInt(int64(req.DurationHours)))

	pieces := lightCocktailPieces
	if req.DurationHours >= heavyCocktailHours {
		pieces = heavyCocktailPieces
	}
	pieces = max(minPiecesPerGuest, pieces+profile.fingerFoodOffset)

	return &Result{
		SoftDrinksLiters: guestHours.Mul(season.softDrinks).Mul(profile.softDrinkMul).Round(1),
		BeerLiters:       guestHours.Mul(season.beer).Mul(profile.beerMul).Round(1),
		WineBottles:      guests.Mul(profile.wine).Round(1),
		ChampagneBottles: guests.Mul(profile.champagne).Round(1),
		IceKg:            guests.Mul(season.ice).Round(1),
		FingerFoodPieces: req.GuestCount * pieces,
	}, nil
}
