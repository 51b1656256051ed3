package cli

import (
	"fmt"
	"io"

	"catercost/internal/estimation"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type estimateView struct {
	Guests           int             `json:"guests"`
	Hours            int             `json:"hours"`
	Season           string          `json:"season"`
	EventType        string          `json:"event_type"`
	SoftDrinksLiters decimal.Decimal `json:"soft_drinks_liters"`
	WineBottles      decimal.Decimal `json:"wine_bottles"`
	ChampagneBottles decimal.Decimal `json:"champagne_bottles"`
	BeerLiters       decimal.Decimal `json:"beer_liters"`
	IceKg            decimal.Decimal `json:"ice_kg"`
	FingerFoodPieces int             `json:"finger_food_pieces"`
}

// NewEstimateCommand projects drinks, ice and finger food for an event. It
// does not read the catalog.
func NewEstimateCommand(opts *RootOptions) *cobra.Command {
	var (
		guests, hours     int
		season, eventType string
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate beverages, ice and finger food for an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := estimation.Estimate(estimation.Request{
				GuestCount:    guests,
				DurationHours: hours,
				Season:        estimation.Season(season),
				EventType:     estimation.EventType(eventType),
			})
			if err != nil {
				return err
			}
			view := estimateView{
				Guests:           guests,
				Hours:            hours,
				Season:           season,
				EventType:        eventType,
				SoftDrinksLiters: res.SoftDrinksLiters,
				WineBottles:      res.WineBottles,
				ChampagneBottles: res.ChampagneBottles,
				BeerLiters:       res.BeerLiters,
				IceKg:            res.IceKg,
				FingerFoodPieces: res.FingerFoodPieces,
			}
			return render(cmd, opts, view, func(w io.Writer) {
				fmt.Fprintf(w, "%s in %s: %d guest(s), %d hour(s)\n\n", eventType, season, guests, hours)
				row(w, "ITEM", "QUANTITY", "UNIT")
				row(w, "soft drinks", view.SoftDrinksLiters, "l")
				row(w, "beer", view.BeerLiters, "l")
				row(w, "wine", view.WineBottles, "bottle")
				row(w, "champagne", view.ChampagneBottles, "bottle")
				row(w, "ice", view.IceKg, "kg")
				row(w, "finger food", view.FingerFoodPieces, "piece")
			})
		},
	}
	cmd.Flags().IntVar(&guests, "guests", 0, "number of guests")
	cmd.Flags().IntVar(&hours, "hours", 0, "event duration in hours (1-24)")
	cmd.Flags().StringVar(&season, "season", "", "summer|winter|spring|autumn")
	cmd.Flags().StringVar(&eventType, "event-type", "", "wedding|corporate|birthday")
	_ = cmd.MarkFlagRequired("guests")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("season")
	_ = cmd.MarkFlagRequired("event-type")
	return cmd
}
