package cli

import (
	"fmt"
	"io"

	"catercost/internal/costing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type impactView struct {
	Recipe        string          `json:"recipe"`
	OriginalCost  decimal.Decimal `json:"original_cost"`
	NewCost       decimal.Decimal `json:"new_cost"`
	Delta         decimal.Decimal `json:"delta"`
	DeltaPct      decimal.Decimal `json:"delta_pct"`
	AffectedItems int             `json:"affected_items"`
}

type simulationView struct {
	Category            string          `json:"category"`
	Percentage          decimal.Decimal `json:"percentage"`
	AffectedIngredients int             `json:"affected_ingredients"`
	AffectedRecipes     int             `json:"affected_recipes"`
	Impacts             []impactView    `json:"impacts"`
}

func NewSimulateCommand(opts *RootOptions) *cobra.Command {
	var (
		category   string
		percentage string
		top        int
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate recipe cost changes from a category price change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pct, err := decimal.NewFromString(percentage)
			if err != nil {
				return fmt.Errorf("--percentage: %q is not a number", percentage)
			}
			if pct.LessThanOrEqual(decimal.NewFromInt(-100)) {
				return fmt.Errorf("--percentage must be greater than -100")
			}
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			res, err := costing.NewSimulator(c.graph).Simulate(category, pct)
			if err != nil {
				return engineFailure(err)
			}

			view := simulationView{
				Category:            res.Category,
				Percentage:          res.Percentage,
				AffectedIngredients: res.AffectedIngredientCount,
				AffectedRecipes:     len(res.Impacts),
				Impacts:             []impactView{},
			}
			impacts := res.Impacts
			if top > 0 && len(impacts) > top {
				impacts = impacts[:top]
			}
			for _, im := range impacts {
				view.Impacts = append(view.Impacts, impactView{
					Recipe:        im.RecipeName,
					OriginalCost:  im.OriginalCost.Round(2),
					NewCost:       im.NewCost.Round(2),
					Delta:         im.Delta.Round(2),
					DeltaPct:      im.DeltaPct.Round(2),
					AffectedItems: im.AffectedItems,
				})
			}

			return render(cmd, opts, view, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s%%: %d ingredient(s), %d recipe(s) affected\n\n",
					view.Category, view.Percentage.String(), view.AffectedIngredients, view.AffectedRecipes)
				row(w, "RECIPE", "COST", "NEW COST", "DELTA", "DELTA %")
				for _, im := range view.Impacts {
					row(w, im.Recipe, money(im.OriginalCost), money(im.NewCost), money(im.Delta), money(im.DeltaPct))
				}
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "ingredient category")
	cmd.Flags().StringVarP(&percentage, "percentage", "p", "", "price change in percent, e.g. 10 or -5")
	cmd.Flags().IntVar(&top, "top", 0, "show only the N largest impacts (0 for all)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("percentage")
	return cmd
}
