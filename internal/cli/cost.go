package cli

import (
	"fmt"
	"io"

	"catercost/internal/costing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type itemCostView struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Cost     decimal.Decimal `json:"cost"`
}

type costView struct {
	Recipe         string          `json:"recipe"`
	Yield          decimal.Decimal `json:"yield"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostPerPortion decimal.Decimal `json:"cost_per_portion"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	Items          []itemCostView  `json:"items"`
}

func NewCostCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cost <recipe>",
		Short: "Show the cost breakdown and suggested price of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			r, err := c.recipe(args[0])
			if err != nil {
				return err
			}
			b, err := costing.NewEvaluator(c.graph).Breakdown(r.ID)
			if err != nil {
				return engineFailure(err)
			}

			view := costView{
				Recipe:         b.RecipeName,
				Yield:          b.YieldQuantity,
				TotalCost:      b.TotalCost.Round(2),
				CostPerPortion: b.CostPerPortion.Round(2),
				SuggestedPrice: b.SuggestedPrice.Round(2),
				Items:          make([]itemCostView, 0, len(b.Items)),
			}
			for _, it := range b.Items {
				view.Items = append(view.Items, itemCostView{
					Name: it.Name, Quantity: it.Quantity.Round(4), Unit: it.Unit, Cost: it.Cost.Round(2),
				})
			}

			return render(cmd, opts, view, func(w io.Writer) {
				fmt.Fprintf(w, "%s (yield %s %s)\n\n", b.RecipeName, qty(b.YieldQuantity), r.YieldUnit)
				row(w, "ITEM", "QTY", "UNIT", "COST")
				for _, it := range view.Items {
					row(w, it.Name, qty(it.Quantity), it.Unit, money(it.Cost))
				}
				fmt.Fprintln(w)
				row(w, "total cost", money(view.TotalCost))
				row(w, "cost per portion", money(view.CostPerPortion))
				row(w, "suggested price", money(view.SuggestedPrice))
			})
		},
	}
}
