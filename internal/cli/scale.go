package cli

import (
	"fmt"
	"io"

	"catercost/internal/costing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type scaledItemView struct {
	Name             string          `json:"name"`
	OriginalQuantity decimal.Decimal `json:"original_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Unit             string          `json:"unit"`
	ScalingLaw       string          `json:"scaling_law"`
	Scalable         bool            `json:"scalable"`
}

type scaleView struct {
	Recipe        string           `json:"recipe"`
	OriginalYield decimal.Decimal  `json:"original_yield"`
	TargetYield   decimal.Decimal  `json:"target_yield"`
	YieldUnit     string           `json:"yield_unit"`
	Factor        decimal.Decimal  `json:"scaling_factor"`
	Items         []scaledItemView `json:"items"`
}

func NewScaleCommand(opts *RootOptions) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "scale <recipe>",
		Short: "Project a recipe's item quantities at a new yield",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := decimal.NewFromString(target)
			if err != nil {
				return fmt.Errorf("--target: %q is not a number", target)
			}
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			r, err := c.recipe(args[0])
			if err != nil {
				return err
			}
			res, err := costing.NewScaler(c.graph).Scale(r.ID, t)
			if err != nil {
				return engineFailure(err)
			}

			view := scaleView{
				Recipe:        res.RecipeName,
				OriginalYield: res.OriginalYield,
				TargetYield:   res.TargetYield,
				YieldUnit:     res.YieldUnit,
				Factor:        res.Factor.Round(4),
				Items:         make([]scaledItemView, 0, len(res.Items)),
			}
			for _, it := range res.Items {
				view.Items = append(view.Items, scaledItemView{
					Name:             it.Name,
					OriginalQuantity: it.OriginalQuantity,
					NewQuantity:      it.NewQuantity.Round(4),
					Unit:             it.Unit,
					ScalingLaw:       string(it.ScalingLaw),
					Scalable:         it.Scalable,
				})
			}

			return render(cmd, opts, view, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %s -> %s %s (x%s)\n\n",
					view.Recipe, qty(view.OriginalYield), qty(view.TargetYield), view.YieldUnit, qty(view.Factor))
				row(w, "ITEM", "FROM", "TO", "UNIT", "LAW", "SCALABLE")
				for _, it := range view.Items {
					row(w, it.Name, qty(it.OriginalQuantity), qty(it.NewQuantity), it.Unit, it.ScalingLaw, yesNo(it.Scalable))
				}
			})
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "target yield, in the recipe's yield unit")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
