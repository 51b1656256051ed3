package cli

import (
	"fmt"
	"io"
	"strings"

	"catercost/internal/catalogfile"
	"catercost/internal/costing"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type requirementView struct {
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Unit     string          `json:"unit"`
	Required decimal.Decimal `json:"required"`
	Stock    decimal.Decimal `json:"stock"`
	ToBuy    decimal.Decimal `json:"to_buy"`
	Origins  []string        `json:"origins"`
}

type subRecipeView struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Required decimal.Decimal `json:"required"`
	Origins  []string        `json:"origins"`
}

type unresolvedView struct {
	Origin   string          `json:"origin"`
	Quantity decimal.Decimal `json:"quantity"`
}

type planView struct {
	Ingredients  []requirementView `json:"ingredients"`
	SubRecipes   []subRecipeView   `json:"sub_recipes"`
	ShoppingList []requirementView `json:"shopping_list"`
	Origins      []string          `json:"origins"`
	Unresolved   []unresolvedView  `json:"unresolved,omitempty"`
}

func requirement(r *costing.IngredientRequirement) requirementView {
	return requirementView{
		Name:     r.Name,
		Category: r.Category,
		Unit:     r.Unit,
		Required: r.Required.Round(4),
		Stock:    r.Stock,
		ToBuy:    r.ToBuy.Round(4),
		Origins:  r.Origins,
	}
}

func NewPlanCommand(opts *RootOptions) *cobra.Command {
	var demandPath string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Explode a demand list into ingredient and sub-recipe totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			demand, err := catalogfile.LoadDemand(demandPath)
			if err != nil {
				return err
			}
			plan, err := costing.NewAggregator(c.graph, c.graph.Stock()).Explode(demand)
			if err != nil {
				return engineFailure(err)
			}
			for _, u := range plan.Unresolved {
				opts.log.Warn().Str("origin", u.Origin).Str("recipe_id", u.RecipeID.String()).Msg("demand references an unknown recipe")
			}

			view := planView{
				Ingredients:  []requirementView{},
				SubRecipes:   []subRecipeView{},
				ShoppingList: []requirementView{},
				Origins:      plan.ContributingOrigins,
			}
			for _, r := range plan.Ingredients() {
				view.Ingredients = append(view.Ingredients, requirement(r))
			}
			for _, r := range plan.ShoppingList() {
				view.ShoppingList = append(view.ShoppingList, requirement(r))
			}
			for _, s := range plan.SubRecipes() {
				view.SubRecipes = append(view.SubRecipes, subRecipeView{
					Name: s.Name, Unit: s.Unit, Required: s.Required.Round(4), Origins: s.Origins,
				})
			}
			for _, u := range plan.Unresolved {
				view.Unresolved = append(view.Unresolved, unresolvedView{Origin: u.Origin, Quantity: u.Quantity})
			}

			return render(cmd, opts, view, func(w io.Writer) {
				row(w, "INGREDIENT", "REQUIRED", "STOCK", "TO BUY", "UNIT", "FOR")
				for _, r := range view.Ingredients {
					row(w, r.Name, qty(r.Required), qty(r.Stock), qty(r.ToBuy), r.Unit, strings.Join(r.Origins, ","))
				}
				if len(view.SubRecipes) > 0 {
					fmt.Fprintln(w)
					row(w, "SUB-RECIPE", "REQUIRED", "UNIT", "FOR")
					for _, s := range view.SubRecipes {
						row(w, s.Name, qty(s.Required), s.Unit, strings.Join(s.Origins, ","))
					}
				}
				fmt.Fprintf(w, "\n%d item(s) to buy\n", len(view.ShoppingList))
				for _, u := range view.Unresolved {
					fmt.Fprintf(w, "unresolved: %s (%s)\n", u.Origin, qty(u.Quantity))
				}
			})
		},
	}
	cmd.Flags().StringVarP(&demandPath, "demand", "d", "", "demand list (YAML)")
	_ = cmd.MarkFlagRequired("demand")
	return cmd
}
