package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type validateResult struct {
	Valid       bool       `json:"valid"`
	Ingredients int        `json:"ingredients"`
	Recipes     int        `json:"recipes"`
	Cycles      [][]string `json:"cycles,omitempty"`
}

// NewValidateCommand checks that a catalog parses and composes without cycles.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog for errors and composition cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.loadCatalog()
			if err != nil {
				return err
			}

			res := validateResult{
				Ingredients: len(c.file.Ingredients),
				Recipes:     len(c.file.Recipes),
			}
			for _, cycle := range c.graph.Cycles() {
				names := make([]string, 0, len(cycle))
				for _, id := range cycle {
					if r, ok := c.graph.Recipe(id); ok {
						names = append(names, r.Name)
					}
				}
				res.Cycles = append(res.Cycles, names)
			}
			res.Valid = len(res.Cycles) == 0

			if err := render(cmd, opts, res, func(w io.Writer) {
				if res.Valid {
					fmt.Fprintf(w, "catalog OK: %d ingredients, %d recipes\n", res.Ingredients, res.Recipes)
					return
				}
				for _, names := range res.Cycles {
					fmt.Fprintf(w, "cycle: %s\n", strings.Join(names, " -> "))
				}
			}); err != nil {
				return err
			}
			if !res.Valid {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d composition cycle(s)", len(res.Cycles))}
			}
			return nil
		},
	}
}
