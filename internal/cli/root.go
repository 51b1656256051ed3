// Package cli implements the catercost command line: offline costing,
// scaling, planning and simulation over a YAML catalog.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"catercost/internal/catalogfile"
	"catercost/internal/costing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the catalog was read but failed a check
	ExitCommandError = 2 // bad flags, unreadable files
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for err; plain errors are command errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	CatalogPath string
	Format      string // text | json
	Verbose     bool

	log zerolog.Logger
}

var validFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "catercost",
		Short:         "Recipe costing and production planning over a YAML catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			level := zerolog.WarnLevel
			if opts.Verbose {
				level = zerolog.DebugLevel
			}
			opts.log = newLogger(cmd.ErrOrStderr(), level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.CatalogPath, "catalog", "c", "catalog.yaml", "catalog file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCostCommand(opts))
	cmd.AddCommand(NewScaleCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewEstimateCommand(opts))
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// catalog is a loaded catalog file with its engine graph.
type catalog struct {
	file  *catalogfile.File
	graph *costing.Graph
}

func (opts *RootOptions) loadCatalog() (*catalog, error) {
	start := time.Now()
	f, err := catalogfile.Load(opts.CatalogPath)
	if err != nil {
		return nil, err
	}
	g, err := f.Graph()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.CatalogPath, err)
	}
	opts.log.Debug().
		Str("catalog", opts.CatalogPath).
		Int("ingredients", len(f.Ingredients)).
		Int("recipes", len(f.Recipes)).
		Dur("elapsed", time.Since(start)).
		Msg("catalog loaded")
	return &catalog{file: f, graph: g}, nil
}

// recipe resolves a recipe by name.
func (c *catalog) recipe(name string) (*costing.Recipe, error) {
	r, ok := c.graph.Recipe(catalogfile.RecipeID(name))
	if !ok {
		return nil, fmt.Errorf("unknown recipe %q", name)
	}
	return r, nil
}

// engineFailure marks an engine error as a catalog check failure.
func engineFailure(err error) error {
	var ee *costing.EngineError
	if errors.As(err, &ee) {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return err
}
