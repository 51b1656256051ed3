// Command seedcatalog loads a YAML catalog into the database.
//
//	seedcatalog --file catalog.yaml [--by seed]
//
// Entries are matched by name, so running it twice is harmless. Cost changes
// land in the price history as catalog_import.
package main

import (
	"context"
	"os"
	"time"

	"catercost/internal/catalogfile"
	"catercost/internal/config"
	"catercost/internal/infra"
	"catercost/internal/repository"
	"catercost/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		path       string
		importedBy string
		noRedis    bool
	)
	cmd := &cobra.Command{
		Use:           "seedcatalog",
		Short:         "Import a YAML catalog into the database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), path, importedBy, noRedis)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "catalog.yaml", "catalog file")
	cmd.Flags().StringVar(&importedBy, "by", "seed", "recorded as the author of price changes")
	cmd.Flags().BoolVar(&noRedis, "no-redis", false, "skip bumping the shared catalog version")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(ctx context.Context, path, importedBy string, noRedis bool) error {
	file, err := catalogfile.Load(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	// Without redis running servers only see the import once their local
	// snapshot expires.
	var rdb *redis.Client
	if !noRedis {
		if rdb, err = infra.NewRedis(cfg.RedisURL); err != nil {
			log.Warn().Err(err).Msg("redis unavailable; catalog version not bumped")
			rdb = nil
		}
	}

	ingredients := repository.NewIngredientRepository(db)
	recipes := repository.NewRecipeRepository(db)
	catalog := service.NewCatalogService(ingredients, recipes, rdb, cfg.SnapshotCacheTTL)
	importer := service.NewCatalogImporter(ingredients, recipes, repository.NewPriceHistoryRepository(db), catalog)

	sum, err := importer.Import(ctx, file, importedBy)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", path).
		Int("ingredients", sum.IngredientsCreated+sum.IngredientsUpdated).
		Int("recipes", sum.RecipesCreated+sum.RecipesUpdated).
		Msg("catalog seeded")
	return nil
}
