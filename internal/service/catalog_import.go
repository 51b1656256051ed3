package service

import (
	"context"
	"fmt"

	"catercost/internal/catalogfile"
	"catercost/internal/model"
	"catercost/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ImportSummary counts what a catalog import changed.
type ImportSummary struct {
	IngredientsCreated int
	IngredientsUpdated int
	RecipesCreated     int
	RecipesUpdated     int
	PriceChanges       int
}

// CatalogImporter upserts a catalog file by name. Entries that exist keep
// their id; new ones get the id derived from their name. Cost changes are
// recorded in the price history with ReasonCatalogImport.
type CatalogImporter struct {
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	history     repository.PriceHistoryRepository
	catalog     CatalogService
}

func NewCatalogImporter(
	ingredients repository.IngredientRepository,
	recipes repository.RecipeRepository,
	history repository.PriceHistoryRepository,
	catalog CatalogService,
) *CatalogImporter {
	return &CatalogImporter{ingredients: ingredients, recipes: recipes, history: history, catalog: catalog}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Import applies f in one transaction.
func (im *CatalogImporter) Import(ctx context.Context, f *catalogfile.File, importedBy string) (*ImportSummary, error) {
	order, err := f.DependencyOrder()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sum := &ImportSummary{}
	err = runTx(ctx, im.ingredients.DB(), func(tx *gorm.DB) error {
		if err := im.recipes.LockCompositionTx(tx); err != nil {
			return err
		}
		ingIDs, err := im.importIngredients(tx, f.Ingredients, importedBy, sum)
		if err != nil {
			return err
		}
		return im.importRecipes(tx, order, ingIDs, sum)
	})
	if err != nil {
		return nil, err
	}
	im.catalog.Invalidate(ctx)

	log.Info().
		Int("ingredients_created", sum.IngredientsCreated).
		Int("ingredients_updated", sum.IngredientsUpdated).
		Int("recipes_created", sum.RecipesCreated).
		Int("recipes_updated", sum.RecipesUpdated).
		Int("price_changes", sum.PriceChanges).
		Msg("catalog import applied")
	return sum, nil
}

func (im *CatalogImporter) importIngredients(tx *gorm.DB, defs []catalogfile.IngredientDef, importedBy string, sum *ImportSummary) (map[string]uuid.UUID, error) {
	rows, err := im.ingredients.ListAllTx(tx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]model.Ingredient, len(rows))
	for _, r := range rows {
		existing[r.Name] = r
	}

	ids := make(map[string]uuid.UUID, len(defs))
	for _, d := range defs {
		ing := model.Ingredient{
			Name:              d.Name,
			SKU:               strPtr(d.SKU),
			Category:          d.Category,
			PurchaseUnit:      d.PurchaseUnit,
			UsageUnit:         d.UsageUnit,
			CurrentCost:       d.Cost.Null(),
			ConversionRatio:   d.ConversionRatio.Null(),
			YieldFactor:       d.YieldFactor.Null(),
			ScalingLaw:        d.ScalingLaw,
			StockQuantity:     d.Stock.Decimal,
			MinStockThreshold: d.MinStock.Decimal,
		}
		if ing.ScalingLaw == "" {
			ing.ScalingLaw = "linear"
		}

		old, found := existing[d.Name]
		if !found {
			ing.ID = catalogfile.IngredientID(d.Name)
			if err := im.ingredients.CreateTx(tx, &ing); err != nil {
				return nil, conflict(err, fmt.Sprintf("ingredient %q", d.Name))
			}
			ids[d.Name] = ing.ID
			sum.IngredientsCreated++
			continue
		}

		// The catalog file does not carry supplier links.
		ing.ID = old.ID
		ing.CreatedAt = old.CreatedAt
		ing.DefaultSupplierID = old.DefaultSupplierID
		if err := im.ingredients.UpdateTx(tx, &ing); err != nil {
			return nil, conflict(err, fmt.Sprintf("ingredient %q", d.Name))
		}
		ids[d.Name] = ing.ID
		sum.IngredientsUpdated++

		if ing.CurrentCost.Valid && (!old.CurrentCost.Valid || !old.CurrentCost.Decimal.Equal(ing.CurrentCost.Decimal)) {
			h := &model.IngredientPriceHistory{
				IngredientID: ing.ID,
				OldCost:      old.CurrentCost.Decimal,
				NewCost:      ing.CurrentCost.Decimal,
				Reason:       ReasonCatalogImport,
				ChangedBy:    strPtr(importedBy),
			}
			if err := im.history.CreateTx(tx, h); err != nil {
				return nil, err
			}
			sum.PriceChanges++
		}
	}
	return ids, nil
}

// importRecipes expects order to list sub-recipes ahead of their users.
func (im *CatalogImporter) importRecipes(tx *gorm.DB, order []catalogfile.RecipeDef, ingIDs map[string]uuid.UUID, sum *ImportSummary) error {
	rows, err := im.recipes.ListAllTx(tx)
	if err != nil {
		return err
	}
	existing := make(map[string]uuid.UUID, len(rows))
	for _, r := range rows {
		existing[r.Name] = r.ID
	}

	recIDs := make(map[string]uuid.UUID, len(order))
	for _, d := range order {
		rec := &model.Recipe{
			Name:            d.Name,
			Description:     strPtr(d.Description),
			Kind:            string(d.RecipeKind()),
			YieldQuantity:   d.Yield.Decimal,
			YieldUnit:       d.YieldUnit,
			TargetMargin:    d.Margin(),
			PreparationTime: d.PreparationTime,
			ShelfLifeHours:  d.ShelfLifeHours,
		}
		for _, it := range d.Items {
			item := model.RecipeItem{
				Quantity: it.Quantity.Decimal,
				Unit:     it.Unit,
				Scalable: it.IsScalable(),
				Notes:    strPtr(it.Notes),
			}
			if it.Ingredient != "" {
				id := ingIDs[it.Ingredient]
				item.IngredientID = &id
			} else {
				id := recIDs[it.Recipe]
				item.ChildRecipeID = &id
			}
			rec.Items = append(rec.Items, item)
		}

		if id, found := existing[d.Name]; found {
			rec.ID = id
			if err := im.recipes.ReplaceTx(tx, rec); err != nil {
				return conflict(err, fmt.Sprintf("recipe %q", d.Name))
			}
			sum.RecipesUpdated++
		} else {
			rec.ID = catalogfile.RecipeID(d.Name)
			if err := im.recipes.CreateTx(tx, rec); err != nil {
				return conflict(err, fmt.Sprintf("recipe %q", d.Name))
			}
			sum.RecipesCreated++
		}
		recIDs[d.Name] = rec.ID
	}
	return nil
}
