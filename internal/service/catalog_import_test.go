package service_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"catercost/internal/catalogfile"
	"catercost/internal/config"
	"catercost/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	ingredients *stubIngredientRepo
	recipes     *stubRecipeRepo
	history     *stubPriceHistoryRepo
	importer    *service.CatalogImporter
	costing     service.CostingService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		ingredients: newStubIngredientRepo(),
		recipes:     newStubRecipeRepo(),
		history:     &stubPriceHistoryRepo{},
	}
	catalog := service.NewCatalogService(f.ingredients, f.recipes, nil, time.Minute)
	f.importer = service.NewCatalogImporter(f.ingredients, f.recipes, f.history, catalog)
	f.costing = service.NewCostingService(catalog, newStubEventRepo(), nil, nil, &config.Config{})
	return f
}

func readCatalog(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../catalogfile/testdata/catalog.yaml")
	require.NoError(t, err)
	return data
}

func TestCatalogImport_CreatesWithDerivedIDs(t *testing.T) {
	f := newImportFixture()
	file, err := catalogfile.Parse(readCatalog(t))
	require.NoError(t, err)

	sum, err := f.importer.Import(context.Background(), file, "seed")
	require.NoError(t, err)
	assert.Equal(t, service.ImportSummary{IngredientsCreated: 4, RecipesCreated: 2}, *sum)
	assert.Empty(t, f.history.rows)

	beef, err := f.ingredients.FindByIDTx(nil, catalogfile.IngredientID("Beef"))
	require.NoError(t, err)
	assert.Equal(t, "Meat", beef.Category)
	salt, err := f.ingredients.FindByIDTx(nil, catalogfile.IngredientID("Salt"))
	require.NoError(t, err)
	assert.Equal(t, "logarithmic", salt.ScalingLaw)
	assert.False(t, salt.YieldFactor.Valid)

	cost, err := f.costing.RecipeCost(context.Background(), catalogfile.RecipeID("Beef with rice"))
	require.NoError(t, err)
	assertDec(t, "730", cost.CostPerPortion)

	sauce := f.recipes.rows[catalogfile.RecipeID("Tomato sauce")]
	require.NotNil(t, sauce)
	assert.Equal(t, "sub_recipe", sauce.Kind)
	require.Len(t, sauce.Items, 2)
	assert.False(t, sauce.Items[1].Scalable)
}

func TestCatalogImport_ReimportKeepsIDsAndRecordsPriceChange(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	first, err := catalogfile.Parse(readCatalog(t))
	require.NoError(t, err)
	_, err = f.importer.Import(ctx, first, "seed")
	require.NoError(t, err)
	butcher := uuid.New()
	f.ingredients.rows[catalogfile.IngredientID("Beef")].DefaultSupplierID = &butcher

	raised := strings.Replace(string(readCatalog(t)), "cost: 8500", "cost: 9350", 1)
	second, err := catalogfile.Parse([]byte(raised))
	require.NoError(t, err)
	sum, err := f.importer.Import(ctx, second, "pat")
	require.NoError(t, err)
	assert.Equal(t, service.ImportSummary{IngredientsUpdated: 4, RecipesUpdated: 2, PriceChanges: 1}, *sum)

	assert.Len(t, f.ingredients.rows, 4)
	assert.Len(t, f.recipes.rows, 2)
	assert.Equal(t, &butcher, f.ingredients.rows[catalogfile.IngredientID("Beef")].DefaultSupplierID)
	require.Len(t, f.history.rows, 1)
	h := f.history.rows[0]
	assert.Equal(t, catalogfile.IngredientID("Beef"), h.IngredientID)
	assertDec(t, "8500", h.OldCost)
	assertDec(t, "9350", h.NewCost)
	assert.Equal(t, service.ReasonCatalogImport, h.Reason)
	require.NotNil(t, h.ChangedBy)
	assert.Equal(t, "pat", *h.ChangedBy)

	// 500 g at 11/g + 1000 g rice + 200 ml sauce = 5500 + 2000 + 300 over 10 portions.
	cost, err := f.costing.RecipeCost(ctx, catalogfile.RecipeID("Beef with rice"))
	require.NoError(t, err)
	assertDec(t, "780", cost.CostPerPortion)
}

func TestCatalogImport_MatchesExistingRowsByName(t *testing.T) {
	f := newImportFixture()
	ctx := context.Background()

	first, err := catalogfile.Parse(readCatalog(t))
	require.NoError(t, err)
	_, err = f.importer.Import(ctx, first, "seed")
	require.NoError(t, err)

	// Drop the derived-id row and re-add rice under a random id, as the API would.
	rice := *f.ingredients.rows[catalogfile.IngredientID("Rice")]
	require.NoError(t, f.ingredients.DeleteTx(nil, rice.ID))
	rice.ID = uuid.Nil
	require.NoError(t, f.ingredients.Create(ctx, &rice))
	apiID := rice.ID

	_, err = f.importer.Import(ctx, first, "seed")
	require.NoError(t, err)
	dish := f.recipes.rows[catalogfile.RecipeID("Beef with rice")]
	require.NotNil(t, dish.Items[1].IngredientID)
	assert.Equal(t, apiID, *dish.Items[1].IngredientID)
}
