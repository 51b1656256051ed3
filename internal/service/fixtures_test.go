package service_test

import (
	"context"
	"testing"
	"time"

	"catercost/internal/config"
	"catercost/internal/model"
	"catercost/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }

// fixture is a small catering catalog:
//
//	beef    8500/kg, yield 0.85 -> 10 per g   (Meat,    stock 300)
//	rice    2000/kg             ->  2 per g   (Dry,     stock 5000)
//	tomato  3000/kg             ->  3 per g   (Produce, stock 0)
//
//	sauce  (sub_recipe, 1000 ml)  = 500 g tomato                  -> 1.5 per ml
//	dish   (final_dish, 10 ptn)   = 500 g beef, 1000 g rice, 200 ml sauce -> 730 per portion
//	side   (final_dish, 4 ptn)    = 400 g rice                    -> 200 per portion
type fixture struct {
	ingredients *stubIngredientRepo
	recipes     *stubRecipeRepo
	history     *stubPriceHistoryRepo
	events      *stubEventRepo
	suppliers   *stubSupplierRepo
	tags        *stubTagRepo
	dispatcher  *stubDispatcher
	cfg         *config.Config

	catalog    service.CatalogService
	costingSvc service.CostingService
	ingredient service.IngredientService
	recipe     service.RecipeService
	event      service.EventService
	supplier   service.SupplierService
	tag        service.TagService

	beef, rice, tomato uuid.UUID
	sauce, dish, side  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		ingredients: newStubIngredientRepo(),
		recipes:     newStubRecipeRepo(),
		history:     &stubPriceHistoryRepo{},
		events:      newStubEventRepo(),
		dispatcher:  &stubDispatcher{},
		cfg: &config.Config{
			PurchasingEmail: "compras@catercost.local",
			PlanWindowDays:  7,
			SimulationTopN:  20,
			CostCacheTTL:    time.Minute,
		},
	}
	f.ingredients.recipes = f.recipes
	f.recipes.events = f.events
	f.suppliers = newStubSupplierRepo(f.ingredients)
	f.tags = newStubTagRepo(f.recipes)

	addIng := func(name, category, cost, yield, stock, min string) uuid.UUID {
		ing := &model.Ingredient{
			Name:              name,
			Category:          category,
			PurchaseUnit:      "kg",
			UsageUnit:         "g",
			CurrentCost:       nd(cost),
			ConversionRatio:   nd("1000"),
			YieldFactor:       nd(yield),
			ScalingLaw:        "linear",
			StockQuantity:     dec(stock),
			MinStockThreshold: dec(min),
		}
		require.NoError(t, f.ingredients.Create(ctx, ing))
		return ing.ID
	}
	f.beef = addIng("beef", "Meat", "8500", "0.85", "300", "500")
	f.rice = addIng("rice", "Dry", "2000", "1", "5000", "1000")
	f.tomato = addIng("tomato", "Produce", "3000", "1", "0", "0")

	addRecipe := func(name, kind, yield, unit, margin string, items ...model.RecipeItem) uuid.UUID {
		rec := &model.Recipe{
			Name:          name,
			Kind:          kind,
			YieldQuantity: dec(yield),
			YieldUnit:     unit,
			TargetMargin:  dec(margin),
			Items:         items,
		}
		require.NoError(t, f.recipes.CreateTx(nil, rec))
		return rec.ID
	}
	f.sauce = addRecipe("sauce", "sub_recipe", "1000", "ml", "0",
		model.RecipeItem{IngredientID: idPtr(f.tomato), Quantity: dec("500"), Unit: "g", Scalable: true})
	f.dish = addRecipe("dish", "final_dish", "10", "portion", "0.3",
		model.RecipeItem{IngredientID: idPtr(f.beef), Quantity: dec("500"), Unit: "g", Scalable: true},
		model.RecipeItem{IngredientID: idPtr(f.rice), Quantity: dec("1000"), Unit: "g", Scalable: true},
		model.RecipeItem{ChildRecipeID: idPtr(f.sauce), Quantity: dec("200"), Unit: "ml", Scalable: true})
	f.side = addRecipe("side", "final_dish", "4", "portion", "0.25",
		model.RecipeItem{IngredientID: idPtr(f.rice), Quantity: dec("400"), Unit: "g", Scalable: true})

	f.catalog = service.NewCatalogService(f.ingredients, f.recipes, nil, time.Minute)
	f.costingSvc = service.NewCostingService(f.catalog, f.events, nil, f.dispatcher, f.cfg)
	f.ingredient = service.NewIngredientService(f.ingredients, f.history, f.suppliers, f.catalog)
	f.recipe = service.NewRecipeService(f.recipes, f.ingredients, f.catalog)
	f.event = service.NewEventService(f.events, f.catalog)
	f.supplier = service.NewSupplierService(f.suppliers, f.ingredients)
	f.tag = service.NewTagService(f.tags, f.catalog)
	return f
}

// addEvent stores an event with orders directly in the repository.
func (f *fixture) addEvent(t *testing.T, number, status, date string, orders ...model.EventOrder) uuid.UUID {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	e := &model.Event{
		EventNumber: number,
		Name:        "Event " + number,
		ClientName:  "ACME",
		EventDate:   d,
		GuestCount:  50,
		Status:      status,
	}
	require.NoError(t, f.events.Create(context.Background(), e))
	for _, o := range orders {
		o.EventID = e.ID
		require.NoError(t, f.events.AddOrder(context.Background(), &o))
	}
	return e.ID
}

func order(recipeID uuid.UUID, qty string) model.EventOrder {
	return model.EventOrder{RecipeID: recipeID, Quantity: dec(qty)}
}
