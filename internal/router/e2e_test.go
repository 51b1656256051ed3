//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"catercost/internal/config"
	"catercost/internal/dto"
	"catercost/internal/infra"
	"catercost/internal/middleware"
	"catercost/internal/router"
	"catercost/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []infra.Message
}

func (s *recordingSender) Send(msg infra.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []infra.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]infra.Message(nil), s.sent...)
}

func setupE2E(t *testing.T) (*api, *recordingSender, *infra.CircuitBreaker) {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("catercost_test"),
		tcPostgres.WithUsername("catercost"),
		tcPostgres.WithPassword("catercost"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        testSecret,
		DatabaseURL:      pgURL,
		RedisURL:         rdURL,
		PurchasingEmail:  "compras@catercost.local",
		CostCacheTTL:     time.Minute,
		SnapshotCacheTTL: time.Minute,
		SimulationTopN:   20,
		PlanWindowDays:   7,
		RateLimitRPS:     1000,
		RateLimitBurst:   1000,
		JobMaxAttempts:   3,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	sender := &recordingSender{}
	handlers := map[string]worker.Handler{
		worker.JobTypeShoppingList: worker.NewShoppingListWorker(sender).Process,
	}
	workerCtx, cancel := context.WithCancel(ctx)
	wg := worker.StartWorkerPool(workerCtx, rdb, handlers, cfg.JobMaxAttempts, 1)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	return &api{t: t, engine: router.New(cfg, db, rdb, breaker)}, sender, breaker
}

func TestE2E_ShoppingListDispatch(t *testing.T) {
	a, sender, _ := setupE2E(t)
	buyer := token(t, "pat", middleware.RolePurchasing)
	chef := token(t, "ana", middleware.RoleChef)
	sales := token(t, "lu", middleware.RoleSales)

	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	health := decode[map[string]any](t, w)
	assert.Equal(t, "connected", health["redis"])
	assert.Equal(t, "closed", health["mailer"])
	assert.EqualValues(t, 0, health["dead_letters"])

	admin := token(t, "root", middleware.RoleAdmin)
	w = a.do(http.MethodGet, "/v1/admin/dead-letters", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["total"])

	w = a.do(http.MethodPost, "/v1/ingredients", buyer, map[string]any{
		"name": "Salmon", "category": "Fish", "purchase_unit": "kg", "usage_unit": "g",
		"current_cost": "20000", "conversion_ratio": "1000", "yield_factor": "0.8",
		"stock_quantity": "500", "min_stock_threshold": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	salmon := decode[dto.IngredientResponse](t, w).ID

	w = a.do(http.MethodPost, "/v1/recipes", chef, map[string]any{
		"name": "Salmon tartare", "kind": "appetizer", "yield_quantity": "8", "yield_unit": "portion",
		"target_margin": "0.4",
		"items":         []any{map[string]any{"ingredient_id": salmon, "quantity": "800", "unit": "g"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tartare := decode[dto.RecipeResponse](t, w).ID

	// 800 g at 25 per g over 8 portions.
	w = a.do(http.MethodGet, "/v1/recipes/"+tartare+"/cost", chef, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDec(t, "2500", decode[dto.RecipeCostResponse](t, w).CostPerPortion)

	// Served from the shared cache the second time.
	w = a.do(http.MethodGet, "/v1/recipes/"+tartare+"/cost", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertDec(t, "2500", decode[dto.RecipeCostResponse](t, w).CostPerPortion)

	w = a.do(http.MethodPost, "/v1/events", sales, map[string]any{
		"event_number": "EV-E2E-1", "name": "Wedding", "client_name": "Gomez",
		"event_date": "2026-05-02", "guest_count": 16, "status": "confirmed",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decode[dto.EventResponse](t, w).ID

	w = a.do(http.MethodPost, "/v1/events/"+event+"/orders", sales, map[string]any{"recipe_id": tartare, "quantity": "16"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/production/shopping-list/dispatch?start_date=2026-05-01&end_date=2026-05-03", buyer, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	dispatch := decode[dto.DispatchResponse](t, w)
	assert.True(t, dispatch.Queued)
	assert.Equal(t, 1, dispatch.ItemCount)

	require.Eventually(t, func() bool { return len(sender.messages()) == 1 }, 10*time.Second, 100*time.Millisecond)
	msg := sender.messages()[0]
	assert.Equal(t, []string{"compras@catercost.local"}, msg.To)
	require.Len(t, msg.Attachments, 1)
	// 1600 g needed, 500 g in stock.
	assert.Contains(t, string(msg.Attachments[0].Content), "Salmon,Fish,g,1600,500,1100")
}

func TestE2E_CycleRejectedOnPostgres(t *testing.T) {
	a, _, _ := setupE2E(t)
	chef := token(t, "ana", middleware.RoleChef)

	w := a.do(http.MethodPost, "/v1/recipes", chef, map[string]any{
		"name": "Stock", "kind": "sub_recipe", "yield_quantity": "1", "yield_unit": "l", "target_margin": "0",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stock := decode[dto.RecipeResponse](t, w).ID

	w = a.do(http.MethodPost, "/v1/recipes", chef, map[string]any{
		"name": "Soup", "kind": "final_dish", "yield_quantity": "4", "yield_unit": "portion", "target_margin": "0.3",
		"items": []any{map[string]any{"child_recipe_id": stock, "quantity": "1", "unit": "l"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	soup := decode[dto.RecipeResponse](t, w).ID

	w = a.do(http.MethodPut, "/v1/recipes/"+stock, chef, map[string]any{
		"name": "Stock", "kind": "sub_recipe", "yield_quantity": "1", "yield_unit": "l", "target_margin": "0",
		"items": []any{map[string]any{"child_recipe_id": soup, "quantity": "1", "unit": "portion"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// The rejected write left the catalog untouched.
	w = a.do(http.MethodGet, "/v1/recipes/"+stock, chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.RecipeResponse](t, w).Items)
}

func TestE2E_ConcurrentCompositionWritesCannotFormCycle(t *testing.T) {
	a, _, _ := setupE2E(t)
	chef := token(t, "ana", middleware.RoleChef)

	create := func(name string) string {
		w := a.do(http.MethodPost, "/v1/recipes", chef, map[string]any{
			"name": name, "kind": "sub_recipe", "yield_quantity": "1", "yield_unit": "l", "target_margin": "0",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decode[dto.RecipeResponse](t, w).ID
	}
	for round := 0; round < 10; round++ {
		base, glaze := fmt.Sprintf("Base %d", round), fmt.Sprintf("Glaze %d", round)
		x, y := create(base), create(glaze)

		codes := make([]int, 2)
		var wg sync.WaitGroup
		for i, w := range [][3]string{{x, base, y}, {y, glaze, x}} {
			wg.Add(1)
			go func(i int, parent, name, child string) {
				defer wg.Done()
				codes[i] = a.do(http.MethodPut, "/v1/recipes/"+parent, chef, map[string]any{
					"name": name, "kind": "sub_recipe", "yield_quantity": "1", "yield_unit": "l", "target_margin": "0",
					"items": []any{map[string]any{"child_recipe_id": child, "quantity": "1", "unit": "l"}},
				}).Code
			}(i, w[0], w[1], w[2])
		}
		wg.Wait()

		assert.ElementsMatch(t, []int{http.StatusOK, http.StatusConflict}, codes, "round %d", round)
		res := a.do(http.MethodGet, "/v1/recipes/"+x+"/cost", chef, nil)
		assert.Equal(t, http.StatusOK, res.Code, res.Body.String())
	}
}
