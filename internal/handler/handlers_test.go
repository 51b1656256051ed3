package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catercost/internal/apierror"
	"catercost/internal/dto"
	"catercost/internal/middleware"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// Each stub embeds the service interface; calling a method the test did not
// override panics, which keeps the tests honest about what they exercise.

type stubCosting struct {
	service.CostingService
	gotTarget    decimal.Decimal
	gotQuery     dto.PlanQuery
	requestedBy  string
	dispatchErr  error
	gotSimulated dto.SimulationQuery
}

func (s *stubCosting) ScaleRecipe(_ context.Context, id uuid.UUID, target decimal.Decimal) (*dto.ScalingResponse, error) {
	s.gotTarget = target
	return &dto.ScalingResponse{RecipeID: id.String(), TargetYield: target}, nil
}

func (s *stubCosting) ProductionPlan(_ context.Context, q dto.PlanQuery) (*dto.ProductionPlanResponse, error) {
	s.gotQuery = q
	return &dto.ProductionPlanResponse{StartDate: q.StartDate, EndDate: q.EndDate}, nil
}

func (s *stubCosting) DispatchShoppingList(_ context.Context, q dto.PlanQuery, requestedBy string) (*dto.DispatchResponse, error) {
	s.gotQuery = q
	s.requestedBy = requestedBy
	if s.dispatchErr != nil {
		return nil, s.dispatchErr
	}
	return &dto.DispatchResponse{Queued: true, Recipient: "compras@example.com", ItemCount: 2}, nil
}

func (s *stubCosting) SimulateInflation(_ context.Context, q dto.SimulationQuery) (*dto.SimulationResponse, error) {
	s.gotSimulated = q
	return &dto.SimulationResponse{Category: q.Category, Impacts: []dto.RecipeImpactResponse{}}, nil
}

type stubIngredients struct {
	service.IngredientService
	created   *dto.CreateIngredientRequest
	bulk      dto.BulkPriceUpdateRequest
	changedBy string
}

func (s *stubIngredients) Create(_ context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	s.created = &req
	return &dto.IngredientResponse{ID: uuid.NewString(), Name: req.Name}, nil
}

func (s *stubIngredients) BulkPriceUpdate(_ context.Context, req dto.BulkPriceUpdateRequest, changedBy string) (*dto.BulkPriceUpdateResponse, error) {
	s.bulk = req
	s.changedBy = changedBy
	return &dto.BulkPriceUpdateResponse{Category: req.Category, UpdatedCount: 3}, nil
}

func (s *stubIngredients) Delete(_ context.Context, _ uuid.UUID) error {
	return fmt.Errorf("%w: ingredient is used by 2 recipes", service.ErrConflict)
}

type stubEvents struct {
	service.EventService
	removed [2]uuid.UUID
}

func (s *stubEvents) RemoveOrder(_ context.Context, eventID, orderID uuid.UUID) (*dto.EventResponse, error) {
	s.removed = [2]uuid.UUID{eventID, orderID}
	return &dto.EventResponse{ID: eventID.String()}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func withClaims(username, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{Username: username, Role: role})
		c.Next()
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Recipes ───────────────────────────────────────────────────────────────────

func TestScale_TargetParsing(t *testing.T) {
	costing := &stubCosting{}
	h := NewRecipesHandler(nil, costing)
	r := gin.New()
	r.GET("/v1/recipes/:id/scale", h.Scale)
	id := uuid.New()

	w := do(r, http.MethodGet, "/v1/recipes/"+id.String()+"/scale", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/recipes/"+id.String()+"/scale?target=lots", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/recipes/not-a-uuid/scale?target=2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/recipes/"+id.String()+"/scale?target=25.5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, costing.gotTarget.Equal(decimal.RequireFromString("25.5")))
}

// ── Ingredients ───────────────────────────────────────────────────────────────

func TestCreateIngredient_ValidationErrors(t *testing.T) {
	svc := &stubIngredients{}
	h := NewIngredientsHandler(svc)
	r := gin.New()
	r.POST("/v1/ingredients", h.Create)

	w := do(r, http.MethodPost, "/v1/ingredients", `{"name":"x","category":"meat","purchase_unit":"kg","usage_unit":"g","yield_factor":"1.5"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "min", body.Fields["Name"])
	assert.Equal(t, "lte", body.Fields["YieldFactor"])
	assert.Nil(t, svc.created)
}

func TestCreateIngredient_MalformedJSON(t *testing.T) {
	h := NewIngredientsHandler(&stubIngredients{})
	r := gin.New()
	r.POST("/v1/ingredients", h.Create)

	w := do(r, http.MethodPost, "/v1/ingredients", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateIngredient_Created(t *testing.T) {
	svc := &stubIngredients{}
	h := NewIngredientsHandler(svc)
	r := gin.New()
	r.POST("/v1/ingredients", h.Create)

	w := do(r, http.MethodPost, "/v1/ingredients", `{"name":"Beef","category":"meat","purchase_unit":"kg","usage_unit":"g","current_cost":"9000","conversion_ratio":"1000","yield_factor":"0.9"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.True(t, svc.created.YieldFactor.Equal(decimal.RequireFromString("0.9")))
}

func TestBulkPriceUpdate_RecordsCaller(t *testing.T) {
	svc := &stubIngredients{}
	h := NewIngredientsHandler(svc)
	r := gin.New()
	r.POST("/v1/ingredients/bulk-price-update", withClaims("maria", middleware.RolePurchasing), h.BulkPriceUpdate)

	w := do(r, http.MethodPost, "/v1/ingredients/bulk-price-update?category=dairy&percentage=12.5", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dairy", svc.bulk.Category)
	assert.InDelta(t, 12.5, svc.bulk.Percentage, 1e-9)
	assert.Equal(t, "maria", svc.changedBy)

	w = do(r, http.MethodPost, "/v1/ingredients/bulk-price-update?category=dairy&percentage=-100", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteIngredient_Conflict(t *testing.T) {
	h := NewIngredientsHandler(&stubIngredients{})
	r := gin.New()
	r.DELETE("/v1/ingredients/:id", h.Delete)

	w := do(r, http.MethodDelete, "/v1/ingredients/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "used by 2 recipes")
}

// ── Production & simulation ───────────────────────────────────────────────────

func TestPlan_PassesWindow(t *testing.T) {
	costing := &stubCosting{}
	h := NewProductionHandler(costing)
	r := gin.New()
	r.GET("/v1/production/plan", h.Plan)

	w := do(r, http.MethodGet, "/v1/production/plan?start_date=2026-03-01&end_date=2026-03-07", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.PlanQuery{StartDate: "2026-03-01", EndDate: "2026-03-07"}, costing.gotQuery)

	w = do(r, http.MethodGet, "/v1/production/plan?start_date=01/03/2026", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDispatchShoppingList(t *testing.T) {
	costing := &stubCosting{}
	h := NewProductionHandler(costing)
	r := gin.New()
	r.POST("/v1/production/shopping-list/dispatch", withClaims("chef.ana", middleware.RoleChef), h.DispatchShoppingList)

	w := do(r, http.MethodPost, "/v1/production/shopping-list/dispatch", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "chef.ana", costing.requestedBy)

	costing.dispatchErr = fmt.Errorf("%w: job queue not configured", service.ErrUnavailable)
	w = do(r, http.MethodPost, "/v1/production/shopping-list/dispatch", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestInflation_RequiresCategory(t *testing.T) {
	costing := &stubCosting{}
	h := NewProductionHandler(costing)
	r := gin.New()
	r.GET("/v1/simulation/inflation", h.Inflation)

	w := do(r, http.MethodGet, "/v1/simulation/inflation?percentage=10", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodGet, "/v1/simulation/inflation?category=Dry&percentage=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dry", costing.gotSimulated.Category)
}

// ── Events ────────────────────────────────────────────────────────────────────

func TestRemoveOrder_ParsesBothIDs(t *testing.T) {
	svc := &stubEvents{}
	h := NewEventsHandler(svc)
	r := gin.New()
	r.DELETE("/v1/events/:id/orders/:order_id", h.RemoveOrder)
	eventID, orderID := uuid.New(), uuid.New()

	w := do(r, http.MethodDelete, "/v1/events/"+eventID.String()+"/orders/bad", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/v1/events/"+eventID.String()+"/orders/"+orderID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]uuid.UUID{eventID, orderID}, svc.removed)
}
