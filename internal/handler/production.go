package handler

import (
	"net/http"

	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductionHandler serves the planning views derived from event demand.
type ProductionHandler struct {
	costing service.CostingService
}

func NewProductionHandler(costing service.CostingService) *ProductionHandler {
	return &ProductionHandler{costing: costing}
}

// Plan godoc
// @Summary      Production plan
// @Description  Explodes the orders of confirmed and in-progress events in the window into ingredient and sub-recipe totals.
// @Tags         Production
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD, default today"
// @Param        end_date    query  string  false  "YYYY-MM-DD, default start + PLAN_WINDOW_DAYS"
// @Success      200  {object}  dto.ProductionPlanResponse
// @Failure      400  {object}  apierror.APIError
// @Router       /v1/production/plan [get]
func (h *ProductionHandler) Plan(c *gin.Context) {
	var q dto.PlanQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.costing.ProductionPlan(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ShoppingList godoc
// @Summary      Shopping list
// @Description  Plan ingredients whose requirement exceeds stock.
// @Tags         Production
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ShoppingListResponse
// @Router       /v1/production/shopping-list [get]
func (h *ProductionHandler) ShoppingList(c *gin.Context) {
	var q dto.PlanQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.costing.ShoppingList(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DispatchShoppingList godoc
// @Summary      Email the shopping list
// @Description  Queues an email with the shopping list to purchasing.
// @Tags         Production
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      202  {object}  dto.DispatchResponse
// @Failure      503  {object}  apierror.APIError
// @Router       /v1/production/shopping-list/dispatch [post]
func (h *ProductionHandler) DispatchShoppingList(c *gin.Context) {
	var q dto.PlanQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.costing.DispatchShoppingList(c.Request.Context(), q, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Inflation godoc
// @Summary      Simulate a category price change
// @Description  First-order impact on recipes that use the category's ingredients directly.
// @Tags         Simulation
// @Security     BearerAuth
// @Produce      json
// @Param        category    query  string  true  "Ingredient category"
// @Param        percentage  query  number  true  "Percentage change (> -100)"
// @Success      200  {object}  dto.SimulationResponse
// @Failure      422  {object}  apierror.ValidationError
// @Router       /v1/simulation/inflation [get]
func (h *ProductionHandler) Inflation(c *gin.Context) {
	var q dto.SimulationQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.costing.SimulateInflation(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
