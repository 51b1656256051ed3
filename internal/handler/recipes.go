package handler

import (
	"net/http"

	"catercost/internal/apierror"
	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RecipesHandler struct {
	svc     service.RecipeService
	costing service.CostingService
}

func NewRecipesHandler(svc service.RecipeService, costing service.CostingService) *RecipesHandler {
	return &RecipesHandler{svc: svc, costing: costing}
}

// Create godoc
// @Summary      Create a recipe
// @Description  Rejected with 409 CYCLE_DETECTED when a sub-recipe item would make the recipe contain itself.
// @Tags         Recipes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecipeRequest  true  "Recipe with items"
// @Success      201   {object}  dto.RecipeResponse
// @Failure      400   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/recipes [post]
func (h *RecipesHandler) Create(c *gin.Context) {
	var req dto.RecipeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List recipes
// @Tags         Recipes
// @Security     BearerAuth
// @Produce      json
// @Param        name   query  string  false  "Name contains"
// @Param        kind   query  string  false  "Kind"
// @Param        page   query  int     false  "Page"   default(1)
// @Param        limit  query  int     false  "Limit"  default(20)
// @Success      200  {object}  dto.RecipeListResponse
// @Router       /v1/recipes [get]
func (h *RecipesHandler) List(c *gin.Context) {
	var filter dto.RecipeFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Get a recipe
// @Tags         Recipes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Recipe ID"
// @Success      200  {object}  dto.RecipeResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/recipes/{id} [get]
func (h *RecipesHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Replace godoc
// @Summary      Replace a recipe
// @Description  Header and items are replaced atomically.
// @Tags         Recipes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Recipe ID"
// @Param        body  body      dto.RecipeRequest  true  "Recipe with items"
// @Success      200   {object}  dto.RecipeResponse
// @Failure      404   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError
// @Router       /v1/recipes/{id} [put]
func (h *RecipesHandler) Replace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecipeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Replace(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a recipe
// @Tags         Recipes
// @Security     BearerAuth
// @Param        id   path  string  true  "Recipe ID"
// @Success      204
// @Failure      404  {object}  apierror.APIError
// @Failure      409  {object}  apierror.APIError  "Used as a sub-recipe or ordered by an event"
// @Router       /v1/recipes/{id} [delete]
func (h *RecipesHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Cost godoc
// @Summary      Recipe cost
// @Description  Total cost, cost per portion and suggested price, with a per-item breakdown.
// @Tags         Costing
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Recipe ID"
// @Success      200  {object}  dto.RecipeCostResponse
// @Failure      404  {object}  apierror.APIError
// @Failure      409  {object}  apierror.APIError
// @Router       /v1/recipes/{id}/cost [get]
func (h *RecipesHandler) Cost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.costing.RecipeCost(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Scale godoc
// @Summary      Scale a recipe
// @Description  Item quantities for a target yield, applying each ingredient's scaling law.
// @Tags         Costing
// @Security     BearerAuth
// @Produce      json
// @Param        id      path      string  true  "Recipe ID"
// @Param        target  query     number  true  "Target yield"
// @Success      200  {object}  dto.ScalingResponse
// @Failure      400  {object}  apierror.APIError
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/recipes/{id}/scale [get]
func (h *RecipesHandler) Scale(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raw := c.Query("target")
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New("target is required"))
		return
	}
	target, err := decimal.NewFromString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("target must be a number"))
		return
	}
	resp, err := h.costing.ScaleRecipe(c.Request.Context(), id, target)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
