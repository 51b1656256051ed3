package handler

import (
	"net/http"
	"strconv"

	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
)

type IngredientsHandler struct {
	svc service.IngredientService
}

func NewIngredientsHandler(svc service.IngredientService) *IngredientsHandler {
	return &IngredientsHandler{svc: svc}
}

// Create godoc
// @Summary      Create an ingredient
// @Tags         Ingredients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateIngredientRequest  true  "Ingredient"
// @Success      201   {object}  dto.IngredientResponse
// @Failure      409   {object}  apierror.APIError
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/ingredients [post]
func (h *IngredientsHandler) Create(c *gin.Context) {
	var req dto.CreateIngredientRequest
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
// @Summary      List ingredients
// @Tags         Ingredients
// @Security     BearerAuth
// @Produce      json
// @Param        name      query  string  false  "Name contains"
// @Param        category  query  string  false  "Category"
// @Param        page      query  int     false  "Page"   default(1)
// @Param        limit     query  int     false  "Limit"  default(20)
// @Success      200  {object}  dto.IngredientListResponse
// @Router       /v1/ingredients [get]
func (h *IngredientsHandler) List(c *gin.Context) {
	var filter dto.IngredientFilter
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
// @Summary      Get an ingredient
// @Tags         Ingredients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Ingredient ID"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/ingredients/{id} [get]
func (h *IngredientsHandler) GetByID(c *gin.Context) {
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

// Update godoc
// @Summary      Update an ingredient
// @Description  A cost change is recorded in the price history with reason "manual".
// @Tags         Ingredients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "Ingredient ID"
// @Param        body  body      dto.UpdateIngredientRequest  true  "Fields to change"
// @Success      200   {object}  dto.IngredientResponse
// @Failure      404   {object}  apierror.APIError
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/ingredients/{id} [put]
func (h *IngredientsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateIngredientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete an ingredient
// @Tags         Ingredients
// @Security     BearerAuth
// @Param        id   path  string  true  "Ingredient ID"
// @Success      204
// @Failure      404  {object}  apierror.APIError
// @Failure      409  {object}  apierror.APIError  "Referenced by a recipe"
// @Router       /v1/ingredients/{id} [delete]
func (h *IngredientsHandler) Delete(c *gin.Context) {
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

// BulkPriceUpdate godoc
// @Summary      Reprice a category
// @Description  new_cost = old_cost * (1 + percentage/100) for every priced ingredient of the category.
// @Tags         Ingredients
// @Security     BearerAuth
// @Produce      json
// @Param        category    query     string  true  "Category"
// @Param        percentage  query     number  true  "Percentage change (> -100)"
// @Success      200  {object}  dto.BulkPriceUpdateResponse
// @Failure      422  {object}  apierror.ValidationError
// @Router       /v1/ingredients/bulk-price-update [post]
func (h *IngredientsHandler) BulkPriceUpdate(c *gin.Context) {
	var req dto.BulkPriceUpdateRequest
	if !bindQuery(c, &req) {
		return
	}
	resp, err := h.svc.BulkPriceUpdate(c.Request.Context(), req, actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PriceHistory godoc
// @Summary      Ingredient price history
// @Tags         Ingredients
// @Security     BearerAuth
// @Produce      json
// @Param        id     path   string  true   "Ingredient ID"
// @Param        page   query  int     false  "Page"   default(1)
// @Param        limit  query  int     false  "Limit"  default(20)
// @Success      200  {object}  dto.PriceHistoryListResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/ingredients/{id}/price-history [get]
func (h *IngredientsHandler) PriceHistory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.PriceHistory(c.Request.Context(), id, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats godoc
// @Summary      Inventory statistics
// @Description  Catalog counts, inventory value and low-stock ingredients.
// @Tags         Ingredients
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Router       /v1/stats [get]
func (h *IngredientsHandler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Search godoc
// @Summary      Search ingredients
// @Description  Case-insensitive match on name or sku, for autocomplete.
// @Tags         Search
// @Security     BearerAuth
// @Produce      json
// @Param        q      query  string  true   "At least 2 characters"
// @Param        limit  query  int     false  "Limit"  default(10)
// @Success      200  {array}   dto.IngredientSearchResult
// @Failure      422  {object}  apierror.ValidationError
// @Router       /v1/search/ingredients [get]
func (h *IngredientsHandler) Search(c *gin.Context) {
	var q dto.IngredientSearchQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
