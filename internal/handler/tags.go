package handler

import (
	"net/http"

	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
)

type TagsHandler struct {
	svc service.TagService
}

func NewTagsHandler(svc service.TagService) *TagsHandler {
	return &TagsHandler{svc: svc}
}

// List godoc
// @Summary      List tags
// @Tags         Tags
// @Security     BearerAuth
// @Produce      json
// @Param        category  query  string  false  "EVENT_TYPE, COURSE, DIETARY or SERVICE"
// @Success      200  {array}  dto.TagResponse
// @Router       /v1/tags [get]
func (h *TagsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a tag
// @Description  Names are stored upper-case with underscores.
// @Tags         Tags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTagRequest  true  "Tag"
// @Success      201   {object}  dto.TagResponse
// @Failure      409   {object}  apierror.APIError
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/tags [post]
func (h *TagsHandler) Create(c *gin.Context) {
	var req dto.CreateTagRequest
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

// Delete godoc
// @Summary      Delete a tag
// @Description  The tag is removed from every recipe carrying it.
// @Tags         Tags
// @Security     BearerAuth
// @Param        id   path  string  true  "Tag ID"
// @Success      204
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/tags/{id} [delete]
func (h *TagsHandler) Delete(c *gin.Context) {
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

// SetRecipeTags godoc
// @Summary      Replace the tags of a recipe
// @Tags         Tags
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Recipe ID"
// @Param        body  body      dto.RecipeTagsRequest  true  "Tag names"
// @Success      200   {array}   dto.TagResponse
// @Failure      400   {object}  apierror.APIError  "Unknown tag"
// @Failure      404   {object}  apierror.APIError
// @Router       /v1/recipes/{id}/tags [put]
func (h *TagsHandler) SetRecipeTags(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecipeTagsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetRecipeTags(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestRecipes godoc
// @Summary      Suggest recipes for an event
// @Description  Recipes tagged with the event type, the course when given and every dietary tag, priced from the current catalog.
// @Tags         Suggestions
// @Security     BearerAuth
// @Produce      json
// @Param        event_type   query  string    true   "Event type tag"
// @Param        course_type  query  string    false  "Course tag"
// @Param        dietary      query  []string  false  "Dietary tags"  collectionFormat(multi)
// @Param        limit        query  int       false  "Limit"  default(20)
// @Success      200  {array}   dto.RecipeSuggestion
// @Failure      422  {object}  apierror.ValidationError
// @Router       /v1/suggestions/recipes [get]
func (h *TagsHandler) SuggestRecipes(c *gin.Context) {
	var q dto.SuggestionQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.SuggestRecipes(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestBeverages godoc
// @Summary      Suggest beverages for a service type
// @Tags         Suggestions
// @Security     BearerAuth
// @Produce      json
// @Param        service_type  query  string  true   "Service type tag"
// @Param        limit         query  int     false  "Limit"  default(10)
// @Success      200  {array}   dto.RecipeSuggestion
// @Failure      422  {object}  apierror.ValidationError
// @Router       /v1/suggestions/beverages [get]
func (h *TagsHandler) SuggestBeverages(c *gin.Context) {
	var q dto.BeverageQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.SuggestBeverages(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
