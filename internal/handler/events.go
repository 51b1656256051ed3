package handler

import (
	"net/http"

	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	svc service.EventService
}

func NewEventsHandler(svc service.EventService) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// Create godoc
// @Summary      Create an event
// @Tags         Events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateEventRequest  true  "Event"
// @Success      201   {object}  dto.EventResponse
// @Failure      409   {object}  apierror.APIError  "Duplicate event number"
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/events [post]
func (h *EventsHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
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
// @Summary      List events
// @Tags         Events
// @Security     BearerAuth
// @Produce      json
// @Param        status  query  string  false  "Status"
// @Param        from    query  string  false  "Event date from (YYYY-MM-DD)"
// @Param        to      query  string  false  "Event date to (YYYY-MM-DD)"
// @Param        page    query  int     false  "Page"   default(1)
// @Param        limit   query  int     false  "Limit"  default(20)
// @Success      200  {object}  dto.EventListResponse
// @Router       /v1/events [get]
func (h *EventsHandler) List(c *gin.Context) {
	var filter dto.EventFilter
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
// @Summary      Get an event with its orders
// @Tags         Events
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  dto.EventResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/events/{id} [get]
func (h *EventsHandler) GetByID(c *gin.Context) {
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
// @Summary      Update an event
// @Tags         Events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "Event ID"
// @Param        body  body      dto.UpdateEventRequest  true  "Fields to change"
// @Success      200   {object}  dto.EventResponse
// @Failure      404   {object}  apierror.APIError
// @Router       /v1/events/{id} [put]
func (h *EventsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete an event
// @Tags         Events
// @Security     BearerAuth
// @Param        id   path  string  true  "Event ID"
// @Success      204
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/events/{id} [delete]
func (h *EventsHandler) Delete(c *gin.Context) {
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

// AddOrder godoc
// @Summary      Add a recipe order to an event
// @Description  Freezes the unit price (suggested price unless overridden) and the cost per portion.
// @Tags         Events
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Event ID"
// @Param        body  body      dto.AddOrderRequest  true  "Order"
// @Success      201   {object}  dto.EventResponse
// @Failure      404   {object}  apierror.APIError
// @Router       /v1/events/{id}/orders [post]
func (h *EventsHandler) AddOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddOrder(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RemoveOrder godoc
// @Summary      Remove an order from an event
// @Tags         Events
// @Security     BearerAuth
// @Produce      json
// @Param        id        path      string  true  "Event ID"
// @Param        order_id  path      string  true  "Order ID"
// @Success      200  {object}  dto.EventResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/events/{id}/orders/{order_id} [delete]
func (h *EventsHandler) RemoveOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	orderID, ok := pathID(c, "order_id")
	if !ok {
		return
	}
	resp, err := h.svc.RemoveOrder(c.Request.Context(), id, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalculate godoc
// @Summary      Refresh order costs
// @Description  Recomputes cost_at_sale from current prices. Frozen unit prices are kept.
// @Tags         Events
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  dto.EventResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/events/{id}/recalculate [post]
func (h *EventsHandler) Recalculate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Recalculate(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
