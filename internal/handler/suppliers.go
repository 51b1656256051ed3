package handler

import (
	"net/http"

	"catercost/internal/apierror"
	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/gin-gonic/gin"
)

const maxPriceListBytes = 2 << 20

type SuppliersHandler struct {
	svc service.SupplierService
}

func NewSuppliersHandler(svc service.SupplierService) *SuppliersHandler {
	return &SuppliersHandler{svc: svc}
}

// Create godoc
// @Summary      Create a supplier
// @Tags         Suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSupplierRequest  true  "Supplier"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      409   {object}  apierror.APIError
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/suppliers [post]
func (h *SuppliersHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
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
// @Summary      List suppliers
// @Tags         Suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        search            query  string  false  "Name or contact contains"
// @Param        include_inactive  query  bool    false  "Include deactivated suppliers"
// @Param        page              query  int     false  "Page"   default(1)
// @Param        limit             query  int     false  "Limit"  default(20)
// @Success      200  {object}  dto.SupplierListResponse
// @Router       /v1/suppliers [get]
func (h *SuppliersHandler) List(c *gin.Context) {
	var filter dto.SupplierFilter
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
// @Summary      Get a supplier
// @Tags         Suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  dto.SupplierResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/suppliers/{id} [get]
func (h *SuppliersHandler) GetByID(c *gin.Context) {
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
// @Summary      Update a supplier
// @Tags         Suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "Supplier ID"
// @Param        body  body      dto.UpdateSupplierRequest  true  "Fields to change"
// @Success      200   {object}  dto.SupplierResponse
// @Failure      404   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError
// @Router       /v1/suppliers/{id} [put]
func (h *SuppliersHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSupplierRequest
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

// Deactivate godoc
// @Summary      Deactivate a supplier
// @Description  Suppliers are never deleted; their price lists stay readable.
// @Tags         Suppliers
// @Security     BearerAuth
// @Param        id   path  string  true  "Supplier ID"
// @Success      204
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/suppliers/{id} [delete]
func (h *SuppliersHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PriceList godoc
// @Summary      Supplier price list
// @Tags         Suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {array}   dto.SupplierProductResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/suppliers/{id}/prices [get]
func (h *SuppliersHandler) PriceList(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.PriceList(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetPrice godoc
// @Summary      Set a price-list line
// @Description  Creates the line or overwrites the supplier's line for the same ingredient.
// @Tags         Suppliers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Supplier ID"
// @Param        body  body      dto.SupplierPriceRequest  true  "Price-list line"
// @Success      200   {object}  dto.SupplierProductResponse
// @Failure      400   {object}  apierror.APIError
// @Failure      404   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError  "Supplier is inactive"
// @Router       /v1/suppliers/{id}/prices [put]
func (h *SuppliersHandler) SetPrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SupplierPriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetPrice(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemovePrice godoc
// @Summary      Remove a price-list line
// @Tags         Suppliers
// @Security     BearerAuth
// @Param        id             path  string  true  "Supplier ID"
// @Param        ingredient_id  path  string  true  "Ingredient ID"
// @Success      204
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/suppliers/{id}/prices/{ingredient_id} [delete]
func (h *SuppliersHandler) RemovePrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := pathID(c, "ingredient_id")
	if !ok {
		return
	}
	if err := h.svc.RemovePrice(c.Request.Context(), id, ingredientID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportPriceList godoc
// @Summary      Upload a price list
// @Description  CSV with header ingredient,supplier_sku,price,package_size,package_unit. The ingredient column holds an ingredient sku or name. Bad rows are reported and skipped.
// @Tags         Suppliers
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Supplier ID"
// @Param        file  formData  file    true  "Price list CSV"
// @Success      200   {object}  dto.PriceListImportResponse
// @Failure      400   {object}  apierror.APIError
// @Failure      404   {object}  apierror.APIError
// @Router       /v1/suppliers/{id}/prices/import [post]
func (h *SuppliersHandler) ImportPriceList(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPriceListBytes)
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("file is required"))
		return
	}
	defer file.Close()

	resp, err := h.svc.ImportPriceList(c.Request.Context(), id, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Offers godoc
// @Summary      Compare supplier offers for an ingredient
// @Description  Active suppliers only: available lines first, then cheapest unit price.
// @Tags         Suppliers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Ingredient ID"
// @Success      200  {array}   dto.SupplierProductResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/ingredients/{id}/offers [get]
func (h *SuppliersHandler) Offers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Offers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
