package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateIngredientRequest struct {
	Name              string           `json:"name"               validate:"required,min=2,max=200"`
	SKU               *string          `json:"sku"                validate:"omitempty,max=50"`
	Category          string           `json:"category"           validate:"required,max=100"`
	PurchaseUnit      string           `json:"purchase_unit"      validate:"required,max=20"`
	UsageUnit         string           `json:"usage_unit"         validate:"required,max=20"`
	CurrentCost       *decimal.Decimal `json:"current_cost"       validate:"omitempty,gte=0"`
	ConversionRatio   *decimal.Decimal `json:"conversion_ratio"   validate:"omitempty,gt=0"`
	YieldFactor       *decimal.Decimal `json:"yield_factor"       validate:"omitempty,gt=0,lte=1"`
	ScalingLaw        string           `json:"scaling_law"        validate:"omitempty,oneof=linear logarithmic"`
	StockQuantity     decimal.Decimal  `json:"stock_quantity"     validate:"gte=0"`
	MinStockThreshold decimal.Decimal  `json:"min_stock_threshold" validate:"gte=0"`
	DefaultSupplierID *string          `json:"default_supplier_id" validate:"omitempty,uuid"`
}

type UpdateIngredientRequest struct {
	Name              *string          `json:"name"               validate:"omitempty,min=2,max=200"`
	SKU               *string          `json:"sku"                validate:"omitempty,max=50"`
	Category          *string          `json:"category"           validate:"omitempty,max=100"`
	PurchaseUnit      *string          `json:"purchase_unit"      validate:"omitempty,max=20"`
	UsageUnit         *string          `json:"usage_unit"         validate:"omitempty,max=20"`
	CurrentCost       *decimal.Decimal `json:"current_cost"       validate:"omitempty,gte=0"`
	ConversionRatio   *decimal.Decimal `json:"conversion_ratio"   validate:"omitempty,gt=0"`
	YieldFactor       *decimal.Decimal `json:"yield_factor"       validate:"omitempty,gt=0,lte=1"`
	ScalingLaw        *string          `json:"scaling_law"        validate:"omitempty,oneof=linear logarithmic"`
	StockQuantity     *decimal.Decimal `json:"stock_quantity"     validate:"omitempty,gte=0"`
	MinStockThreshold *decimal.Decimal `json:"min_stock_threshold" validate:"omitempty,gte=0"`
	// An empty string clears the default supplier.
	DefaultSupplierID *string `json:"default_supplier_id" validate:"omitempty,uuid|len=0"`
}

// BulkPriceUpdateRequest is bound from the query string of
// POST /v1/ingredients/bulk-price-update.
type BulkPriceUpdateRequest struct {
	Category   string  `form:"category"   validate:"required"`
	Percentage float64 `form:"percentage" validate:"gt=-100"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type IngredientFilter struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// IngredientSearchQuery is bound from GET /v1/search/ingredients. Q matches
// the name or the sku, case-insensitively.
type IngredientSearchQuery struct {
	Q     string `form:"q"                validate:"required,min=2"`
	Limit int    `form:"limit,default=10" validate:"min=1,max=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type IngredientResponse struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	SKU                  *string          `json:"sku"`
	Category             string           `json:"category"`
	PurchaseUnit         string           `json:"purchase_unit"`
	UsageUnit            string           `json:"usage_unit"`
	CurrentCost          *decimal.Decimal `json:"current_cost"`
	ConversionRatio      *decimal.Decimal `json:"conversion_ratio"`
	YieldFactor          *decimal.Decimal `json:"yield_factor"`
	RealCostPerUsageUnit decimal.Decimal  `json:"real_cost_per_usage_unit"`
	ScalingLaw           string           `json:"scaling_law"`
	StockQuantity        decimal.Decimal  `json:"stock_quantity"`
	MinStockThreshold    decimal.Decimal  `json:"min_stock_threshold"`
	LowStock             bool             `json:"low_stock"`
	DefaultSupplierID    *string          `json:"default_supplier_id"`
}

type IngredientListResponse struct {
	Data       []IngredientResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

type BulkPriceUpdateResponse struct {
	Category     string          `json:"category"`
	Percentage   decimal.Decimal `json:"percentage"`
	UpdatedCount int             `json:"updated_count"`
}

// PriceHistoryItem is one row in the price-history list.
type PriceHistoryItem struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	OldCost      decimal.Decimal `json:"old_cost"`
	NewCost      decimal.Decimal `json:"new_cost"`
	Reason       string          `json:"reason"`
	ChangedBy    *string         `json:"changed_by,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

// PriceHistoryListResponse is returned by GET /v1/ingredients/:id/price-history.
type PriceHistoryListResponse struct {
	Data  []PriceHistoryItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StatsResponse is returned by GET /v1/stats.
type StatsResponse struct {
	IngredientCount int                  `json:"ingredient_count"`
	RecipeCount     int                  `json:"recipe_count"`
	InventoryValue  decimal.Decimal      `json:"inventory_value"`
	LowStockCount   int                  `json:"low_stock_count"`
	LowStock        []IngredientResponse `json:"low_stock"`
}

// IngredientSearchResult is a compact row for autocomplete lookups.
type IngredientSearchResult struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	SKU                  *string          `json:"sku"`
	Category             string           `json:"category"`
	UsageUnit            string           `json:"usage_unit"`
	CurrentCost          *decimal.Decimal `json:"current_cost"`
	RealCostPerUsageUnit decimal.Decimal  `json:"real_cost_per_usage_unit"`
}
