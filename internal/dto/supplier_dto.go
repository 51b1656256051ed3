package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name         string           `json:"name"           validate:"required,min=2,max=200"`
	ContactName  *string          `json:"contact_name"   validate:"omitempty,max=200"`
	Email        *string          `json:"email"          validate:"omitempty,email"`
	Phone        *string          `json:"phone"          validate:"omitempty,max=50"`
	Address      *string          `json:"address"`
	TaxID        *string          `json:"tax_id"         validate:"omitempty,max=50"`
	CurrencyCode string           `json:"currency_code"  validate:"omitempty,len=3,uppercase"`
	PaymentTerms *string          `json:"payment_terms"  validate:"omitempty,max=200"`
	LeadTimeDays *int             `json:"lead_time_days" validate:"omitempty,gte=0"`
	MinimumOrder *decimal.Decimal `json:"minimum_order"  validate:"omitempty,gte=0"`
	Notes        *string          `json:"notes"`
}

type UpdateSupplierRequest struct {
	Name         *string          `json:"name"           validate:"omitempty,min=2,max=200"`
	ContactName  *string          `json:"contact_name"   validate:"omitempty,max=200"`
	Email        *string          `json:"email"          validate:"omitempty,email"`
	Phone        *string          `json:"phone"          validate:"omitempty,max=50"`
	Address      *string          `json:"address"`
	TaxID        *string          `json:"tax_id"         validate:"omitempty,max=50"`
	CurrencyCode *string          `json:"currency_code"  validate:"omitempty,len=3,uppercase"`
	PaymentTerms *string          `json:"payment_terms"  validate:"omitempty,max=200"`
	LeadTimeDays *int             `json:"lead_time_days" validate:"omitempty,gte=0"`
	MinimumOrder *decimal.Decimal `json:"minimum_order"  validate:"omitempty,gte=0"`
	Active       *bool            `json:"active"`
	Notes        *string          `json:"notes"`
}

// SupplierPriceRequest sets one line of a supplier's price list. An existing
// line for the same ingredient is overwritten.
type SupplierPriceRequest struct {
	IngredientID string          `json:"ingredient_id" validate:"required,uuid"`
	SupplierSKU  *string         `json:"supplier_sku"  validate:"omitempty,max=100"`
	Price        decimal.Decimal `json:"price"         validate:"gte=0"`
	PackageSize  decimal.Decimal `json:"package_size"  validate:"gt=0"`
	PackageUnit  string          `json:"package_unit"  validate:"required,max=20"`
	Available    *bool           `json:"available"`
	Notes        *string         `json:"notes"         validate:"omitempty,max=500"`
}

type SupplierFilter struct {
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page,default=1"   validate:"min=1"`
	Limit           int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ContactName  *string         `json:"contact_name"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	Address      *string         `json:"address"`
	TaxID        *string         `json:"tax_id"`
	CurrencyCode string          `json:"currency_code"`
	PaymentTerms *string         `json:"payment_terms"`
	LeadTimeDays int             `json:"lead_time_days"`
	MinimumOrder decimal.Decimal `json:"minimum_order"`
	Active       bool            `json:"active"`
	Notes        *string         `json:"notes"`
}

type SupplierListResponse struct {
	Data       []SupplierResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// SupplierProductResponse is one price-list line. UnitPrice is Price divided
// by PackageSize, in the supplier's currency per PackageUnit.
type SupplierProductResponse struct {
	ID             string          `json:"id"`
	SupplierID     string          `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name,omitempty"`
	CurrencyCode   string          `json:"currency_code,omitempty"`
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name,omitempty"`
	SupplierSKU    *string         `json:"supplier_sku"`
	Price          decimal.Decimal `json:"price"`
	PackageSize    decimal.Decimal `json:"package_size"`
	PackageUnit    string          `json:"package_unit"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Available      bool            `json:"available"`
	IsDefault      bool            `json:"is_default"`
	UpdatedAt      string          `json:"updated_at"`
}

// PriceListImportResponse summarizes a CSV price-list upload. Rows listed in
// Errors were skipped; every other row was applied.
type PriceListImportResponse struct {
	TotalRows int                 `json:"total_rows"`
	Created   int                 `json:"created"`
	Updated   int                 `json:"updated"`
	Failed    int                 `json:"failed"`
	Errors    []PriceListErrorRow `json:"errors"`
}

type PriceListErrorRow struct {
	Row        int    `json:"row"`
	Ingredient string `json:"ingredient,omitempty"`
	ErrorCode  string `json:"error_code"` // ROW_FORMAT|INGREDIENT_MISSING|INGREDIENT_UNKNOWN|PRICE_NOT_NUMBER|PRICE_NEGATIVE|PACKAGE_INVALID|DUPLICATE_ROW
	Reason     string `json:"reason"`
}
