package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Supplier is a vendor the purchasing team buys ingredients from. Suppliers
// are deactivated, never deleted, so that price lists and default-supplier
// links stay readable.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"uniqueIndex;not null"`
	ContactName  *string
	Email        *string
	Phone        *string
	Address      *string
	TaxID        *string `gorm:"uniqueIndex"` // CUIT / RUC
	CurrencyCode string  `gorm:"size:3;not null;default:'ARS'"`
	PaymentTerms *string
	LeadTimeDays int             `gorm:"not null;default:1"`
	MinimumOrder decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active       bool            `gorm:"not null;default:true"`
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Products []SupplierProduct `gorm:"foreignKey:SupplierID"`
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SupplierProduct is one line of a supplier's price list: the price of a
// package of PackageSize PackageUnit of an ingredient. A supplier lists each
// ingredient at most once.
type SupplierProduct struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_ingredient"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_ingredient;index"`
	SupplierSKU  *string
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PackageSize  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PackageUnit  string          `gorm:"not null"`
	Available    bool            `gorm:"not null;default:true"`
	Notes        *string
	UpdatedAt    time.Time

	Supplier   *Supplier   `gorm:"foreignKey:SupplierID"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

func (p *SupplierProduct) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// UnitPrice is the price of one PackageUnit.
func (p *SupplierProduct) UnitPrice() decimal.Decimal {
	if !p.PackageSize.IsPositive() {
		return decimal.Zero
	}
	return p.Price.Div(p.PackageSize)
}
