package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a purchasable raw material.
// CurrentCost is per PurchaseUnit; ConversionRatio converts one PurchaseUnit
// into UsageUnit (1000 for kg -> g). YieldFactor is the usable fraction after
// trimming, in (0,1].
type Ingredient struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name              string              `gorm:"uniqueIndex;not null"`
	SKU               *string             `gorm:"uniqueIndex"`
	Category          string              `gorm:"index;not null"`
	PurchaseUnit      string              `gorm:"not null;default:'kg'"`
	UsageUnit         string              `gorm:"not null;default:'g'"`
	CurrentCost       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	ConversionRatio   decimal.NullDecimal `gorm:"type:decimal(12,4)"`
	YieldFactor       decimal.NullDecimal `gorm:"type:decimal(5,4)"`
	ScalingLaw        string              `gorm:"not null;default:'linear'"` // linear | logarithmic
	StockQuantity     decimal.Decimal     `gorm:"type:decimal(12,3);not null"`
	MinStockThreshold decimal.Decimal     `gorm:"type:decimal(12,3);not null"`
	DefaultSupplierID *uuid.UUID          `gorm:"type:uuid;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	DefaultSupplier *Supplier `gorm:"foreignKey:DefaultSupplierID;constraint:OnDelete:SET NULL"`
}

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
