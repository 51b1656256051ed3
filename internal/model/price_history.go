package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IngredientPriceHistory records every change of an ingredient's purchase cost.
// Rows are immutable: never updated, never deleted.
type IngredientPriceHistory struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldCost      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewCost      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason       string          `gorm:"not null;default:'manual'"` // manual | bulk_update | catalog_import
	ChangedBy    *string
	CreatedAt    time.Time

	Ingredient Ingredient `gorm:"foreignKey:IngredientID"`
}

func (IngredientPriceHistory) TableName() string { return "ingredient_price_history" }

func (h *IngredientPriceHistory) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
