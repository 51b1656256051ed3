package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe is either a sellable dish or a sub-recipe (mise en place) used as a
// component of other recipes.
type Recipe struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"uniqueIndex;not null"`
	Description   *string
	Kind          string          `gorm:"index;not null;default:'final_dish'"`
	YieldQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	YieldUnit     string          `gorm:"not null;default:'portion'"`
	// TargetMargin is a fraction in [0,1): 0.35 means 35% of the selling price.
	TargetMargin    decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	PreparationTime int             `gorm:"not null;default:0"` // minutes
	ShelfLifeHours  int             `gorm:"not null;default:24"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []RecipeItem `gorm:"foreignKey:ParentRecipeID;constraint:OnDelete:CASCADE"`
	Tags  []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
}

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeItem is one line of a recipe. Exactly one of IngredientID and
// ChildRecipeID is set; the database enforces it with a CHECK constraint.
type RecipeItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ParentRecipeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position       int             `gorm:"not null;default:0"`
	IngredientID   *uuid.UUID      `gorm:"type:uuid;index"`
	ChildRecipeID  *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unit           string          `gorm:"not null"`
	Scalable       bool            `gorm:"not null"`
	Notes          *string

	Ingredient  *Ingredient `gorm:"foreignKey:IngredientID"`
	ChildRecipe *Recipe     `gorm:"foreignKey:ChildRecipeID"`
}

func (i *RecipeItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
