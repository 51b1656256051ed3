package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels recipes for filtering and menu suggestions. Names are stored
// upper-case with underscores: FINGER_FOOD, GLUTEN_FREE, BEVERAGE.
type Tag struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Category    *string   `gorm:"index"` // EVENT_TYPE | COURSE | DIETARY | SERVICE
	Description *string
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
