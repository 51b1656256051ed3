package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Event lifecycle states.
const (
	EventProspect   = "prospect"
	EventQuoted     = "quoted"
	EventConfirmed  = "confirmed"
	EventInProgress = "in_progress"
	EventCompleted  = "completed"
	EventCancelled  = "cancelled"
)

// DemandStatuses are the event states whose orders count as production demand.
var DemandStatuses = []string{EventConfirmed, EventInProgress}

// Event is a catering engagement; its orders are the demand fed into
// production planning.
type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventNumber string    `gorm:"uniqueIndex;not null"` // EVT-2025-001
	Name        string    `gorm:"not null"`
	ClientName  string    `gorm:"not null"`
	ClientEmail *string
	EventDate   time.Time `gorm:"type:date;not null;index"`
	GuestCount  int       `gorm:"not null"`
	VenueName   *string
	Status      string `gorm:"index;not null;default:'prospect'"`
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Orders []EventOrder `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// EventOrder is one recipe sold for an event. UnitPriceFrozen and CostAtSale
// are captured when the order is placed and never follow later catalog changes
// unless the event is explicitly recalculated.
type EventOrder struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EventID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	RecipeID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPriceFrozen decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostAtSale      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes           *string
	CreatedAt       time.Time

	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
}

func (o *EventOrder) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TotalPrice is Quantity x UnitPriceFrozen.
func (o *EventOrder) TotalPrice() decimal.Decimal { return o.Quantity.Mul(o.UnitPriceFrozen) }

// TotalCost is Quantity x CostAtSale.
func (o *EventOrder) TotalCost() decimal.Decimal { return o.Quantity.Mul(o.CostAtSale) }
