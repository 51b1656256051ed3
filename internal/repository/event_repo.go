package repository

import (
	"context"
	"time"

	"catercost/internal/dto"
	"catercost/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventRepository persists events and their orders.
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context, filter dto.EventFilter) ([]model.Event, int64, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddOrder(ctx context.Context, o *model.EventOrder) error
	DeleteOrder(ctx context.Context, eventID, orderID uuid.UUID) error

	// ListDemand returns the events whose date falls in [from, to] and whose
	// status is one of statuses, orders preloaded, earliest first.
	ListDemand(ctx context.Context, from, to time.Time, statuses []string) ([]model.Event, error)

	UpdateOrderCostTx(tx *gorm.DB, orderID uuid.UUID, cost decimal.Decimal) error

	DB() *gorm.DB
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository { return &eventRepo{db: db} }

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return translateErr(r.db.WithContext(ctx).Omit("Orders").Create(e).Error)
}

func (r *eventRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, filter dto.EventFilter) ([]model.Event, int64, error) {
	var rows []model.Event
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Event{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != "" {
		q = q.Where("event_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("event_date <= ?", filter.To)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit)
	err := q.Order("event_date ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	return translateErr(r.db.WithContext(ctx).Omit("Orders").Save(e).Error)
}

func (r *eventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&model.EventOrder{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *eventRepo) AddOrder(ctx context.Context, o *model.EventOrder) error {
	return r.db.WithContext(ctx).Omit("Recipe").Create(o).Error
}

func (r *eventRepo) DeleteOrder(ctx context.Context, eventID, orderID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", orderID, eventID).
		Delete(&model.EventOrder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepo) ListDemand(ctx context.Context, from, to time.Time, statuses []string) ([]model.Event, error) {
	var rows []model.Event
	err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("event_date >= ? AND event_date <= ?", from, to).
		Where("status IN ?", statuses).
		Order("event_date ASC, event_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *eventRepo) UpdateOrderCostTx(tx *gorm.DB, orderID uuid.UUID, cost decimal.Decimal) error {
	return tx.Model(&model.EventOrder{}).Where("id = ?", orderID).Update("cost_at_sale", cost).Error
}

func (r *eventRepo) DB() *gorm.DB { return r.db }
