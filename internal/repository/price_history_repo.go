package repository

import (
	"context"

	"catercost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.IngredientPriceHistory) error
	ListByIngredient(ctx context.Context, ingredientID uuid.UUID, page, limit int) ([]model.IngredientPriceHistory, int64, error)
}

type priceHistoryRepository struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) CreateTx(tx *gorm.DB, h *model.IngredientPriceHistory) error {
	return tx.Omit("Ingredient").Create(h).Error
}

// ListByIngredient returns paginated price-change records for one ingredient,
// newest first (append-only table, so this reflects natural insert order).
func (r *priceHistoryRepository) ListByIngredient(
	ctx context.Context,
	ingredientID uuid.UUID,
	page, limit int,
) ([]model.IngredientPriceHistory, int64, error) {
	_, limit, offset := pageBounds(page, limit)

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.IngredientPriceHistory{}).
		Where("ingredient_id = ?", ingredientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.IngredientPriceHistory
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
