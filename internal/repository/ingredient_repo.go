package repository

import (
	"context"
	"strings"

	"catercost/internal/dto"
	"catercost/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IngredientRepository defines the data access contract for ingredients.
// Services depend on this interface, not on the concrete GORM implementation.
type IngredientRepository interface {
	Create(ctx context.Context, i *model.Ingredient) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ingredient, error)
	List(ctx context.Context, filter dto.IngredientFilter) ([]model.Ingredient, int64, error)
	ListLowStock(ctx context.Context) ([]model.Ingredient, error)
	Update(ctx context.Context, i *model.Ingredient) error
	// Search matches q against name and SKU, case-insensitively.
	Search(ctx context.Context, q string, limit int) ([]model.Ingredient, error)

	// Used inside transactions; callers pass the tx instance
	LockCompositionTx(tx *gorm.DB) error
	IsReferencedTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CreateTx(tx *gorm.DB, i *model.Ingredient) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Ingredient, error)
	ListAllTx(tx *gorm.DB) ([]model.Ingredient, error)
	ListByCategoryTx(tx *gorm.DB, category string) ([]model.Ingredient, error)
	UpdateCostTx(tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error
	UpdateTx(tx *gorm.DB, i *model.Ingredient) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type ingredientRepo struct{ db *gorm.DB }

func NewIngredientRepository(db *gorm.DB) IngredientRepository { return &ingredientRepo{db: db} }

func (r *ingredientRepo) Create(ctx context.Context, i *model.Ingredient) error {
	return translateErr(r.db.WithContext(ctx).Create(i).Error)
}

func (r *ingredientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *ingredientRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Ingredient, error) {
	var i model.Ingredient
	if err := tx.Where("id = ?", id).First(&i).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ingredientRepo) List(ctx context.Context, filter dto.IngredientFilter) ([]model.Ingredient, int64, error) {
	var rows []model.Ingredient
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Ingredient{})
	if filter.Name != "" {
		// LOWER/LIKE instead of ILIKE so the query also runs on SQLite
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit)
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *ingredientRepo) Search(ctx context.Context, q string, limit int) ([]model.Ingredient, error) {
	var rows []model.Ingredient
	like := "%" + strings.ToLower(q) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ?", like, like).
		Order("name ASC").Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *ingredientRepo) ListLowStock(ctx context.Context) ([]model.Ingredient, error) {
	var rows []model.Ingredient
	err := r.db.WithContext(ctx).
		Where("stock_quantity <= min_stock_threshold").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ingredientRepo) Update(ctx context.Context, i *model.Ingredient) error {
	return r.UpdateTx(r.db.WithContext(ctx), i)
}

func (r *ingredientRepo) CreateTx(tx *gorm.DB, i *model.Ingredient) error {
	return translateErr(tx.Create(i).Error)
}

func (r *ingredientRepo) UpdateTx(tx *gorm.DB, i *model.Ingredient) error {
	return translateErr(tx.Save(i).Error)
}

func (r *ingredientRepo) LockCompositionTx(tx *gorm.DB) error { return lockComposition(tx) }

func (r *ingredientRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Where("id = ?", id).Delete(&model.Ingredient{})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsReferencedTx reports whether any recipe item uses the ingredient.
func (r *ingredientRepo) IsReferencedTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.RecipeItem{}).Where("ingredient_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *ingredientRepo) ListAllTx(tx *gorm.DB) ([]model.Ingredient, error) {
	var rows []model.Ingredient
	err := tx.Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *ingredientRepo) ListByCategoryTx(tx *gorm.DB, category string) ([]model.Ingredient, error) {
	var rows []model.Ingredient
	err := tx.Where("category = ?", category).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *ingredientRepo) UpdateCostTx(tx *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	return tx.Model(&model.Ingredient{}).Where("id = ?", id).Update("current_cost", cost).Error
}

func (r *ingredientRepo) DB() *gorm.DB { return r.db }
