package repository

import (
	"context"
	"strings"

	"catercost/internal/dto"
	"catercost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository persists recipes together with their ordered items.
type RecipeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	List(ctx context.Context, filter dto.RecipeFilter) ([]model.Recipe, int64, error)

	// Used inside transactions; callers pass the tx instance
	LockCompositionTx(tx *gorm.DB) error
	IsReferencedTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CreateTx(tx *gorm.DB, r *model.Recipe) error
	ReplaceTx(tx *gorm.DB, r *model.Recipe) error
	ListAllTx(tx *gorm.DB) ([]model.Recipe, error)

	DB() *gorm.DB
}

type recipeRepo struct{ db *gorm.DB }

func NewRecipeRepository(db *gorm.DB) RecipeRepository { return &recipeRepo{db: db} }

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func orderedTags(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }

func (r *recipeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var rec model.Recipe
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Preload("Tags", orderedTags).
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recipeRepo) List(ctx context.Context, filter dto.RecipeFilter) ([]model.Recipe, int64, error) {
	var rows []model.Recipe
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Recipe{})
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Tag != "" {
		q = q.Where("id IN (?)", r.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.name = ?", filter.Tag))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit)
	err := q.Preload("Items", orderedItems).
		Preload("Tags", orderedTags).
		Order("name ASC").Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

// CreateTx inserts the recipe header and its items. Item positions follow
// slice order.
func (r *recipeRepo) CreateTx(tx *gorm.DB, rec *model.Recipe) error {
	items := rec.Items
	rec.Items = nil
	if err := tx.Create(rec).Error; err != nil {
		rec.Items = items
		return translateErr(err)
	}
	rec.Items = items
	return r.insertItems(tx, rec)
}

// ReplaceTx updates the recipe header and swaps its whole item list.
func (r *recipeRepo) ReplaceTx(tx *gorm.DB, rec *model.Recipe) error {
	res := tx.Model(&model.Recipe{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
		"name":             rec.Name,
		"description":      rec.Description,
		"kind":             rec.Kind,
		"yield_quantity":   rec.YieldQuantity,
		"yield_unit":       rec.YieldUnit,
		"target_margin":    rec.TargetMargin,
		"preparation_time": rec.PreparationTime,
		"shelf_life_hours": rec.ShelfLifeHours,
	})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if err := tx.Where("parent_recipe_id = ?", rec.ID).Delete(&model.RecipeItem{}).Error; err != nil {
		return err
	}
	return r.insertItems(tx, rec)
}

func (r *recipeRepo) insertItems(tx *gorm.DB, rec *model.Recipe) error {
	if len(rec.Items) == 0 {
		return nil
	}
	for i := range rec.Items {
		rec.Items[i].ID = uuid.Nil
		rec.Items[i].ParentRecipeID = rec.ID
		rec.Items[i].Position = i
	}
	return tx.Omit("Ingredient", "ChildRecipe").Create(&rec.Items).Error
}

// LockCompositionTx blocks until no other transaction is changing recipe
// composition. The lock is released when tx ends.
func (r *recipeRepo) LockCompositionTx(tx *gorm.DB) error { return lockComposition(tx) }

func (r *recipeRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Where("parent_recipe_id = ?", id).Delete(&model.RecipeItem{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", id).Delete(&model.Recipe{})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsReferencedTx reports whether the recipe is a child of another recipe or is
// sold in an event order.
func (r *recipeRepo) IsReferencedTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	if err := tx.Model(&model.RecipeItem{}).Where("child_recipe_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := tx.Model(&model.EventOrder{}).Where("recipe_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *recipeRepo) ListAllTx(tx *gorm.DB) ([]model.Recipe, error) {
	var rows []model.Recipe
	err := tx.Preload("Items", orderedItems).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *recipeRepo) DB() *gorm.DB { return r.db }
