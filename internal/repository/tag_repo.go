package repository

import (
	"context"

	"catercost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagRepository stores recipe tags and the recipe_tags links.
type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) error
	List(ctx context.Context, category string) ([]model.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByNames(ctx context.Context, names []string) ([]model.Tag, error)

	// ReplaceRecipeTags swaps every tag of a recipe for tags.
	ReplaceRecipeTags(ctx context.Context, recipeID uuid.UUID, tags []model.Tag) error
	// RecipesWithAllTags returns the recipes carrying every one of names,
	// tags preloaded, by name.
	RecipesWithAllTags(ctx context.Context, names []string, limit int) ([]model.Recipe, error)
}

type tagRepo struct{ db *gorm.DB }

func NewTagRepository(db *gorm.DB) TagRepository { return &tagRepo{db: db} }

func (r *tagRepo) Create(ctx context.Context, t *model.Tag) error {
	return translateErr(r.db.WithContext(ctx).Create(t).Error)
}

func (r *tagRepo) List(ctx context.Context, category string) ([]model.Tag, error) {
	var rows []model.Tag
	q := r.db.WithContext(ctx)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *tagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *tagRepo) FindByNames(ctx context.Context, names []string) ([]model.Tag, error) {
	var rows []model.Tag
	if len(names) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("name IN ?", names).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *tagRepo) ReplaceRecipeTags(ctx context.Context, recipeID uuid.UUID, tags []model.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.Recipe
		if err := tx.Select("id").Where("id = ?", recipeID).First(&rec).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID).Error; err != nil {
			return err
		}
		for _, t := range tags {
			if err := tx.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipeID, t.ID).Error; err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
}

func (r *tagRepo) RecipesWithAllTags(ctx context.Context, names []string, limit int) ([]model.Recipe, error) {
	var rows []model.Recipe
	if len(names) == 0 {
		return rows, nil
	}
	tagged := r.db.Table("recipe_tags").
		Select("recipe_tags.recipe_id").
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("tags.name IN ?", names).
		Group("recipe_tags.recipe_id").
		Having("COUNT(DISTINCT tags.name) = ?", len(names))
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("id IN (?)", tagged).
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
