package service

import (
	"context"
	"errors"
	"fmt"

	"catercost/internal/costing"
	"catercost/internal/dto"
	"catercost/internal/model"
	"catercost/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeService owns recipes and their composition. Writes are validated
// against the whole prospective catalog so that no cycle is ever persisted.
type RecipeService interface {
	Create(ctx context.Context, req dto.RecipeRequest) (*dto.RecipeResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.RecipeResponse, error)
	List(ctx context.Context, filter dto.RecipeFilter) (*dto.RecipeListResponse, error)
	Replace(ctx context.Context, id uuid.UUID, req dto.RecipeRequest) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var errRecipeInUse = fmt.Errorf("%w: recipe is used by another recipe or an event order", ErrConflict)

type recipeService struct {
	repo        repository.RecipeRepository
	ingredients repository.IngredientRepository
	catalog     CatalogService
}

func NewRecipeService(
	repo repository.RecipeRepository,
	ingredients repository.IngredientRepository,
	catalog CatalogService,
) RecipeService {
	return &recipeService{repo: repo, ingredients: ingredients, catalog: catalog}
}

// recipeFromRequest builds the model, enforcing that every item references
// exactly one of an ingredient or a child recipe.
func recipeFromRequest(id uuid.UUID, req dto.RecipeRequest) (*model.Recipe, error) {
	if !costing.RecipeKind(req.Kind).Valid() {
		return nil, fmt.Errorf("%w: unknown recipe kind %q", ErrInvalidInput, req.Kind)
	}
	rec := &model.Recipe{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Kind:            req.Kind,
		YieldQuantity:   req.YieldQuantity,
		YieldUnit:       req.YieldUnit,
		TargetMargin:    req.TargetMargin,
		PreparationTime: req.PreparationTime,
		ShelfLifeHours:  req.ShelfLifeHours,
		Items:           make([]model.RecipeItem, 0, len(req.Items)),
	}
	for i, it := range req.Items {
		hasIng := it.IngredientID != nil && *it.IngredientID != ""
		hasChild := it.ChildRecipeID != nil && *it.ChildRecipeID != ""
		if hasIng == hasChild {
			return nil, fmt.Errorf("%w: item %d must reference exactly one of ingredient_id or child_recipe_id", ErrInvalidInput, i)
		}
		item := model.RecipeItem{
			Quantity: it.Quantity,
			Unit:     it.Unit,
			Scalable: true,
			Notes:    it.Notes,
		}
		if it.Scalable != nil {
			item.Scalable = *it.Scalable
		}
		if hasIng {
			ingID, err := uuid.Parse(*it.IngredientID)
			if err != nil {
				return nil, fmt.Errorf("%w: item %d has an invalid ingredient_id", ErrInvalidInput, i)
			}
			item.IngredientID = &ingID
		} else {
			childID, err := uuid.Parse(*it.ChildRecipeID)
			if err != nil {
				return nil, fmt.Errorf("%w: item %d has an invalid child_recipe_id", ErrInvalidInput, i)
			}
			item.ChildRecipeID = &childID
		}
		rec.Items = append(rec.Items, item)
	}
	return rec, nil
}

// checkComposition takes the composition lock, loads the catalog inside tx,
// substitutes rec for its stored version and rejects dangling references,
// self-references and cycles.
func (s *recipeService) checkComposition(tx *gorm.DB, rec *model.Recipe) error {
	if err := s.repo.LockCompositionTx(tx); err != nil {
		return err
	}
	ings, err := s.ingredients.ListAllTx(tx)
	if err != nil {
		return err
	}
	recs, err := s.repo.ListAllTx(tx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = *rec
			replaced = true
		}
	}
	if !replaced {
		recs = append(recs, *rec)
	}

	g, err := buildGraph(ings, recs)
	if err != nil {
		return err
	}
	for i, it := range rec.Items {
		if it.IngredientID != nil {
			if _, ok := g.Ingredient(*it.IngredientID); !ok {
				return fmt.Errorf("%w: item %d references unknown ingredient %s", ErrInvalidInput, i, it.IngredientID)
			}
		}
		if it.ChildRecipeID != nil {
			if _, ok := g.Recipe(*it.ChildRecipeID); !ok {
				return fmt.Errorf("%w: item %d references unknown recipe %s", ErrInvalidInput, i, it.ChildRecipeID)
			}
		}
	}
	return g.Validate()
}

func (s *recipeService) Create(ctx context.Context, req dto.RecipeRequest) (*dto.RecipeResponse, error) {
	rec, err := recipeFromRequest(uuid.New(), req)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.checkComposition(tx, rec); err != nil {
			return err
		}
		return conflict(s.repo.CreateTx(tx, rec), "recipe name")
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)

	resp := recipeToResponse(rec)
	return &resp, nil
}

func (s *recipeService) GetByID(ctx context.Context, id uuid.UUID) (*dto.RecipeResponse, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "recipe not found")
	}
	resp := recipeToResponse(rec)
	return &resp, nil
}

func (s *recipeService) List(ctx context.Context, filter dto.RecipeFilter) (*dto.RecipeListResponse, error) {
	filter.Tag = NormalizeTag(filter.Tag)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.RecipeResponse, 0, len(rows))
	for i := range rows {
		data = append(data, recipeToResponse(&rows[i]))
	}
	return &dto.RecipeListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.Pages(total, filter.Limit),
	}, nil
}

// Replace overwrites the recipe header and swaps its item list atomically.
func (s *recipeService) Replace(ctx context.Context, id uuid.UUID, req dto.RecipeRequest) (*dto.RecipeResponse, error) {
	rec, err := recipeFromRequest(id, req)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.checkComposition(tx, rec); err != nil {
			return err
		}
		if err := s.repo.ReplaceTx(tx, rec); err != nil {
			return notFound(conflict(err, "recipe name"), "recipe not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)

	resp := recipeToResponse(rec)
	return &resp, nil
}

// Delete removes a recipe nothing depends on. The reference check and the
// delete share one transaction under the composition lock.
func (s *recipeService) Delete(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.LockCompositionTx(tx); err != nil {
			return err
		}
		used, err := s.repo.IsReferencedTx(tx, id)
		if err != nil {
			return err
		}
		if used {
			return errRecipeInUse
		}
		return s.repo.DeleteTx(tx, id)
	})
	if errors.Is(err, repository.ErrReferenced) {
		err = errRecipeInUse
	}
	if err != nil {
		return notFound(err, "recipe not found")
	}
	s.catalog.Invalidate(ctx)
	return nil
}
