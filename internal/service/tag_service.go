package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catercost/internal/costing"
	"catercost/internal/dto"
	"catercost/internal/model"
	"catercost/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BeverageTag marks the recipes offered as drinks.
const BeverageTag = "BEVERAGE"

// TagService manages recipe tags and the menu suggestions built on them.
type TagService interface {
	List(ctx context.Context, category string) ([]dto.TagResponse, error)
	Create(ctx context.Context, req dto.CreateTagRequest) (*dto.TagResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetRecipeTags(ctx context.Context, recipeID uuid.UUID, req dto.RecipeTagsRequest) ([]dto.TagResponse, error)

	SuggestRecipes(ctx context.Context, q dto.SuggestionQuery) ([]dto.RecipeSuggestion, error)
	SuggestBeverages(ctx context.Context, q dto.BeverageQuery) ([]dto.RecipeSuggestion, error)
}

type tagService struct {
	repo    repository.TagRepository
	catalog CatalogService
}

func NewTagService(repo repository.TagRepository, catalog CatalogService) TagService {
	return &tagService{repo: repo, catalog: catalog}
}

// NormalizeTag upper-cases a tag name and joins its words with underscores:
// "gluten free" becomes GLUTEN_FREE.
func NormalizeTag(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "_"))
}

// normalizeTags normalizes, drops empties and removes duplicates, keeping
// the first occurrence.
func normalizeTags(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = NormalizeTag(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func (s *tagService) List(ctx context.Context, category string) ([]dto.TagResponse, error) {
	rows, err := s.repo.List(ctx, strings.ToUpper(category))
	if err != nil {
		return nil, err
	}
	out := make([]dto.TagResponse, 0, len(rows))
	for i := range rows {
		out = append(out, tagToResponse(&rows[i]))
	}
	return out, nil
}

func (s *tagService) Create(ctx context.Context, req dto.CreateTagRequest) (*dto.TagResponse, error) {
	name := NormalizeTag(req.Name)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: tag name must have at least 2 characters", ErrInvalidInput)
	}
	t := &model.Tag{Name: name, Category: req.Category, Description: req.Description}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, conflict(err, "tag "+name)
	}
	resp := tagToResponse(t)
	return &resp, nil
}

func (s *tagService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "tag not found")
}

// SetRecipeTags replaces the tags of a recipe. Every name must belong to an
// existing tag.
func (s *tagService) SetRecipeTags(ctx context.Context, recipeID uuid.UUID, req dto.RecipeTagsRequest) ([]dto.TagResponse, error) {
	names := normalizeTags(req.Tags)
	tags, err := s.repo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(names) {
		known := make(map[string]bool, len(tags))
		for _, t := range tags {
			known[t.Name] = true
		}
		var unknown []string
		for _, n := range names {
			if !known[n] {
				unknown = append(unknown, n)
			}
		}
		return nil, fmt.Errorf("%w: unknown tags %s", ErrInvalidInput, strings.Join(unknown, ", "))
	}

	if err := s.repo.ReplaceRecipeTags(ctx, recipeID, tags); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			err = gorm.ErrRecordNotFound
		}
		return nil, notFound(err, "recipe not found")
	}
	out := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, tagToResponse(&tags[i]))
	}
	return out, nil
}

// SuggestRecipes returns the recipes tagged with the event type, the course
// when given and every dietary restriction.
func (s *tagService) SuggestRecipes(ctx context.Context, q dto.SuggestionQuery) ([]dto.RecipeSuggestion, error) {
	names := []string{q.EventType}
	if q.Course != "" {
		names = append(names, q.Course)
	}
	names = append(names, q.Dietary...)
	return s.suggest(ctx, normalizeTags(names), q.Limit)
}

// SuggestBeverages returns the beverages tagged with the service type.
func (s *tagService) SuggestBeverages(ctx context.Context, q dto.BeverageQuery) ([]dto.RecipeSuggestion, error) {
	return s.suggest(ctx, normalizeTags([]string{BeverageTag, q.ServiceType}), q.Limit)
}

func (s *tagService) suggest(ctx context.Context, names []string, limit int) ([]dto.RecipeSuggestion, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.repo.RecipesWithAllTags(ctx, names, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecipeSuggestion, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	eval := costing.NewEvaluator(g)
	for i := range rows {
		r := &rows[i]
		sug := dto.RecipeSuggestion{
			ID:   r.ID.String(),
			Name: r.Name,
			Kind: r.Kind,
			Tags: tagNames(r.Tags),
		}
		b, err := eval.Breakdown(r.ID)
		switch {
		case err == nil:
			sug.CostPerPortion = dto.Money(b.CostPerPortion)
			sug.SuggestedPrice = dto.Money(b.SuggestedPrice)
		case costing.IsNotFound(err):
			// created after the snapshot was taken; listed unpriced
		default:
			return nil, err
		}
		out = append(out, sug)
	}
	return out, nil
}
