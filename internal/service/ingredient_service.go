package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catercost/internal/dto"
	"catercost/internal/model"
	"catercost/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Price-history reasons.
const (
	ReasonManual        = "manual"
	ReasonBulkUpdate    = "bulk_update"
	ReasonCatalogImport = "catalog_import"
)

// IngredientService owns the ingredient catalog and its price history.
type IngredientService interface {
	Create(ctx context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.IngredientResponse, error)
	List(ctx context.Context, filter dto.IngredientFilter) (*dto.IngredientListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateIngredientRequest, changedBy string) (*dto.IngredientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkPriceUpdate(ctx context.Context, req dto.BulkPriceUpdateRequest, changedBy string) (*dto.BulkPriceUpdateResponse, error)
	PriceHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Search(ctx context.Context, q dto.IngredientSearchQuery) ([]dto.IngredientSearchResult, error)
}

var errIngredientInUse = fmt.Errorf("%w: ingredient is used by at least one recipe", ErrConflict)

type ingredientService struct {
	repo      repository.IngredientRepository
	history   repository.PriceHistoryRepository
	suppliers repository.SupplierRepository
	catalog   CatalogService
}

func NewIngredientService(
	repo repository.IngredientRepository,
	history repository.PriceHistoryRepository,
	suppliers repository.SupplierRepository,
	catalog CatalogService,
) IngredientService {
	return &ingredientService{repo: repo, history: history, suppliers: suppliers, catalog: catalog}
}

// defaultSupplier resolves a default_supplier_id. "" clears it; only active
// suppliers can be chosen.
func (s *ingredientService) defaultSupplier(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid default_supplier_id", ErrInvalidInput)
	}
	sup, err := s.suppliers.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown supplier %s", ErrInvalidInput, id)
	}
	if err != nil {
		return nil, err
	}
	if !sup.Active {
		return nil, fmt.Errorf("%w: supplier %q is inactive", ErrInvalidInput, sup.Name)
	}
	return &id, nil
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (s *ingredientService) Create(ctx context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	law := req.ScalingLaw
	if law == "" {
		law = "linear"
	}
	ing := &model.Ingredient{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          req.Category,
		PurchaseUnit:      req.PurchaseUnit,
		UsageUnit:         req.UsageUnit,
		CurrentCost:       nullable(req.CurrentCost),
		ConversionRatio:   nullable(req.ConversionRatio),
		YieldFactor:       nullable(req.YieldFactor),
		ScalingLaw:        law,
		StockQuantity:     req.StockQuantity,
		MinStockThreshold: req.MinStockThreshold,
	}
	if req.DefaultSupplierID != nil {
		id, err := s.defaultSupplier(ctx, *req.DefaultSupplierID)
		if err != nil {
			return nil, err
		}
		ing.DefaultSupplierID = id
	}
	if err := s.repo.Create(ctx, ing); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, fmt.Errorf("%w: unknown supplier", ErrInvalidInput)
		}
		return nil, conflict(err, "ingredient name or sku")
	}
	s.catalog.Invalidate(ctx)

	resp := ingredientToResponse(ing)
	return &resp, nil
}

func (s *ingredientService) GetByID(ctx context.Context, id uuid.UUID) (*dto.IngredientResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "ingredient not found")
	}
	resp := ingredientToResponse(ing)
	return &resp, nil
}

func (s *ingredientService) List(ctx context.Context, filter dto.IngredientFilter) (*dto.IngredientListResponse, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.IngredientResponse, 0, len(rows))
	for i := range rows {
		data = append(data, ingredientToResponse(&rows[i]))
	}
	return &dto.IngredientListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.Pages(total, filter.Limit),
	}, nil
}

// Update applies a partial update. A change of current_cost is recorded in
// the price history within the same transaction.
func (s *ingredientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateIngredientRequest, changedBy string) (*dto.IngredientResponse, error) {
	var supplierID *uuid.UUID
	if req.DefaultSupplierID != nil {
		var err error
		if supplierID, err = s.defaultSupplier(ctx, *req.DefaultSupplierID); err != nil {
			return nil, err
		}
	}

	var ing *model.Ingredient
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		ing, err = s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, "ingredient not found")
		}
		oldCost := ing.CurrentCost

		if req.Name != nil {
			ing.Name = *req.Name
		}
		if req.SKU != nil {
			ing.SKU = req.SKU
		}
		if req.Category != nil {
			ing.Category = *req.Category
		}
		if req.PurchaseUnit != nil {
			ing.PurchaseUnit = *req.PurchaseUnit
		}
		if req.UsageUnit != nil {
			ing.UsageUnit = *req.UsageUnit
		}
		if req.CurrentCost != nil {
			ing.CurrentCost = decimal.NewNullDecimal(*req.CurrentCost)
		}
		if req.ConversionRatio != nil {
			ing.ConversionRatio = decimal.NewNullDecimal(*req.ConversionRatio)
		}
		if req.YieldFactor != nil {
			ing.YieldFactor = decimal.NewNullDecimal(*req.YieldFactor)
		}
		if req.ScalingLaw != nil {
			ing.ScalingLaw = *req.ScalingLaw
		}
		if req.StockQuantity != nil {
			ing.StockQuantity = *req.StockQuantity
		}
		if req.MinStockThreshold != nil {
			ing.MinStockThreshold = *req.MinStockThreshold
		}
		if req.DefaultSupplierID != nil {
			ing.DefaultSupplierID = supplierID
		}

		if err := s.repo.UpdateTx(tx, ing); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return fmt.Errorf("%w: unknown supplier", ErrInvalidInput)
			}
			return conflict(err, "ingredient name or sku")
		}
		if req.CurrentCost != nil && (!oldCost.Valid || !oldCost.Decimal.Equal(*req.CurrentCost)) {
			return s.recordPrice(tx, ing.ID, oldCost.Decimal, *req.CurrentCost, ReasonManual, changedBy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)

	resp := ingredientToResponse(ing)
	return &resp, nil
}

func (s *ingredientService) recordPrice(tx *gorm.DB, id uuid.UUID, oldCost, newCost decimal.Decimal, reason, changedBy string) error {
	h := &model.IngredientPriceHistory{
		IngredientID: id,
		OldCost:      oldCost,
		NewCost:      newCost,
		Reason:       reason,
	}
	if changedBy != "" {
		h.ChangedBy = &changedBy
	}
	return s.history.CreateTx(tx, h)
}

func (s *ingredientService) Delete(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.LockCompositionTx(tx); err != nil {
			return err
		}
		used, err := s.repo.IsReferencedTx(tx, id)
		if err != nil {
			return err
		}
		if used {
			return errIngredientInUse
		}
		return s.repo.DeleteTx(tx, id)
	})
	if errors.Is(err, repository.ErrReferenced) {
		err = errIngredientInUse
	}
	if err != nil {
		return notFound(err, "ingredient not found")
	}
	s.catalog.Invalidate(ctx)
	return nil
}

// BulkPriceUpdate multiplies the current cost of every priced ingredient in a
// category by (1 + percentage/100). Ingredients without a cost are skipped.
func (s *ingredientService) BulkPriceUpdate(ctx context.Context, req dto.BulkPriceUpdateRequest, changedBy string) (*dto.BulkPriceUpdateResponse, error) {
	if req.Percentage <= -100 {
		return nil, fmt.Errorf("%w: percentage must be greater than -100", ErrInvalidInput)
	}
	pct := decimal.NewFromFloat(req.Percentage)
	multiplier := decimal.NewFromInt(1).Add(pct.Div(decimal.NewFromInt(100)))

	updated := 0
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.ListByCategoryTx(tx, req.Category)
		if err != nil {
			return err
		}
		for _, ing := range rows {
			if !ing.CurrentCost.Valid {
				continue
			}
			newCost := ing.CurrentCost.Decimal.Mul(multiplier).Round(2)
			if err := s.repo.UpdateCostTx(tx, ing.ID, newCost); err != nil {
				return err
			}
			if err := s.recordPrice(tx, ing.ID, ing.CurrentCost.Decimal, newCost, ReasonBulkUpdate, changedBy); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated > 0 {
		s.catalog.Invalidate(ctx)
	}
	log.Info().Str("category", req.Category).Str("percentage", pct.String()).Int("updated", updated).
		Msg("ingredients: bulk price update")

	return &dto.BulkPriceUpdateResponse{Category: req.Category, Percentage: pct, UpdatedCount: updated}, nil
}

func (s *ingredientService) PriceHistory(ctx context.Context, id uuid.UUID, page, limit int) (*dto.PriceHistoryListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "ingredient not found")
	}
	rows, total, err := s.history.ListByIngredient(ctx, id, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PriceHistoryItem, 0, len(rows))
	for _, h := range rows {
		data = append(data, dto.PriceHistoryItem{
			ID:           h.ID.String(),
			IngredientID: h.IngredientID.String(),
			OldCost:      h.OldCost,
			NewCost:      h.NewCost,
			Reason:       h.Reason,
			ChangedBy:    h.ChangedBy,
			CreatedAt:    h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return &dto.PriceHistoryListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// Stats summarizes the catalog: counts, inventory value (stock x current
// cost) and the ingredients at or below their minimum stock.
func (s *ingredientService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	value := decimal.Zero
	ings := g.Ingredients()
	for _, ing := range ings {
		if ing.CurrentCost.Valid {
			value = value.Add(ing.Stock.Mul(ing.CurrentCost.Decimal))
		}
	}

	low, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	lowResp := make([]dto.IngredientResponse, 0, len(low))
	for i := range low {
		lowResp = append(lowResp, ingredientToResponse(&low[i]))
	}
	return &dto.StatsResponse{
		IngredientCount: len(ings),
		RecipeCount:     len(g.Recipes()),
		InventoryValue:  dto.Money(value),
		LowStockCount:   len(lowResp),
		LowStock:        lowResp,
	}, nil
}

func (s *ingredientService) Search(ctx context.Context, q dto.IngredientSearchQuery) ([]dto.IngredientSearchResult, error) {
	term := strings.TrimSpace(q.Q)
	if len([]rune(term)) < 2 {
		return nil, fmt.Errorf("%w: search term must have at least 2 characters", ErrInvalidInput)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.repo.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IngredientSearchResult, 0, len(rows))
	for i := range rows {
		out = append(out, ingredientToSearchResult(&rows[i]))
	}
	return out, nil
}
