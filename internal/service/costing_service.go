package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"catercost/internal/config"
	"catercost/internal/costing"
	"catercost/internal/dto"
	"catercost/internal/metrics"
	"catercost/internal/model"
	"catercost/internal/repository"
	"catercost/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CostingService exposes the engine over the persisted catalog.
type CostingService interface {
	RecipeCost(ctx context.Context, recipeID uuid.UUID) (*dto.RecipeCostResponse, error)
	ScaleRecipe(ctx context.Context, recipeID uuid.UUID, target decimal.Decimal) (*dto.ScalingResponse, error)
	ProductionPlan(ctx context.Context, q dto.PlanQuery) (*dto.ProductionPlanResponse, error)
	ShoppingList(ctx context.Context, q dto.PlanQuery) (*dto.ShoppingListResponse, error)
	DispatchShoppingList(ctx context.Context, q dto.PlanQuery, requestedBy string) (*dto.DispatchResponse, error)
	SimulateInflation(ctx context.Context, q dto.SimulationQuery) (*dto.SimulationResponse, error)
}

// ShoppingListDispatcher queues the shopping-list email job.
type ShoppingListDispatcher interface {
	EnqueueShoppingList(ctx context.Context, payload worker.ShoppingListPayload) (string, error)
}

type costingService struct {
	catalog    CatalogService
	events     repository.EventRepository
	rdb        *redis.Client // optional cost cache
	dispatcher ShoppingListDispatcher
	cfg        *config.Config
	now        func() time.Time
}

func NewCostingService(
	catalog CatalogService,
	events repository.EventRepository,
	rdb *redis.Client,
	dispatcher ShoppingListDispatcher,
	cfg *config.Config,
) CostingService {
	return &costingService{
		catalog:    catalog,
		events:     events,
		rdb:        rdb,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ── Recipe cost ─────────────────────────────────────────────────────────────

func costCacheKey(version string, id uuid.UUID) string {
	return fmt.Sprintf("recipe_cost:v%s:%s", version, id)
}

func (s *costingService) RecipeCost(ctx context.Context, recipeID uuid.UUID) (*dto.RecipeCostResponse, error) {
	version := s.catalog.Version(ctx)
	cacheable := s.rdb != nil && !strings.HasPrefix(version, "local-")
	key := costCacheKey(version, recipeID)

	if cacheable {
		raw, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached dto.RecipeCostResponse
			if json.Unmarshal(raw, &cached) == nil {
				metrics.CacheHit("recipe_cost")
				return &cached, nil
			}
		case errors.Is(err, redis.Nil):
			metrics.CacheMiss("recipe_cost")
		default:
			metrics.CacheError("recipe_cost")
		}
	}

	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	b, err := costing.NewEvaluator(g).Breakdown(recipeID)
	metrics.ObserveEngine("cost", start, err)
	if err != nil {
		return nil, err
	}

	resp := costBreakdownToResponse(b)
	if cacheable {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.cfg.CostCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("costing: failed to cache recipe cost")
			}
		}
	}
	return resp, nil
}

func costBreakdownToResponse(b *costing.CostBreakdown) *dto.RecipeCostResponse {
	resp := &dto.RecipeCostResponse{
		RecipeID:       b.RecipeID.String(),
		RecipeName:     b.RecipeName,
		YieldQuantity:  b.YieldQuantity,
		TotalCost:      dto.Money(b.TotalCost),
		CostPerPortion: dto.Money(b.CostPerPortion),
		SuggestedPrice: dto.Money(b.SuggestedPrice),
		Items:          make([]dto.ItemCostResponse, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		ingID, childID := refIDs(it.Ref)
		resp.Items = append(resp.Items, dto.ItemCostResponse{
			ItemID:        it.ItemID.String(),
			IngredientID:  ingID,
			ChildRecipeID: childID,
			Name:          it.Name,
			Quantity:      it.Quantity,
			Unit:          it.Unit,
			Cost:          dto.Money(it.Cost),
		})
	}
	return resp
}

// ── Scaling ─────────────────────────────────────────────────────────────────

func (s *costingService) ScaleRecipe(ctx context.Context, recipeID uuid.UUID, target decimal.Decimal) (*dto.ScalingResponse, error) {
	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := costing.NewScaler(g).Scale(recipeID, target)
	metrics.ObserveEngine("scale", start, err)
	if err != nil {
		return nil, err
	}

	resp := &dto.ScalingResponse{
		RecipeID:      res.RecipeID.String(),
		RecipeName:    res.RecipeName,
		OriginalYield: res.OriginalYield,
		TargetYield:   res.TargetYield,
		YieldUnit:     res.YieldUnit,
		ScalingFactor: dto.Qty(res.Factor),
		Items:         make([]dto.ScaledItemResponse, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		ingID, childID := refIDs(it.Ref)
		resp.Items = append(resp.Items, dto.ScaledItemResponse{
			ItemID:           it.ItemID.String(),
			IngredientID:     ingID,
			ChildRecipeID:    childID,
			Name:             it.Name,
			OriginalQuantity: it.OriginalQuantity,
			NewQuantity:      dto.Qty(it.NewQuantity),
			Unit:             it.Unit,
			ScalingLaw:       string(it.ScalingLaw),
			Scalable:         it.Scalable,
		})
	}
	return resp, nil
}

// ── Production plan ─────────────────────────────────────────────────────────

// window resolves the planning window: start defaults to today, end to
// start + PLAN_WINDOW_DAYS.
func (s *costingService) window(q dto.PlanQuery) (time.Time, time.Time, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if q.StartDate != "" {
		t, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		start = t
	}
	end := start.AddDate(0, 0, s.cfg.PlanWindowDays)
	if q.EndDate != "" {
		t, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return start, end, nil
}

type planResult struct {
	start, end time.Time
	plan       *costing.ProductionPlan
	events     []model.Event
}

func (s *costingService) explode(ctx context.Context, q dto.PlanQuery) (*planResult, error) {
	start, end, err := s.window(q)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListDemand(ctx, start, end, model.DemandStatuses)
	if err != nil {
		return nil, err
	}
	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var demands []costing.DemandRequest
	for _, e := range events {
		for _, o := range e.Orders {
			demands = append(demands, costing.DemandRequest{
				RecipeID: o.RecipeID,
				Quantity: o.Quantity,
				Origin:   e.EventNumber,
			})
		}
	}

	t0 := time.Now()
	plan, err := costing.NewAggregator(g, g.Stock()).Explode(demands)
	metrics.ObserveEngine("explode", t0, err)
	if err != nil {
		return nil, err
	}
	return &planResult{start: start, end: end, plan: plan, events: events}, nil
}

func (s *costingService) ProductionPlan(ctx context.Context, q dto.PlanQuery) (*dto.ProductionPlanResponse, error) {
	r, err := s.explode(ctx, q)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductionPlanResponse{
		StartDate:          r.start.Format(dateLayout),
		EndDate:            r.end.Format(dateLayout),
		Ingredients:        []dto.IngredientRequirementResponse{},
		SubRecipes:         []dto.SubRecipeRequirementResponse{},
		ContributingEvents: []dto.ContributingEvent{},
	}
	for _, req := range r.plan.Ingredients() {
		resp.Ingredients = append(resp.Ingredients, requirementToResponse(req))
	}
	for _, req := range r.plan.SubRecipes() {
		resp.SubRecipes = append(resp.SubRecipes, dto.SubRecipeRequirementResponse{
			RecipeID: req.RecipeID.String(),
			Name:     req.Name,
			Unit:     req.Unit,
			Required: dto.Qty(req.Required),
			Origins:  req.Origins,
		})
	}

	byNumber := make(map[string]*model.Event, len(r.events))
	for i := range r.events {
		byNumber[r.events[i].EventNumber] = &r.events[i]
	}
	for _, origin := range r.plan.ContributingOrigins {
		e, ok := byNumber[origin]
		if !ok {
			continue
		}
		resp.ContributingEvents = append(resp.ContributingEvents, dto.ContributingEvent{
			ID:          e.ID.String(),
			EventNumber: e.EventNumber,
			Name:        e.Name,
			EventDate:   e.EventDate.Format(dateLayout),
			GuestCount:  e.GuestCount,
		})
	}

	seen := make(map[uuid.UUID]bool)
	for _, d := range r.plan.Unresolved {
		if !seen[d.RecipeID] {
			seen[d.RecipeID] = true
			resp.UnresolvedRecipes = append(resp.UnresolvedRecipes, d.RecipeID.String())
		}
	}
	return resp, nil
}

func (s *costingService) ShoppingList(ctx context.Context, q dto.PlanQuery) (*dto.ShoppingListResponse, error) {
	r, err := s.explode(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &dto.ShoppingListResponse{
		StartDate: r.start.Format(dateLayout),
		EndDate:   r.end.Format(dateLayout),
		Items:     []dto.IngredientRequirementResponse{},
	}
	for _, req := range r.plan.ShoppingList() {
		resp.Items = append(resp.Items, requirementToResponse(req))
	}
	return resp, nil
}

func (s *costingService) DispatchShoppingList(ctx context.Context, q dto.PlanQuery, requestedBy string) (*dto.DispatchResponse, error) {
	if s.dispatcher == nil {
		return nil, fmt.Errorf("%w: job queue is not configured", ErrUnavailable)
	}
	list, err := s.ShoppingList(ctx, q)
	if err != nil {
		return nil, err
	}

	payload := worker.ShoppingListPayload{
		Recipient:   s.cfg.PurchasingEmail,
		StartDate:   list.StartDate,
		EndDate:     list.EndDate,
		RequestedBy: requestedBy,
		Lines:       make([]worker.ShoppingListLine, 0, len(list.Items)),
	}
	for _, it := range list.Items {
		payload.Lines = append(payload.Lines, worker.ShoppingListLine{
			Name:     it.Name,
			Category: it.Category,
			Unit:     it.Unit,
			Required: it.Required.String(),
			Stock:    it.Stock.String(),
			ToBuy:    it.ToBuy.String(),
		})
	}
	jobID, err := s.dispatcher.EnqueueShoppingList(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	log.Info().Str("job_id", jobID).Int("items", len(payload.Lines)).Msg("costing: shopping list queued")
	return &dto.DispatchResponse{Queued: true, Recipient: payload.Recipient, ItemCount: len(payload.Lines)}, nil
}

// ── Inflation simulation ────────────────────────────────────────────────────

func (s *costingService) SimulateInflation(ctx context.Context, q dto.SimulationQuery) (*dto.SimulationResponse, error) {
	if q.Percentage <= -100 {
		return nil, fmt.Errorf("%w: percentage must be greater than -100", ErrInvalidInput)
	}
	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pct := decimal.NewFromFloat(q.Percentage)

	start := time.Now()
	res, err := costing.NewSimulator(g).Simulate(q.Category, pct)
	metrics.ObserveEngine("simulate", start, err)
	if err != nil {
		return nil, err
	}

	impacts := res.Impacts
	if n := s.cfg.SimulationTopN; n > 0 && len(impacts) > n {
		impacts = impacts[:n]
	}
	resp := &dto.SimulationResponse{
		Category:                res.Category,
		Percentage:              res.Percentage,
		AffectedIngredientCount: res.AffectedIngredientCount,
		AffectedRecipeCount:     len(res.Impacts),
		Impacts:                 make([]dto.RecipeImpactResponse, 0, len(impacts)),
	}
	for _, im := range impacts {
		resp.Impacts = append(resp.Impacts, dto.RecipeImpactResponse{
			RecipeID:      im.RecipeID.String(),
			RecipeName:    im.RecipeName,
			OriginalCost:  dto.Money(im.OriginalCost),
			NewCost:       dto.Money(im.NewCost),
			Delta:         dto.Money(im.Delta),
			DeltaPct:      dto.Money(im.DeltaPct),
			AffectedItems: im.AffectedItems,
		})
	}
	return resp, nil
}
