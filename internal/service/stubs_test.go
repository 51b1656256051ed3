package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"catercost/internal/dto"
	"catercost/internal/model"
	"catercost/internal/repository"
	"catercost/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repositories ──────────────────────────────────────────────────
// DB() returns nil so services run their transactional closures with a nil tx.

type stubIngredientRepo struct {
	rows    map[uuid.UUID]*model.Ingredient
	order   []uuid.UUID
	recipes *stubRecipeRepo
	listAll int
	calls   []string
}

func newStubIngredientRepo() *stubIngredientRepo {
	return &stubIngredientRepo{rows: make(map[uuid.UUID]*model.Ingredient)}
}

var _ repository.IngredientRepository = (*stubIngredientRepo)(nil)

func (r *stubIngredientRepo) Create(_ context.Context, i *model.Ingredient) error {
	for _, existing := range r.rows {
		if existing.Name == i.Name {
			return repository.ErrDuplicate
		}
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	cp := *i
	r.rows[i.ID] = &cp
	r.order = append(r.order, i.ID)
	return nil
}

func (r *stubIngredientRepo) CreateTx(_ *gorm.DB, i *model.Ingredient) error {
	return r.Create(context.Background(), i)
}

func (r *stubIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ingredient, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubIngredientRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Ingredient, error) {
	i, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *stubIngredientRepo) List(_ context.Context, filter dto.IngredientFilter) ([]model.Ingredient, int64, error) {
	var out []model.Ingredient
	for _, id := range r.order {
		if filter.Category == "" || r.rows[id].Category == filter.Category {
			out = append(out, *r.rows[id])
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubIngredientRepo) Search(_ context.Context, q string, limit int) ([]model.Ingredient, error) {
	q = strings.ToLower(q)
	var out []model.Ingredient
	for _, id := range r.order {
		i := r.rows[id]
		sku := ""
		if i.SKU != nil {
			sku = strings.ToLower(*i.SKU)
		}
		if strings.Contains(strings.ToLower(i.Name), q) || strings.Contains(sku, q) {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubIngredientRepo) ListLowStock(_ context.Context) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, id := range r.order {
		if i := r.rows[id]; i.StockQuantity.LessThanOrEqual(i.MinStockThreshold) {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *stubIngredientRepo) Update(_ context.Context, i *model.Ingredient) error {
	return r.UpdateTx(nil, i)
}

func (r *stubIngredientRepo) UpdateTx(_ *gorm.DB, i *model.Ingredient) error {
	cp := *i
	r.rows[i.ID] = &cp
	return nil
}

func (r *stubIngredientRepo) LockCompositionTx(_ *gorm.DB) error {
	r.calls = append(r.calls, "lock")
	return nil
}

func (r *stubIngredientRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.calls = append(r.calls, "delete")
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	for k, v := range r.order {
		if v == id {
			r.order = append(r.order[:k], r.order[k+1:]...)
			break
		}
	}
	return nil
}

func (r *stubIngredientRepo) IsReferencedTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	r.calls = append(r.calls, "referenced")
	if r.recipes == nil {
		return false, nil
	}
	for _, rec := range r.recipes.rows {
		for _, it := range rec.Items {
			if it.IngredientID != nil && *it.IngredientID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *stubIngredientRepo) ListAllTx(_ *gorm.DB) ([]model.Ingredient, error) {
	r.listAll++
	out := make([]model.Ingredient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.rows[id])
	}
	return out, nil
}

func (r *stubIngredientRepo) ListByCategoryTx(_ *gorm.DB, category string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, id := range r.order {
		if r.rows[id].Category == category {
			out = append(out, *r.rows[id])
		}
	}
	return out, nil
}

func (r *stubIngredientRepo) UpdateCostTx(_ *gorm.DB, id uuid.UUID, cost decimal.Decimal) error {
	i, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.CurrentCost = decimal.NewNullDecimal(cost)
	return nil
}

func (r *stubIngredientRepo) DB() *gorm.DB { return nil }

type stubRecipeRepo struct {
	rows   map[uuid.UUID]*model.Recipe
	order  []uuid.UUID
	events *stubEventRepo
	calls  []string
}

func newStubRecipeRepo() *stubRecipeRepo {
	return &stubRecipeRepo{rows: make(map[uuid.UUID]*model.Recipe)}
}

var _ repository.RecipeRepository = (*stubRecipeRepo)(nil)

func cloneRecipe(r *model.Recipe) model.Recipe {
	cp := *r
	cp.Items = append([]model.RecipeItem(nil), r.Items...)
	cp.Tags = append([]model.Tag(nil), r.Tags...)
	return cp
}

func (r *stubRecipeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Recipe, error) {
	rec, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := cloneRecipe(rec)
	return &cp, nil
}

func (r *stubRecipeRepo) List(_ context.Context, filter dto.RecipeFilter) ([]model.Recipe, int64, error) {
	var out []model.Recipe
	for _, id := range r.order {
		if filter.Kind == "" || r.rows[id].Kind == filter.Kind {
			out = append(out, cloneRecipe(r.rows[id]))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubRecipeRepo) LockCompositionTx(_ *gorm.DB) error {
	r.calls = append(r.calls, "lock")
	return nil
}

func (r *stubRecipeRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.calls = append(r.calls, "delete")
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	for k, v := range r.order {
		if v == id {
			r.order = append(r.order[:k], r.order[k+1:]...)
			break
		}
	}
	return nil
}

func (r *stubRecipeRepo) IsReferencedTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	r.calls = append(r.calls, "referenced")
	for _, rec := range r.rows {
		for _, it := range rec.Items {
			if it.ChildRecipeID != nil && *it.ChildRecipeID == id {
				return true, nil
			}
		}
	}
	if r.events != nil {
		for _, e := range r.events.rows {
			for _, o := range e.Orders {
				if o.RecipeID == id {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (r *stubRecipeRepo) assignItems(rec *model.Recipe) {
	for i := range rec.Items {
		rec.Items[i].ID = uuid.New()
		rec.Items[i].ParentRecipeID = rec.ID
		rec.Items[i].Position = i
	}
}

func (r *stubRecipeRepo) CreateTx(_ *gorm.DB, rec *model.Recipe) error {
	for _, existing := range r.rows {
		if existing.Name == rec.Name {
			return repository.ErrDuplicate
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.assignItems(rec)
	cp := cloneRecipe(rec)
	r.rows[rec.ID] = &cp
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *stubRecipeRepo) ReplaceTx(_ *gorm.DB, rec *model.Recipe) error {
	if _, ok := r.rows[rec.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.assignItems(rec)
	cp := cloneRecipe(rec)
	r.rows[rec.ID] = &cp
	return nil
}

func (r *stubRecipeRepo) ListAllTx(_ *gorm.DB) ([]model.Recipe, error) {
	out := make([]model.Recipe, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneRecipe(r.rows[id]))
	}
	return out, nil
}

func (r *stubRecipeRepo) DB() *gorm.DB { return nil }

type stubPriceHistoryRepo struct {
	rows []model.IngredientPriceHistory
}

var _ repository.PriceHistoryRepository = (*stubPriceHistoryRepo)(nil)

func (r *stubPriceHistoryRepo) CreateTx(_ *gorm.DB, h *model.IngredientPriceHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	h.CreatedAt = time.Now()
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubPriceHistoryRepo) ListByIngredient(_ context.Context, id uuid.UUID, _, _ int) ([]model.IngredientPriceHistory, int64, error) {
	var out []model.IngredientPriceHistory
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].IngredientID == id {
			out = append(out, r.rows[i])
		}
	}
	return out, int64(len(out)), nil
}

type stubEventRepo struct {
	rows map[uuid.UUID]*model.Event
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{rows: make(map[uuid.UUID]*model.Event)}
}

var _ repository.EventRepository = (*stubEventRepo)(nil)

func cloneEvent(e *model.Event) model.Event {
	cp := *e
	cp.Orders = append([]model.EventOrder(nil), e.Orders...)
	return cp
}

func (r *stubEventRepo) Create(_ context.Context, e *model.Event) error {
	for _, existing := range r.rows {
		if existing.EventNumber == e.EventNumber {
			return repository.ErrDuplicate
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := cloneEvent(e)
	r.rows[e.ID] = &cp
	return nil
}

func (r *stubEventRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Event, error) {
	e, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := cloneEvent(e)
	return &cp, nil
}

func (r *stubEventRepo) sorted() []model.Event {
	out := make([]model.Event, 0, len(r.rows))
	for _, e := range r.rows {
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].EventDate.Equal(out[b].EventDate) {
			return out[a].EventDate.Before(out[b].EventDate)
		}
		return out[a].EventNumber < out[b].EventNumber
	})
	return out
}

func (r *stubEventRepo) List(_ context.Context, filter dto.EventFilter) ([]model.Event, int64, error) {
	var out []model.Event
	for _, e := range r.sorted() {
		if filter.Status == "" || e.Status == filter.Status {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubEventRepo) Update(_ context.Context, e *model.Event) error {
	cur, ok := r.rows[e.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := cloneEvent(e)
	cp.Orders = cur.Orders
	r.rows[e.ID] = &cp
	return nil
}

func (r *stubEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *stubEventRepo) AddOrder(_ context.Context, o *model.EventOrder) error {
	e, ok := r.rows[o.EventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	e.Orders = append(e.Orders, *o)
	return nil
}

func (r *stubEventRepo) DeleteOrder(_ context.Context, eventID, orderID uuid.UUID) error {
	e, ok := r.rows[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, o := range e.Orders {
		if o.ID == orderID {
			e.Orders = append(e.Orders[:k], e.Orders[k+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubEventRepo) ListDemand(_ context.Context, from, to time.Time, statuses []string) ([]model.Event, error) {
	allowed := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	var out []model.Event
	for _, e := range r.sorted() {
		if allowed[e.Status] && !e.EventDate.Before(from) && !e.EventDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubEventRepo) UpdateOrderCostTx(_ *gorm.DB, orderID uuid.UUID, cost decimal.Decimal) error {
	for _, e := range r.rows {
		for k := range e.Orders {
			if e.Orders[k].ID == orderID {
				e.Orders[k].CostAtSale = cost
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubEventRepo) DB() *gorm.DB { return nil }

type stubSupplierRepo struct {
	rows        map[uuid.UUID]*model.Supplier
	products    []model.SupplierProduct
	ingredients *stubIngredientRepo
}

func newStubSupplierRepo(ingredients *stubIngredientRepo) *stubSupplierRepo {
	return &stubSupplierRepo{rows: make(map[uuid.UUID]*model.Supplier), ingredients: ingredients}
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	for _, existing := range r.rows {
		if existing.Name == s.Name {
			return repository.ErrDuplicate
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSupplierRepo) List(_ context.Context, filter dto.SupplierFilter) ([]model.Supplier, int64, error) {
	var out []model.Supplier
	for _, s := range r.rows {
		if !s.Active && !filter.IncludeInactive {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, int64(len(out)), nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	if _, ok := r.rows[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	s, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Active = false
	return nil
}

func (r *stubSupplierRepo) ListProducts(_ context.Context, supplierID uuid.UUID) ([]model.SupplierProduct, error) {
	var out []model.SupplierProduct
	for _, p := range r.products {
		if p.SupplierID == supplierID {
			p.Ingredient, _ = r.ingredients.FindByIDTx(nil, p.IngredientID)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Ingredient.Name < out[b].Ingredient.Name })
	return out, nil
}

func (r *stubSupplierRepo) ListOffers(_ context.Context, ingredientID uuid.UUID) ([]model.SupplierProduct, error) {
	var out []model.SupplierProduct
	for _, p := range r.products {
		if p.IngredientID == ingredientID {
			cp := *r.rows[p.SupplierID]
			p.Supplier = &cp
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubSupplierRepo) DeleteProduct(_ context.Context, supplierID, ingredientID uuid.UUID) error {
	for k, p := range r.products {
		if p.SupplierID == supplierID && p.IngredientID == ingredientID {
			r.products = append(r.products[:k], r.products[k+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubSupplierRepo) FindProductTx(_ *gorm.DB, supplierID, ingredientID uuid.UUID) (*model.SupplierProduct, error) {
	for _, p := range r.products {
		if p.SupplierID == supplierID && p.IngredientID == ingredientID {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSupplierRepo) UpsertProductTx(_ *gorm.DB, p *model.SupplierProduct) error {
	line := *p
	line.Supplier, line.Ingredient = nil, nil
	line.UpdatedAt = time.Now()
	for k := range r.products {
		if r.products[k].SupplierID == p.SupplierID && r.products[k].IngredientID == p.IngredientID {
			line.ID = r.products[k].ID
			r.products[k] = line
			return nil
		}
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	r.products = append(r.products, line)
	return nil
}

func (r *stubSupplierRepo) DB() *gorm.DB { return nil }

type stubTagRepo struct {
	rows    map[uuid.UUID]*model.Tag
	recipes *stubRecipeRepo
}

func newStubTagRepo(recipes *stubRecipeRepo) *stubTagRepo {
	return &stubTagRepo{rows: make(map[uuid.UUID]*model.Tag), recipes: recipes}
}

var _ repository.TagRepository = (*stubTagRepo)(nil)

func (r *stubTagRepo) Create(_ context.Context, t *model.Tag) error {
	for _, existing := range r.rows {
		if existing.Name == t.Name {
			return repository.ErrDuplicate
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r *stubTagRepo) List(_ context.Context, category string) ([]model.Tag, error) {
	var out []model.Tag
	for _, t := range r.rows {
		if category == "" || (t.Category != nil && *t.Category == category) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *stubTagRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	for _, rec := range r.recipes.rows {
		kept := rec.Tags[:0]
		for _, t := range rec.Tags {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		rec.Tags = kept
	}
	return nil
}

func (r *stubTagRepo) FindByNames(_ context.Context, names []string) ([]model.Tag, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []model.Tag
	for _, t := range r.rows {
		if want[t.Name] {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *stubTagRepo) ReplaceRecipeTags(_ context.Context, recipeID uuid.UUID, tags []model.Tag) error {
	rec, ok := r.recipes.rows[recipeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Tags = append([]model.Tag(nil), tags...)
	return nil
}

func (r *stubTagRepo) RecipesWithAllTags(_ context.Context, names []string, limit int) ([]model.Recipe, error) {
	var out []model.Recipe
	for _, id := range r.recipes.order {
		rec := r.recipes.rows[id]
		has := make(map[string]bool, len(rec.Tags))
		for _, t := range rec.Tags {
			has[t.Name] = true
		}
		all := true
		for _, n := range names {
			all = all && has[n]
		}
		if all {
			out = append(out, cloneRecipe(rec))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Dispatcher stub ─────────────────────────────────────────────────────────

type stubDispatcher struct {
	payloads []worker.ShoppingListPayload
	err      error
}

func (d *stubDispatcher) EnqueueShoppingList(_ context.Context, p worker.ShoppingListPayload) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.payloads = append(d.payloads, p)
	return uuid.NewString(), nil
}
