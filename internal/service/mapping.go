package service

import (
	"time"

	"catercost/internal/costing"
	"catercost/internal/dto"
	"catercost/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── model -> engine ─────────────────────────────────────────────────────────

func engineIngredient(i *model.Ingredient) costing.Ingredient {
	return costing.Ingredient{
		ID:              i.ID,
		Name:            i.Name,
		Category:        i.Category,
		UsageUnit:       i.UsageUnit,
		CurrentCost:     i.CurrentCost,
		ConversionRatio: i.ConversionRatio,
		YieldFactor:     i.YieldFactor,
		ScalingLaw:      costing.ScalingLaw(i.ScalingLaw),
		Stock:           i.StockQuantity,
		MinStock:        i.MinStockThreshold,
	}
}

func engineRecipe(r *model.Recipe) costing.Recipe {
	out := costing.Recipe{
		ID:            r.ID,
		Name:          r.Name,
		Kind:          costing.RecipeKind(r.Kind),
		YieldQuantity: r.YieldQuantity,
		YieldUnit:     r.YieldUnit,
		TargetMargin:  r.TargetMargin,
		Items:         make([]costing.RecipeItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, costing.RecipeItem{
			ID:       it.ID,
			Ref:      itemRef(it.IngredientID, it.ChildRecipeID),
			Quantity: it.Quantity,
			Unit:     it.Unit,
			Scalable: it.Scalable,
		})
	}
	return out
}

// itemRef converts the nullable column pair into an engine reference. Rows
// carrying both or neither yield the zero ref, which NewGraph rejects.
func itemRef(ingredientID, childID *uuid.UUID) costing.ItemRef {
	switch {
	case ingredientID != nil && childID == nil:
		return costing.IngredientRef(*ingredientID)
	case childID != nil && ingredientID == nil:
		return costing.SubRecipeRef(*childID)
	}
	return costing.ItemRef{}
}

func buildGraph(ingredients []model.Ingredient, recipes []model.Recipe) (*costing.Graph, error) {
	ings := make([]costing.Ingredient, len(ingredients))
	for i := range ingredients {
		ings[i] = engineIngredient(&ingredients[i])
	}
	recs := make([]costing.Recipe, len(recipes))
	for i := range recipes {
		recs[i] = engineRecipe(&recipes[i])
	}
	return costing.NewGraph(ings, recs)
}

// ── model -> dto ────────────────────────────────────────────────────────────

func nullPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func refIDs(ref costing.ItemRef) (ingredientID, childID *string) {
	if id, ok := ref.IngredientID(); ok {
		s := id.String()
		return &s, nil
	}
	if id, ok := ref.SubRecipeID(); ok {
		s := id.String()
		return nil, &s
	}
	return nil, nil
}

func ingredientToResponse(i *model.Ingredient) dto.IngredientResponse {
	ing := engineIngredient(i)
	return dto.IngredientResponse{
		ID:                   i.ID.String(),
		Name:                 i.Name,
		SKU:                  i.SKU,
		Category:             i.Category,
		PurchaseUnit:         i.PurchaseUnit,
		UsageUnit:            i.UsageUnit,
		CurrentCost:          nullPtr(i.CurrentCost),
		ConversionRatio:      nullPtr(i.ConversionRatio),
		YieldFactor:          nullPtr(i.YieldFactor),
		RealCostPerUsageUnit: dto.Qty(costing.RealCostPerUsageUnit(&ing)),
		ScalingLaw:           i.ScalingLaw,
		StockQuantity:        i.StockQuantity,
		MinStockThreshold:    i.MinStockThreshold,
		LowStock:             i.StockQuantity.LessThanOrEqual(i.MinStockThreshold),
		DefaultSupplierID:    uuidPtrString(i.DefaultSupplierID),
	}
}

func ingredientToSearchResult(i *model.Ingredient) dto.IngredientSearchResult {
	ing := engineIngredient(i)
	return dto.IngredientSearchResult{
		ID:                   i.ID.String(),
		Name:                 i.Name,
		SKU:                  i.SKU,
		Category:             i.Category,
		UsageUnit:            i.UsageUnit,
		CurrentCost:          nullPtr(i.CurrentCost),
		RealCostPerUsageUnit: dto.Qty(costing.RealCostPerUsageUnit(&ing)),
	}
}

func recipeToResponse(r *model.Recipe) dto.RecipeResponse {
	resp := dto.RecipeResponse{
		ID:              r.ID.String(),
		Name:            r.Name,
		Description:     r.Description,
		Kind:            r.Kind,
		YieldQuantity:   r.YieldQuantity,
		YieldUnit:       r.YieldUnit,
		TargetMargin:    r.TargetMargin,
		PreparationTime: r.PreparationTime,
		ShelfLifeHours:  r.ShelfLifeHours,
		Items:           make([]dto.RecipeItemResponse, 0, len(r.Items)),
		Tags:            tagNames(r.Tags),
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, dto.RecipeItemResponse{
			ID:            it.ID.String(),
			IngredientID:  uuidPtrString(it.IngredientID),
			ChildRecipeID: uuidPtrString(it.ChildRecipeID),
			Quantity:      it.Quantity,
			Unit:          it.Unit,
			Scalable:      it.Scalable,
			Notes:         it.Notes,
		})
	}
	return resp
}

const dateLayout = "2006-01-02"

func eventToResponse(e *model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:           e.ID.String(),
		EventNumber:  e.EventNumber,
		Name:         e.Name,
		ClientName:   e.ClientName,
		ClientEmail:  e.ClientEmail,
		EventDate:    e.EventDate.Format(dateLayout),
		GuestCount:   e.GuestCount,
		VenueName:    e.VenueName,
		Status:       e.Status,
		Notes:        e.Notes,
		Orders:       make([]dto.EventOrderResponse, 0, len(e.Orders)),
		TotalRevenue: decimal.Zero,
		TotalCost:    decimal.Zero,
	}
	for i := range e.Orders {
		o := &e.Orders[i]
		price, cost := o.TotalPrice(), o.TotalCost()
		resp.TotalRevenue = resp.TotalRevenue.Add(price)
		resp.TotalCost = resp.TotalCost.Add(cost)
		resp.Orders = append(resp.Orders, dto.EventOrderResponse{
			ID:              o.ID.String(),
			RecipeID:        o.RecipeID.String(),
			Quantity:        o.Quantity,
			UnitPriceFrozen: o.UnitPriceFrozen,
			CostAtSale:      o.CostAtSale,
			TotalPrice:      dto.Money(price),
			TotalCost:       dto.Money(cost),
			Notes:           o.Notes,
		})
	}
	resp.Margin = dto.Money(resp.TotalRevenue.Sub(resp.TotalCost))
	resp.TotalRevenue = dto.Money(resp.TotalRevenue)
	resp.TotalCost = dto.Money(resp.TotalCost)
	return resp
}

func requirementToResponse(r *costing.IngredientRequirement) dto.IngredientRequirementResponse {
	return dto.IngredientRequirementResponse{
		IngredientID: r.IngredientID.String(),
		Name:         r.Name,
		Category:     r.Category,
		Unit:         r.Unit,
		Required:     dto.Qty(r.Required),
		Stock:        dto.Qty(r.Stock),
		ToBuy:        dto.Qty(r.ToBuy),
		Origins:      r.Origins,
	}
}

func tagNames(tags []model.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func tagToResponse(t *model.Tag) dto.TagResponse {
	return dto.TagResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Category:    t.Category,
		Description: t.Description,
	}
}

func supplierToResponse(s *model.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		ContactName:  s.ContactName,
		Email:        s.Email,
		Phone:        s.Phone,
		Address:      s.Address,
		TaxID:        s.TaxID,
		CurrencyCode: s.CurrencyCode,
		PaymentTerms: s.PaymentTerms,
		LeadTimeDays: s.LeadTimeDays,
		MinimumOrder: s.MinimumOrder,
		Active:       s.Active,
		Notes:        s.Notes,
	}
}

// supplierProductToResponse fills the supplier and ingredient names when the
// associations are loaded.
func supplierProductToResponse(p *model.SupplierProduct, defaultSupplier *uuid.UUID) dto.SupplierProductResponse {
	resp := dto.SupplierProductResponse{
		ID:           p.ID.String(),
		SupplierID:   p.SupplierID.String(),
		IngredientID: p.IngredientID.String(),
		SupplierSKU:  p.SupplierSKU,
		Price:        p.Price,
		PackageSize:  p.PackageSize,
		PackageUnit:  p.PackageUnit,
		UnitPrice:    dto.Qty(p.UnitPrice()),
		Available:    p.Available,
		IsDefault:    defaultSupplier != nil && *defaultSupplier == p.SupplierID,
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Supplier != nil {
		resp.SupplierName = p.Supplier.Name
		resp.CurrencyCode = p.Supplier.CurrencyCode
	}
	if p.Ingredient != nil {
		resp.IngredientName = p.Ingredient.Name
		if defaultSupplier == nil {
			resp.IsDefault = p.Ingredient.DefaultSupplierID != nil && *p.Ingredient.DefaultSupplierID == p.SupplierID
		}
	}
	return resp
}
