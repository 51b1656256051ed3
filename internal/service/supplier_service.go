package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"catercost/internal/dto"
	"catercost/internal/model"
	"catercost/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Price-list import error codes.
const (
	PriceRowFormat         = "ROW_FORMAT"
	PriceIngredientMissing = "INGREDIENT_MISSING"
	PriceIngredientUnknown = "INGREDIENT_UNKNOWN"
	PriceNotNumber         = "PRICE_NOT_NUMBER"
	PriceNegative          = "PRICE_NEGATIVE"
	PricePackageInvalid    = "PACKAGE_INVALID"
	PriceDuplicateRow      = "DUPLICATE_ROW"
)

const maxPriceListRows = 5000

// SupplierService manages suppliers and what they charge for each ingredient.
// Supplier prices never change an ingredient's current_cost.
type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context, filter dto.SupplierFilter) (*dto.SupplierListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	SetPrice(ctx context.Context, supplierID uuid.UUID, req dto.SupplierPriceRequest) (*dto.SupplierProductResponse, error)
	RemovePrice(ctx context.Context, supplierID, ingredientID uuid.UUID) error
	PriceList(ctx context.Context, supplierID uuid.UUID) ([]dto.SupplierProductResponse, error)
	Offers(ctx context.Context, ingredientID uuid.UUID) ([]dto.SupplierProductResponse, error)
	ImportPriceList(ctx context.Context, supplierID uuid.UUID, r io.Reader) (*dto.PriceListImportResponse, error)
}

type supplierService struct {
	repo        repository.SupplierRepository
	ingredients repository.IngredientRepository
}

func NewSupplierService(repo repository.SupplierRepository, ingredients repository.IngredientRepository) SupplierService {
	return &supplierService{repo: repo, ingredients: ingredients}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		Name:         strings.TrimSpace(req.Name),
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		TaxID:        req.TaxID,
		CurrencyCode: req.CurrencyCode,
		PaymentTerms: req.PaymentTerms,
		LeadTimeDays: 1,
		Active:       true,
		Notes:        req.Notes,
	}
	if sup.CurrencyCode == "" {
		sup.CurrencyCode = "ARS"
	}
	if req.LeadTimeDays != nil {
		sup.LeadTimeDays = *req.LeadTimeDays
	}
	if req.MinimumOrder != nil {
		sup.MinimumOrder = *req.MinimumOrder
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, conflict(err, "supplier name or tax id")
	}
	log.Info().Str("supplier", sup.Name).Msg("suppliers: created")

	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) GetByID(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "supplier not found")
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

func (s *supplierService) List(ctx context.Context, filter dto.SupplierFilter) (*dto.SupplierListResponse, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SupplierResponse, 0, len(rows))
	for i := range rows {
		data = append(data, supplierToResponse(&rows[i]))
	}
	return &dto.SupplierListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.Pages(total, filter.Limit),
	}, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "supplier not found")
	}
	if req.Name != nil {
		sup.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactName != nil {
		sup.ContactName = req.ContactName
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if req.TaxID != nil {
		sup.TaxID = req.TaxID
	}
	if req.CurrencyCode != nil {
		sup.CurrencyCode = *req.CurrencyCode
	}
	if req.PaymentTerms != nil {
		sup.PaymentTerms = req.PaymentTerms
	}
	if req.LeadTimeDays != nil {
		sup.LeadTimeDays = *req.LeadTimeDays
	}
	if req.MinimumOrder != nil {
		sup.MinimumOrder = *req.MinimumOrder
	}
	if req.Active != nil {
		sup.Active = *req.Active
	}
	if req.Notes != nil {
		sup.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, conflict(err, "supplier name or tax id")
	}
	resp := supplierToResponse(sup)
	return &resp, nil
}

// Deactivate hides the supplier from listings and offers. Its price list and
// the ingredients naming it as default supplier are left untouched.
func (s *supplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return notFound(err, "supplier not found")
	}
	log.Info().Str("supplier_id", id.String()).Msg("suppliers: deactivated")
	return nil
}

// activeSupplier loads a supplier that can still receive price-list changes.
func (s *supplierService) activeSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "supplier not found")
	}
	if !sup.Active {
		return nil, fmt.Errorf("%w: supplier %q is inactive", ErrConflict, sup.Name)
	}
	return sup, nil
}

func (s *supplierService) SetPrice(ctx context.Context, supplierID uuid.UUID, req dto.SupplierPriceRequest) (*dto.SupplierProductResponse, error) {
	ingredientID, err := uuid.Parse(req.IngredientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ingredient_id", ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if !req.PackageSize.IsPositive() {
		return nil, fmt.Errorf("%w: package_size must be positive", ErrInvalidInput)
	}
	sup, err := s.activeSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	line := &model.SupplierProduct{
		SupplierID:   supplierID,
		IngredientID: ingredientID,
		SupplierSKU:  req.SupplierSKU,
		Price:        req.Price,
		PackageSize:  req.PackageSize,
		PackageUnit:  req.PackageUnit,
		Available:    true,
		Notes:        req.Notes,
	}
	if req.Available != nil {
		line.Available = *req.Available
	}

	var ing *model.Ingredient
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if ing, err = s.ingredients.FindByIDTx(tx, ingredientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown ingredient %s", ErrInvalidInput, ingredientID)
			}
			return err
		}
		if err := s.repo.UpsertProductTx(tx, line); err != nil {
			return err
		}
		// the upsert keeps the stored id of an existing line
		stored, err := s.repo.FindProductTx(tx, supplierID, ingredientID)
		if err != nil {
			return err
		}
		line = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	line.Supplier, line.Ingredient = sup, ing

	resp := supplierProductToResponse(line, nil)
	return &resp, nil
}

func (s *supplierService) RemovePrice(ctx context.Context, supplierID, ingredientID uuid.UUID) error {
	return notFound(s.repo.DeleteProduct(ctx, supplierID, ingredientID), "price-list line not found")
}

// PriceList returns the supplier's lines ordered by ingredient name.
func (s *supplierService) PriceList(ctx context.Context, supplierID uuid.UUID) ([]dto.SupplierProductResponse, error) {
	sup, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, notFound(err, "supplier not found")
	}
	rows, err := s.repo.ListProducts(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierProductResponse, 0, len(rows))
	for i := range rows {
		rows[i].Supplier = sup
		out = append(out, supplierProductToResponse(&rows[i], nil))
	}
	return out, nil
}

// Offers compares what the active suppliers charge for one ingredient:
// available lines first, then by unit price, then by supplier name.
func (s *supplierService) Offers(ctx context.Context, ingredientID uuid.UUID) ([]dto.SupplierProductResponse, error) {
	ing, err := s.ingredients.FindByID(ctx, ingredientID)
	if err != nil {
		return nil, notFound(err, "ingredient not found")
	}
	rows, err := s.repo.ListOffers(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	offers := rows[:0]
	for _, p := range rows {
		if p.Supplier != nil && p.Supplier.Active {
			offers = append(offers, p)
		}
	}
	sort.SliceStable(offers, func(a, b int) bool {
		pa, pb := &offers[a], &offers[b]
		if pa.Available != pb.Available {
			return pa.Available
		}
		if c := pa.UnitPrice().Cmp(pb.UnitPrice()); c != 0 {
			return c < 0
		}
		return pa.Supplier.Name < pb.Supplier.Name
	})

	out := make([]dto.SupplierProductResponse, 0, len(offers))
	for i := range offers {
		offers[i].Ingredient = ing
		out = append(out, supplierProductToResponse(&offers[i], ing.DefaultSupplierID))
	}
	return out, nil
}

// priceListColumns maps the CSV header onto column positions.
type priceListColumns struct {
	ingredient, sku, price, size, unit int
}

func (c priceListColumns) width() int {
	return max(c.ingredient, c.sku, c.price, c.size, c.unit) + 1
}

func readPriceListHeader(header []string) (priceListColumns, error) {
	cols := priceListColumns{ingredient: -1, sku: -1, price: -1, size: -1, unit: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "ingredient":
			cols.ingredient = i
		case "supplier_sku":
			cols.sku = i
		case "price":
			cols.price = i
		case "package_size":
			cols.size = i
		case "package_unit":
			cols.unit = i
		}
	}
	var missing []string
	for name, idx := range map[string]int{
		"ingredient": cols.ingredient, "price": cols.price,
		"package_size": cols.size, "package_unit": cols.unit,
	} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return cols, fmt.Errorf("%w: price list header is missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// ImportPriceList upserts a supplier's price list from CSV with the header
// ingredient,supplier_sku,price,package_size,package_unit. The ingredient
// column matches an ingredient sku first and a name second, both
// case-insensitively. Bad rows are reported and skipped; the good ones are
// applied in one transaction.
func (s *supplierService) ImportPriceList(ctx context.Context, supplierID uuid.UUID, r io.Reader) (*dto.PriceListImportResponse, error) {
	sup, err := s.activeSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: price list is empty", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable price list header: %v", ErrInvalidInput, err)
	}
	cols, err := readPriceListHeader(header)
	if err != nil {
		return nil, err
	}

	resp := &dto.PriceListImportResponse{Errors: []dto.PriceListErrorRow{}}
	fail := func(row int, ingredient, code, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.PriceListErrorRow{Row: row, Ingredient: ingredient, ErrorCode: code, Reason: reason})
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ings, err := s.ingredients.ListAllTx(tx)
		if err != nil {
			return err
		}
		bySKU := make(map[string]*model.Ingredient, len(ings))
		byName := make(map[string]*model.Ingredient, len(ings))
		for i := range ings {
			if ings[i].SKU != nil && *ings[i].SKU != "" {
				bySKU[strings.ToLower(*ings[i].SKU)] = &ings[i]
			}
			byName[strings.ToLower(ings[i].Name)] = &ings[i]
		}

		seen := make(map[uuid.UUID]int)
		for row := 2; ; row++ {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			resp.TotalRows++
			if resp.TotalRows > maxPriceListRows {
				return fmt.Errorf("%w: price list exceeds %d rows", ErrInvalidInput, maxPriceListRows)
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				fail(row, "", PriceRowFormat, perr.Err.Error())
				continue
			}
			if err != nil {
				return err
			}
			if len(record) < cols.width() {
				fail(row, cell(record, cols.ingredient), PriceRowFormat,
					fmt.Sprintf("expected %d columns, got %d", cols.width(), len(record)))
				continue
			}

			name := cell(record, cols.ingredient)
			if name == "" {
				fail(row, "", PriceIngredientMissing, "ingredient is empty")
				continue
			}
			ing, ok := bySKU[strings.ToLower(name)]
			if !ok {
				ing, ok = byName[strings.ToLower(name)]
			}
			if !ok {
				fail(row, name, PriceIngredientUnknown, "no ingredient with this sku or name")
				continue
			}
			price, err := decimal.NewFromString(cell(record, cols.price))
			if err != nil {
				fail(row, name, PriceNotNumber, fmt.Sprintf("price %q is not a number", cell(record, cols.price)))
				continue
			}
			if price.IsNegative() {
				fail(row, name, PriceNegative, "price must not be negative")
				continue
			}
			size, err := decimal.NewFromString(cell(record, cols.size))
			unit := cell(record, cols.unit)
			if err != nil || !size.IsPositive() || unit == "" {
				fail(row, name, PricePackageInvalid, "package_size must be a positive number and package_unit is required")
				continue
			}
			if first, dup := seen[ing.ID]; dup {
				fail(row, name, PriceDuplicateRow, fmt.Sprintf("ingredient already listed on row %d", first))
				continue
			}
			seen[ing.ID] = row

			line := &model.SupplierProduct{
				SupplierID:   supplierID,
				IngredientID: ing.ID,
				Price:        price,
				PackageSize:  size,
				PackageUnit:  unit,
				Available:    true,
			}
			if sku := cell(record, cols.sku); sku != "" {
				line.SupplierSKU = &sku
			}
			_, err = s.repo.FindProductTx(tx, supplierID, ing.ID)
			switch {
			case err == nil:
				resp.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				resp.Created++
			default:
				return err
			}
			if err := s.repo.UpsertProductTx(tx, line); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("supplier", sup.Name).Int("rows", resp.TotalRows).
		Int("created", resp.Created).Int("updated", resp.Updated).Int("failed", resp.Failed).
		Msg("suppliers: price list imported")
	return resp, nil
}
