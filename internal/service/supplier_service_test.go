package service_test

import (
	"context"
	"strings"
	"testing"

	"catercost/internal/dto"
	"catercost/internal/service"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) addSupplier(t *testing.T, name string) uuid.UUID {
	t.Helper()
	resp, err := f.supplier.Create(context.Background(), dto.CreateSupplierRequest{Name: name})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (f *fixture) setPrice(t *testing.T, supplierID, ingredientID uuid.UUID, price, size string) {
	t.Helper()
	_, err := f.supplier.SetPrice(context.Background(), supplierID, dto.SupplierPriceRequest{
		IngredientID: ingredientID.String(),
		Price:        dec(price),
		PackageSize:  dec(size),
		PackageUnit:  "kg",
	})
	require.NoError(t, err)
}

func TestSupplierService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.supplier.Create(ctx, dto.CreateSupplierRequest{Name: "  La Serenisima ", ContactName: strPtr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, "La Serenisima", resp.Name)
	assert.Equal(t, "ARS", resp.CurrencyCode)
	assert.Equal(t, 1, resp.LeadTimeDays)
	assert.True(t, resp.Active)

	_, err = f.supplier.Create(ctx, dto.CreateSupplierRequest{Name: "La Serenisima"})
	require.ErrorIs(t, err, service.ErrConflict)

	id := uuid.MustParse(resp.ID)
	days := 3
	upd, err := f.supplier.Update(ctx, id, dto.UpdateSupplierRequest{LeadTimeDays: &days, Phone: strPtr("011-4444")})
	require.NoError(t, err)
	assert.Equal(t, 3, upd.LeadTimeDays)
	assert.Equal(t, "Ana", *upd.ContactName)

	require.NoError(t, f.supplier.Deactivate(ctx, id))
	got, err := f.supplier.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Active)

	list, err := f.supplier.List(ctx, dto.SupplierFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	list, err = f.supplier.List(ctx, dto.SupplierFilter{IncludeInactive: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)

	_, err = f.supplier.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, f.supplier.Deactivate(ctx, uuid.New()), service.ErrNotFound)
}

func TestSupplierService_SetPriceOverwritesLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	butcher := f.addSupplier(t, "Butcher")

	first, err := f.supplier.SetPrice(ctx, butcher, dto.SupplierPriceRequest{
		IngredientID: f.beef.String(), Price: dec("42000"), PackageSize: dec("5"), PackageUnit: "kg",
	})
	require.NoError(t, err)
	assertDec(t, "8400", first.UnitPrice)
	assert.Equal(t, "beef", first.IngredientName)
	assert.Equal(t, "Butcher", first.SupplierName)

	second, err := f.supplier.SetPrice(ctx, butcher, dto.SupplierPriceRequest{
		IngredientID: f.beef.String(), Price: dec("45000"), PackageSize: dec("5"), PackageUnit: "kg",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	lines, err := f.supplier.PriceList(ctx, butcher)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assertDec(t, "45000", lines[0].Price)

	// the catalog cost is not touched by supplier prices
	ing, err := f.ingredient.GetByID(ctx, f.beef)
	require.NoError(t, err)
	assertDec(t, "8500", *ing.CurrentCost)

	_, err = f.supplier.SetPrice(ctx, butcher, dto.SupplierPriceRequest{
		IngredientID: uuid.NewString(), Price: dec("1"), PackageSize: dec("1"), PackageUnit: "kg",
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	require.NoError(t, f.supplier.RemovePrice(ctx, butcher, f.beef))
	require.ErrorIs(t, f.supplier.RemovePrice(ctx, butcher, f.beef), service.ErrNotFound)
}

func TestSupplierService_InactiveSupplierRejectsPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gone := f.addSupplier(t, "Gone")
	require.NoError(t, f.supplier.Deactivate(ctx, gone))

	_, err := f.supplier.SetPrice(ctx, gone, dto.SupplierPriceRequest{
		IngredientID: f.rice.String(), Price: dec("1"), PackageSize: dec("1"), PackageUnit: "kg",
	})
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = f.supplier.ImportPriceList(ctx, gone, strings.NewReader("ingredient,price,package_size,package_unit\nrice,1,1,kg\n"))
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestSupplierService_OffersOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cheap := f.addSupplier(t, "Cheap")
	dear := f.addSupplier(t, "Dear")
	soldOut := f.addSupplier(t, "Sold out")
	closed := f.addSupplier(t, "Closed")

	f.setPrice(t, dear, f.rice, "2400", "1")
	f.setPrice(t, cheap, f.rice, "9000", "5")
	f.setPrice(t, closed, f.rice, "1", "1")
	no := false
	_, err := f.supplier.SetPrice(ctx, soldOut, dto.SupplierPriceRequest{
		IngredientID: f.rice.String(), Price: dec("1000"), PackageSize: dec("1"), PackageUnit: "kg", Available: &no,
	})
	require.NoError(t, err)
	require.NoError(t, f.supplier.Deactivate(ctx, closed))

	dearStr := dear.String()
	_, err = f.ingredient.Update(ctx, f.rice, dto.UpdateIngredientRequest{DefaultSupplierID: &dearStr}, "buyer")
	require.NoError(t, err)

	offers, err := f.supplier.Offers(ctx, f.rice)
	require.NoError(t, err)
	var names []string
	var defaults []bool
	for _, o := range offers {
		names = append(names, o.SupplierName)
		defaults = append(defaults, o.IsDefault)
	}
	if diff := cmp.Diff([]string{"Cheap", "Dear", "Sold out"}, names); diff != "" {
		t.Errorf("offer order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []bool{false, true, false}, defaults)
	assertDec(t, "1800", offers[0].UnitPrice)

	_, err = f.supplier.Offers(ctx, uuid.New())
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestSupplierService_ImportPriceList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sku := "TOM-01"
	f.ingredients.rows[f.tomato].SKU = &sku
	market := f.addSupplier(t, "Market")
	f.setPrice(t, market, f.rice, "1900", "1")

	csv := strings.Join([]string{
		"Ingredient, Supplier_SKU, Price, Package_Size, Package_Unit",
		"tom-01,MK-7,15000,5,kg",
		"Rice,MK-1,1850,1,kg",
		",,1,1,kg",
		"saffron,,1,1,g",
		"beef,,cheap,1,kg",
		"beef,,-3,1,kg",
		"beef,,9000,0,kg",
		"rice,,1700,1,kg",
		"beef,,9000",
		"beef,BT-1,8800,1,kg",
	}, "\n")
	resp, err := f.supplier.ImportPriceList(ctx, market, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 10, resp.TotalRows)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 1, resp.Updated)
	assert.Equal(t, 7, resp.Failed)

	var codes []string
	var rows []int
	for _, e := range resp.Errors {
		codes = append(codes, e.ErrorCode)
		rows = append(rows, e.Row)
	}
	want := []string{
		service.PriceIngredientMissing, service.PriceIngredientUnknown, service.PriceNotNumber,
		service.PriceNegative, service.PricePackageInvalid, service.PriceDuplicateRow, service.PriceRowFormat,
	}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("error codes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10}, rows)

	lines, err := f.supplier.PriceList(ctx, market)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	byName := map[string]dto.SupplierProductResponse{}
	for _, l := range lines {
		byName[l.IngredientName] = l
	}
	assertDec(t, "1850", byName["rice"].Price)
	assertDec(t, "3000", byName["tomato"].UnitPrice)
	require.NotNil(t, byName["beef"].SupplierSKU)
	assert.Equal(t, "BT-1", *byName["beef"].SupplierSKU)
}

func TestSupplierService_ImportPriceListRejectsBadHeader(t *testing.T) {
	f := newFixture(t)
	market := f.addSupplier(t, "Market")

	_, err := f.supplier.ImportPriceList(context.Background(), market, strings.NewReader("ingredient,cost\nrice,1\n"))
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Contains(t, err.Error(), "package_size, package_unit, price")

	_, err = f.supplier.ImportPriceList(context.Background(), market, strings.NewReader(""))
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestIngredientService_DefaultSupplier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	butcher := f.addSupplier(t, "Butcher")
	id := butcher.String()

	resp, err := f.ingredient.Create(ctx, dto.CreateIngredientRequest{
		Name: "lamb", Category: "Meat", PurchaseUnit: "kg", UsageUnit: "g", DefaultSupplierID: &id,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.DefaultSupplierID)
	assert.Equal(t, id, *resp.DefaultSupplierID)

	unknown := uuid.NewString()
	_, err = f.ingredient.Update(ctx, f.beef, dto.UpdateIngredientRequest{DefaultSupplierID: &unknown}, "buyer")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	require.NoError(t, f.supplier.Deactivate(ctx, butcher))
	_, err = f.ingredient.Update(ctx, f.beef, dto.UpdateIngredientRequest{DefaultSupplierID: &id}, "buyer")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	// "" clears the link
	lambID := uuid.MustParse(resp.ID)
	none := ""
	upd, err := f.ingredient.Update(ctx, lambID, dto.UpdateIngredientRequest{DefaultSupplierID: &none}, "buyer")
	require.NoError(t, err)
	assert.Nil(t, upd.DefaultSupplierID)
}

func TestIngredientService_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sku := "RC-100"
	f.ingredients.rows[f.rice].SKU = &sku

	got, err := f.ingredient.Search(ctx, dto.IngredientSearchQuery{Q: "rc-1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "rice", got[0].Name)
	assertDec(t, "2", got[0].RealCostPerUsageUnit)

	got, err = f.ingredient.Search(ctx, dto.IngredientSearchQuery{Q: "EE", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "beef", got[0].Name)

	_, err = f.ingredient.Search(ctx, dto.IngredientSearchQuery{Q: " b ", Limit: 10})
	require.ErrorIs(t, err, service.ErrInvalidInput)
}
