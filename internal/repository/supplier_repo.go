package repository

import (
	"context"
	"strings"

	"catercost/internal/dto"
	"catercost/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupplierRepository stores suppliers and their price lists.
type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, filter dto.SupplierFilter) ([]model.Supplier, int64, error)
	Update(ctx context.Context, s *model.Supplier) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ListProducts returns a supplier's price list, ingredients preloaded.
	ListProducts(ctx context.Context, supplierID uuid.UUID) ([]model.SupplierProduct, error)
	// ListOffers returns every price-list line for an ingredient, suppliers
	// preloaded.
	ListOffers(ctx context.Context, ingredientID uuid.UUID) ([]model.SupplierProduct, error)
	DeleteProduct(ctx context.Context, supplierID, ingredientID uuid.UUID) error

	// Used inside transactions; callers pass the tx instance
	FindProductTx(tx *gorm.DB, supplierID, ingredientID uuid.UUID) (*model.SupplierProduct, error)
	UpsertProductTx(tx *gorm.DB, p *model.SupplierProduct) error

	DB() *gorm.DB
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return translateErr(r.db.WithContext(ctx).Omit("Products").Create(s).Error)
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *supplierRepo) List(ctx context.Context, filter dto.SupplierFilter) ([]model.Supplier, int64, error) {
	var rows []model.Supplier
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Supplier{})
	if !filter.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(contact_name, '')) LIKE ?", like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := pageBounds(filter.Page, filter.Limit)
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return translateErr(r.db.WithContext(ctx).Omit("Products").Save(s).Error)
}

func (r *supplierRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supplierRepo) ListProducts(ctx context.Context, supplierID uuid.UUID) ([]model.SupplierProduct, error) {
	var rows []model.SupplierProduct
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Joins("JOIN ingredients ON ingredients.id = supplier_products.ingredient_id").
		Where("supplier_products.supplier_id = ?", supplierID).
		Order("ingredients.name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *supplierRepo) ListOffers(ctx context.Context, ingredientID uuid.UUID) ([]model.SupplierProduct, error) {
	var rows []model.SupplierProduct
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("ingredient_id = ?", ingredientID).
		Find(&rows).Error
	return rows, err
}

func (r *supplierRepo) DeleteProduct(ctx context.Context, supplierID, ingredientID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("supplier_id = ? AND ingredient_id = ?", supplierID, ingredientID).
		Delete(&model.SupplierProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supplierRepo) FindProductTx(tx *gorm.DB, supplierID, ingredientID uuid.UUID) (*model.SupplierProduct, error) {
	var p model.SupplierProduct
	err := tx.Where("supplier_id = ? AND ingredient_id = ?", supplierID, ingredientID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProductTx inserts the line or overwrites the supplier's existing line
// for the same ingredient.
func (r *supplierRepo) UpsertProductTx(tx *gorm.DB, p *model.SupplierProduct) error {
	err := tx.Omit("Supplier", "Ingredient").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "supplier_id"}, {Name: "ingredient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"supplier_sku", "price", "package_size", "package_unit", "available", "notes", "updated_at",
		}),
	}).Create(p).Error
	return translateErr(err)
}

func (r *supplierRepo) DB() *gorm.DB { return r.db }
