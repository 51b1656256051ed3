package infra

import (
	"fmt"

	"catercost/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every catalog table and, on Postgres, the
// constraint patches AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.Ingredient{},
		&model.SupplierProduct{},
		&model.Tag{},
		&model.IngredientPriceHistory{},
		&model.Recipe{},
		&model.RecipeItem{},
		&model.Event{},
		&model.EventOrder{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches adds CHECK constraints and partial indexes. Every
// statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// A recipe item references exactly one of ingredient / child recipe.
		{"recipe_items exactly one reference", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_recipe_items_one_ref') THEN
    ALTER TABLE recipe_items ADD CONSTRAINT chk_recipe_items_one_ref
      CHECK ((ingredient_id IS NULL) <> (child_recipe_id IS NULL));
  END IF;
END $$`},
		{"recipe_items no self reference", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_recipe_items_not_self') THEN
    ALTER TABLE recipe_items ADD CONSTRAINT chk_recipe_items_not_self
      CHECK (child_recipe_id IS NULL OR child_recipe_id <> parent_recipe_id);
  END IF;
END $$`},
		{"ingredients yield factor range", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_ingredients_yield_factor') THEN
    ALTER TABLE ingredients ADD CONSTRAINT chk_ingredients_yield_factor
      CHECK (yield_factor IS NULL OR (yield_factor > 0 AND yield_factor <= 1));
  END IF;
END $$`},
		{"recipes target margin range", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_recipes_target_margin') THEN
    ALTER TABLE recipes ADD CONSTRAINT chk_recipes_target_margin
      CHECK (target_margin >= 0 AND target_margin < 1);
  END IF;
END $$`},
		{"supplier products positive package", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_supplier_products_package') THEN
    ALTER TABLE supplier_products ADD CONSTRAINT chk_supplier_products_package
      CHECK (package_size > 0 AND price >= 0);
  END IF;
END $$`},
		{"price history newest-first index",
			`CREATE INDEX IF NOT EXISTS idx_price_history_ingredient_created
			   ON ingredient_price_history (ingredient_id, created_at DESC)`},
		// Production planning only ever scans demand-bearing events.
		{"events demand partial index",
			`CREATE INDEX IF NOT EXISTS idx_events_demand_date
			   ON events (event_date)
			   WHERE status IN ('confirmed', 'in_progress')`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
