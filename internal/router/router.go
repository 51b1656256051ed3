package router

import (
	"catercost/internal/config"
	"catercost/internal/handler"
	"catercost/internal/infra"
	"catercost/internal/metrics"
	"catercost/internal/middleware"
	"catercost/internal/repository"
	"catercost/internal/service"
	"catercost/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// rdb may be nil: costs are then computed on every request and the
// shopping-list dispatch answers 503.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailBreaker *infra.CircuitBreaker) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	eventRepo := repository.NewEventRepository(db)
	priceHistoryRepo := repository.NewPriceHistoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	tagRepo := repository.NewTagRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	catalogSvc := service.NewCatalogService(ingredientRepo, recipeRepo, rdb, cfg.SnapshotCacheTTL)

	// Worker dispatcher: injected into services that enqueue async jobs
	var dispatcher service.ShoppingListDispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	ingredientSvc := service.NewIngredientService(ingredientRepo, priceHistoryRepo, supplierRepo, catalogSvc)
	supplierSvc := service.NewSupplierService(supplierRepo, ingredientRepo)
	tagSvc := service.NewTagService(tagRepo, catalogSvc)
	recipeSvc := service.NewRecipeService(recipeRepo, ingredientRepo, catalogSvc)
	eventSvc := service.NewEventService(eventRepo, catalogSvc)
	costingSvc := service.NewCostingService(catalogSvc, eventRepo, rdb, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ingredientsH := handler.NewIngredientsHandler(ingredientSvc)
	recipesH := handler.NewRecipesHandler(recipeSvc, costingSvc)
	eventsH := handler.NewEventsHandler(eventSvc)
	productionH := handler.NewProductionHandler(costingSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	tagsH := handler.NewTagsHandler(tagSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailBreaker))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Protected routes. Admins pass every RequireRole check.
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(middleware.RoleChef, middleware.RolePurchasing, middleware.RoleSales)
	v1 := r.Group("/v1", jwtMW)
	{
		// Reads: every staff role
		v1.GET("/ingredients", anyRole, ingredientsH.List)
		v1.GET("/ingredients/:id", anyRole, ingredientsH.GetByID)
		v1.GET("/ingredients/:id/price-history", anyRole, ingredientsH.PriceHistory)
		v1.GET("/recipes", anyRole, recipesH.List)
		v1.GET("/recipes/:id", anyRole, recipesH.GetByID)
		v1.GET("/recipes/:id/cost", anyRole, recipesH.Cost)
		v1.GET("/recipes/:id/scale", anyRole, recipesH.Scale)
		v1.GET("/events", anyRole, eventsH.List)
		v1.GET("/events/:id", anyRole, eventsH.GetByID)
		v1.GET("/stats", anyRole, ingredientsH.Stats)
		v1.GET("/ingredients/:id/offers", anyRole, suppliersH.Offers)
		v1.GET("/suppliers", anyRole, suppliersH.List)
		v1.GET("/suppliers/:id", anyRole, suppliersH.GetByID)
		v1.GET("/suppliers/:id/prices", anyRole, suppliersH.PriceList)
		v1.GET("/tags", anyRole, tagsH.List)
		v1.GET("/search/ingredients", anyRole, ingredientsH.Search)
		v1.GET("/suggestions/recipes", anyRole, tagsH.SuggestRecipes)
		v1.GET("/suggestions/beverages", anyRole, tagsH.SuggestBeverages)
		v1.POST("/estimation", anyRole, handler.Estimate)

		// Ingredient catalog and prices: purchasing
		ings := v1.Group("/ingredients", middleware.RequireRole(middleware.RolePurchasing))
		{
			ings.POST("", ingredientsH.Create)
			ings.PUT("/:id", ingredientsH.Update)
			ings.POST("/bulk-price-update", ingredientsH.BulkPriceUpdate)
		}
		v1.DELETE("/ingredients/:id", middleware.RequireRole(), ingredientsH.Delete)

		// Suppliers and their price lists: purchasing
		sups := v1.Group("/suppliers", middleware.RequireRole(middleware.RolePurchasing))
		{
			sups.POST("", suppliersH.Create)
			sups.PUT("/:id", suppliersH.Update)
			sups.DELETE("/:id", suppliersH.Deactivate)
			sups.PUT("/:id/prices", suppliersH.SetPrice)
			sups.DELETE("/:id/prices/:ingredient_id", suppliersH.RemovePrice)
			sups.POST("/:id/prices/import", suppliersH.ImportPriceList)
		}

		// Recipes: kitchen
		recs := v1.Group("/recipes", middleware.RequireRole(middleware.RoleChef))
		{
			recs.POST("", recipesH.Create)
			recs.PUT("/:id", recipesH.Replace)
			recs.DELETE("/:id", recipesH.Delete)
			recs.PUT("/:id/tags", tagsH.SetRecipeTags)
		}
		tags := v1.Group("/tags", middleware.RequireRole(middleware.RoleChef))
		{
			tags.POST("", tagsH.Create)
			tags.DELETE("/:id", tagsH.Delete)
		}

		// Events and their orders: sales
		evs := v1.Group("/events", middleware.RequireRole(middleware.RoleSales))
		{
			evs.POST("", eventsH.Create)
			evs.PUT("/:id", eventsH.Update)
			evs.DELETE("/:id", eventsH.Delete)
			evs.POST("/:id/orders", eventsH.AddOrder)
			evs.DELETE("/:id/orders/:order_id", eventsH.RemoveOrder)
			evs.POST("/:id/recalculate", eventsH.Recalculate)
		}

		prod := v1.Group("/production", anyRole)
		{
			prod.GET("/plan", productionH.Plan)
			prod.GET("/shopping-list", productionH.ShoppingList)
			prod.POST("/shopping-list/dispatch",
				middleware.RequireRole(middleware.RoleChef, middleware.RolePurchasing),
				productionH.DispatchShoppingList)
		}

		v1.GET("/simulation/inflation", middleware.RequireRole(middleware.RolePurchasing, middleware.RoleChef), productionH.Inflation)

		v1.GET("/admin/dead-letters", middleware.RequireRole(), handler.DeadLetters(rdb))
	}

	// Swagger UI: only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
