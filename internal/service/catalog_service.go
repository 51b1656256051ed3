package service

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"catercost/internal/costing"
	"catercost/internal/metrics"
	"catercost/internal/model"
	"catercost/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// catalogVersionKey is bumped on every catalog write so that every replica
// drops its in-process snapshot and every cached cost goes stale.
const catalogVersionKey = "catalog:version"

// CatalogService hands out immutable engine snapshots of the catalog.
type CatalogService interface {
	// Snapshot returns the current Graph. The Graph must not be retained
	// across requests that need read-your-writes.
	Snapshot(ctx context.Context) (*costing.Graph, error)
	// Version identifies the catalog state Snapshot reflects.
	Version(ctx context.Context) string
	// Invalidate must be called after every committed catalog write.
	Invalidate(ctx context.Context)
}

type catalogService struct {
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	rdb         *redis.Client // optional
	local       *gocache.Cache
	generation  atomic.Int64
}

func NewCatalogService(
	ingredients repository.IngredientRepository,
	recipes repository.RecipeRepository,
	rdb *redis.Client,
	ttl time.Duration,
) CatalogService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &catalogService{
		ingredients: ingredients,
		recipes:     recipes,
		rdb:         rdb,
		local:       gocache.New(ttl, 2*ttl),
	}
}

// Version returns the shared catalog version, or a process-local one
// prefixed with "local-" when Redis is not reachable.
func (s *catalogService) Version(ctx context.Context) string {
	if s.rdb != nil {
		v, err := s.rdb.Get(ctx, catalogVersionKey).Result()
		if errors.Is(err, redis.Nil) {
			return "0"
		}
		if err == nil {
			return v
		}
		metrics.CacheError("catalog_version")
		log.Warn().Err(err).Msg("catalog: redis version lookup failed; using local generation")
	}
	return "local-" + strconv.FormatInt(s.generation.Load(), 10)
}

func (s *catalogService) Snapshot(ctx context.Context) (*costing.Graph, error) {
	// The local generation covers writes made by this process while Redis
	// was unreachable.
	key := "graph:" + s.Version(ctx) + ":" + strconv.FormatInt(s.generation.Load(), 10)
	if g, ok := s.local.Get(key); ok {
		metrics.CacheHit("snapshot")
		return g.(*costing.Graph), nil
	}
	metrics.CacheMiss("snapshot")

	var (
		ings []model.Ingredient
		recs []model.Recipe
	)
	err := runReadTx(ctx, s.ingredients.DB(), func(tx *gorm.DB) error {
		var err error
		if ings, err = s.ingredients.ListAllTx(tx); err != nil {
			return err
		}
		recs, err = s.recipes.ListAllTx(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	g, err := buildGraph(ings, recs)
	if err != nil {
		return nil, err
	}
	s.local.SetDefault(key, g)
	return g, nil
}

func (s *catalogService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	s.local.Flush()
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, catalogVersionKey).Err(); err != nil {
		log.Error().Err(err).Msg("catalog: failed to bump shared version")
	}
}
