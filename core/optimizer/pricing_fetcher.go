package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"vram-calculator/core/models"
)

const (
	defaultCacheTTL     = 15 * time.Minute
	priceLookupParallel = 8
)

// InstanceSource lists GPU instance types and their on-demand prices
type InstanceSource interface {
	ListGPUInstances(ctx context.Context) ([]models.GPUInstance, error)
	OnDemandPrice(ctx context.Context, instanceType string) (float64, bool, error)
}

// PricingFetcher fetches GPU instances with prices from a provider and caches them
type PricingFetcher struct {
	source   InstanceSource
	cacheTTL time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	instances []models.GPUInstance
	fetchedAt time.Time
}

// NewPricingFetcher creates a new pricing fetcher
func NewPricingFetcher(source InstanceSource) *PricingFetcher {
	return &PricingFetcher{
		source:   source,
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
}

// Instances returns the priced GPU instances, refreshing the cache when it is stale
func (pf *PricingFetcher) Instances(ctx context.Context) ([]models.GPUInstance, error) {
	pf.mu.RLock()
	if pf.instances != nil && pf.now().Sub(pf.fetchedAt) < pf.cacheTTL {
		cached := append([]models.GPUInstance(nil), pf.instances...)
		pf.mu.RUnlock()
		return cached, nil
	}
	pf.mu.RUnlock()

	instances, err := pf.fetch(ctx)
	if err != nil {
		return nil, err
	}

	pf.mu.Lock()
	pf.instances = instances
	pf.fetchedAt = pf.now()
	pf.mu.Unlock()

	return append([]models.GPUInstance(nil), instances...), nil
}

// Rank fetches instances and ranks those that can hold totalVRAM GiB
func (pf *PricingFetcher) Rank(ctx context.Context, totalVRAM int) ([]models.GPUInstance, error) {
	instances, err := pf.Instances(ctx)
	if err != nil {
		return nil, err
	}
	return RankInstances(totalVRAM, instances), nil
}

func (pf *PricingFetcher) fetch(ctx context.Context) ([]models.GPUInstance, error) {
	instances, err := pf.source.ListGPUInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list GPU instances: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceLookupParallel)

	for i := range instances {
		i := i
		g.Go(func() error {
			price, ok, err := pf.source.OnDemandPrice(gctx, instances[i].InstanceType)
			if err != nil {
				// A missing price only pushes the instance to the end of the ranking
				log.Warn().Err(err).Str("instance_type", instances[i].InstanceType).Msg("price lookup failed")
				return nil
			}
			if ok {
				p := price
				instances[i].PricePerHour = &p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug().Int("count", len(instances)).Msg("refreshed GPU instance pricing")
	return instances, nil
}
