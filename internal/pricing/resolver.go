package pricing

import (
	"context"
	"sync"
	"time"

	"carcare/internal/catalog"
	"carcare/internal/domain"
	"carcare/internal/metrics"
	"carcare/internal/models"
	"carcare/internal/worker"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Price is a resolved amount. Loaded is false while the price table has not
// been fetched yet; callers must render a loading state, not zero.
type Price struct {
	Amount int64
	Loaded bool
}

// Quoted reports a resolved "get quote" price.
func (p Price) Quoted() bool {
	return p.Loaded && p.Amount == 0
}

type table map[string]models.ServicePrice

const fetchTimeout = 10 * time.Second

// Resolver is the process-wide memoized price table. Concurrent loads share
// one fetch; Invalidate forces the next read to refetch.
type Resolver struct {
	source  domain.PriceSource
	catalog *catalog.Catalog
	retry   worker.RetryPolicy
	logger  *zerolog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	prices table
	loaded bool
	gen    uint64
}

func NewResolver(source domain.PriceSource, cat *catalog.Catalog, retry worker.RetryPolicy, logger *zerolog.Logger) *Resolver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "pricing").Logger()
	return &Resolver{
		source:  source,
		catalog: cat,
		retry:   retry,
		logger:  &l,
	}
}

// Get returns the loaded table, fetching it at most once across concurrent callers.
func (r *Resolver) Get(ctx context.Context) (map[string]models.ServicePrice, error) {
	r.mu.RLock()
	if r.loaded {
		t := r.prices
		r.mu.RUnlock()
		return t, nil
	}
	gen := r.gen
	r.mu.RUnlock()

	// The fetch runs detached from ctx; a cancelled caller only stops waiting.
	ch := r.group.DoChan("prices", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		t, ok := r.fetch(fetchCtx)

		r.mu.Lock()
		defer r.mu.Unlock()
		// An Invalidate that raced the fetch wins; the caller still gets
		// this result but it is not memoized. A timed out fetch is never
		// memoized either.
		if ok && r.gen == gen {
			r.prices = t
			r.loaded = true
		}
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch never fails: after the bounded retries an empty table is used so
// every price falls back to the catalog default. ok is false when the fetch
// was cut short by its deadline and the result must not be kept.
func (r *Resolver) fetch(ctx context.Context) (table, bool) {
	var rows []*models.ServicePrice
	attempt := 0
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.IncPriceFetch("retry")
		}
		var err error
		rows, err = r.source.ListPrices(ctx)
		return err
	})
	if err != nil {
		metrics.IncPriceFetch("fallback")
		r.logger.Warn().Err(err).Int("attempts", attempt).Msg("price table fetch failed, using catalog defaults")
		return table{}, ctx.Err() == nil
	}

	t := make(table, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		t[row.ServiceID] = *row
	}
	metrics.IncPriceFetch("ok")
	r.logger.Debug().Int("rows", len(t)).Msg("price table loaded")
	return t, true
}

// Resolve loads the table if needed and returns the price for the pair.
func (r *Resolver) Resolve(ctx context.Context, serviceID string, vt models.VehicleType) (Price, error) {
	t, err := r.Get(ctx)
	if err != nil {
		return Price{}, err
	}
	return Price{Amount: r.lookup(t, serviceID, vt), Loaded: true}, nil
}

// Peek never fetches. It returns an unloaded Price until a load completes.
func (r *Resolver) Peek(serviceID string, vt models.VehicleType) Price {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return Price{}
	}
	return Price{Amount: r.lookup(r.prices, serviceID, vt), Loaded: true}
}

// Total sums the prices of several selected services. A single quoted
// service does not zero the total of the others.
func (r *Resolver) Total(ctx context.Context, serviceIDs []string, vt models.VehicleType) (Price, error) {
	t, err := r.Get(ctx)
	if err != nil {
		return Price{}, err
	}
	var sum int64
	for _, id := range serviceIDs {
		sum += r.lookup(t, id, vt)
	}
	return Price{Amount: sum, Loaded: true}, nil
}

func (r *Resolver) lookup(t table, serviceID string, vt models.VehicleType) int64 {
	if vt == "" {
		vt = models.VehicleHatchback
	}
	if row, ok := t[serviceID]; ok {
		return row.For(vt)
	}
	if r.catalog == nil {
		return 0
	}
	return r.catalog.DefaultPrice(serviceID)
}

// Invalidate drops the memoized table.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.prices = nil
	r.loaded = false
	r.gen++
	r.mu.Unlock()
	r.group.Forget("prices")
	r.logger.Debug().Msg("price table invalidated")
}

// Refresh invalidates and loads again.
func (r *Resolver) Refresh(ctx context.Context) error {
	r.Invalidate()
	_, err := r.Get(ctx)
	return err
}

// Loaded reports whether a table is memoized.
func (r *Resolver) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}
