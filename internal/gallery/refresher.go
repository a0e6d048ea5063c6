package gallery

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/internal/observability/metrics"
	"github.com/fhluo/xpic/internal/store"
	"github.com/fhluo/xpic/internal/wallpaper"
	"github.com/fhluo/xpic/pkg/bing"
)

const (
	// DefaultMirrorThreshold is how old local data may get before the mirror is asked.
	DefaultMirrorThreshold = 7 * 24 * time.Hour
	// DefaultAPIThreshold is how old data may get before the live API is asked.
	DefaultAPIThreshold = 24 * time.Hour
	// DefaultCacheTTL is how long a market's list stays in memory.
	DefaultCacheTTL = 24 * time.Hour
)

// Refresher runs the load, fetch, merge and save cycle for markets and keeps
// the latest list of each market in memory.
//
// Concurrent refreshes of one market share a single run; refreshes of
// different markets run independently.
type Refresher struct {
	api     Source
	mirror  Source
	dataDir string

	mirrorThreshold time.Duration
	apiThreshold    time.Duration
	clock           Clock

	log     logger.Logger
	metrics *metrics.GalleryMetrics

	cache *cache.Cache
	group singleflight.Group

	mu     sync.Mutex
	closed bool
	runs   sync.WaitGroup // refresh cycles, including ones no caller waits for
	tasks  sync.WaitGroup // RefreshAsync callers
}

// ErrClosed is returned for refreshes requested after Close.
var ErrClosed = errors.NewStd("refresher is closed")

// Option configures a Refresher.
type Option func(*Refresher)

// WithMirror enables the mirror step. Without it only the API is used.
func WithMirror(src Source) Option {
	return func(r *Refresher) { r.mirror = src }
}

// WithThresholds overrides the staleness limits. Zero keeps the default.
func WithThresholds(mirror, api time.Duration) Option {
	return func(r *Refresher) {
		if mirror > 0 {
			r.mirrorThreshold = mirror
		}
		if api > 0 {
			r.apiThreshold = api
		}
	}
}

// WithClock replaces time.Now for staleness checks.
func WithClock(clock Clock) Option {
	return func(r *Refresher) { r.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Refresher) { r.log = log }
}

// WithMetrics records refresh metrics.
func WithMetrics(m *metrics.GalleryMetrics) Option {
	return func(r *Refresher) { r.metrics = m }
}

// WithCacheTTL sets how long lists stay in memory.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Refresher) { r.cache = cache.New(ttl, cache.NoExpiration) }
}

// NewRefresher creates a Refresher that stores snapshots under dataDir and
// fetches live data from api.
func NewRefresher(api Source, dataDir string, opts ...Option) *Refresher {
	r := &Refresher{
		api:             api,
		dataDir:         dataDir,
		mirrorThreshold: DefaultMirrorThreshold,
		apiThreshold:    DefaultAPIThreshold,
		clock:           time.Now,
		// expired entries are purged at the start of each run instead of by a janitor goroutine
		cache: cache.New(DefaultCacheTTL, cache.NoExpiration),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Discard()
	}
	r.log = r.log.Module("gallery")
	return r
}

// Images returns the in-memory list for market and whether one was present.
func (r *Refresher) Images(market bing.Market) ([]wallpaper.Image, bool) {
	if m, err := bing.ParseMarket(string(market)); err == nil {
		market = m
	}
	v, ok := r.cache.Get(market.Code())
	r.metrics.RecordCacheLookup(ok)
	if !ok {
		return nil, false
	}
	images, ok := v.([]wallpaper.Image)
	return images, ok
}

// Refresh brings market up to date and returns its list folded with current,
// the list the caller already holds. If a run for market is in flight the
// call waits for it instead of starting another.
//
// Network and disk failures are logged and degrade to whatever data is
// available. The error is non-nil only for an invalid market, after Close, or
// when ctx ends first; the run itself keeps going in that last case.
func (r *Refresher) Refresh(ctx context.Context, market bing.Market, current []wallpaper.Image) ([]wallpaper.Image, error) {
	market, err := bing.ParseMarket(string(market))
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryValidation).
			Component("gallery").
			Build()
	}

	if r.isClosed() {
		return nil, r.closedError(market)
	}

	key := market.Code()
	leader := false
	// the run outlives any single caller so it never stops between merge and save
	runCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		leader = true
		done := make(chan []wallpaper.Image, 1)
		if !r.spawn(&r.runs, func() {
			images := r.run(runCtx, market)
			r.cache.Set(key, images, cache.DefaultExpiration)
			done <- images
		}) {
			return nil, ErrClosed
		}
		return <-done, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, r.closedError(market)
		}
		if !leader {
			r.metrics.IncrementCoalesced()
		}
		images, _ := res.Val.([]wallpaper.Image)
		result := Merge(current, images)
		r.cache.Set(key, result, cache.DefaultExpiration)
		return result, nil
	case <-ctx.Done():
		r.metrics.RecordRefresh(key, metrics.RefreshCanceled)
		return nil, errors.New(ctx.Err()).
			Category(errors.CategoryCancellation).
			Component("gallery").
			Context("market", key).
			Build()
	}
}

// RefreshAsync starts Refresh in the background and returns its Task.
// After Close the task finishes immediately with ErrClosed.
func (r *Refresher) RefreshAsync(ctx context.Context, market bing.Market, current []wallpaper.Image) *Task {
	task := newTask(market)
	if !r.spawn(&r.tasks, func() {
		task.finish(r.Refresh(ctx, market, current))
	}) {
		task.finish(nil, r.closedError(market))
	}
	return task
}

// RefreshAll refreshes markets concurrently, at most limit at a time.
func (r *Refresher) RefreshAll(ctx context.Context, markets []bing.Market, limit int) (map[bing.Market][]wallpaper.Image, error) {
	var mu sync.Mutex
	results := make(map[bing.Market][]wallpaper.Image, len(markets))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, market := range markets {
		g.Go(func() error {
			current, _ := r.Images(market)
			images, err := r.Refresh(gctx, market, current)
			if err != nil {
				return err
			}
			mu.Lock()
			results[market] = images
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Close rejects new refreshes and waits for running ones, including runs
// whose callers have already given up. It is safe to call more than once.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.tasks.Wait()
	r.runs.Wait()
}

// spawn runs fn on wg unless the refresher is closed.
func (r *Refresher) spawn(wg *sync.WaitGroup, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	wg.Go(fn)
	return true
}

func (r *Refresher) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Refresher) closedError(market bing.Market) error {
	return errors.New(ErrClosed).
		Category(errors.CategoryCancellation).
		Component("gallery").
		Context("market", market.Code()).
		Build()
}

// run executes one refresh cycle. It always returns a list, possibly empty.
func (r *Refresher) run(ctx context.Context, market bing.Market) []wallpaper.Image {
	start := time.Now()
	ctx = logger.WithTraceID(ctx, uuid.NewString())
	log := r.log.WithContext(ctx).With(logger.String("market", market.Code()))

	r.cache.DeleteExpired()

	path := store.Path(r.dataDir, market)
	images, err := store.Load(path)
	if err != nil {
		if errors.IsNotFound(err) {
			log.Debug("no local snapshot", logger.String("path", path))
		} else {
			log.Warn("ignoring unreadable snapshot", logger.String("path", path), logger.Error(err))
		}
		images = nil
	}
	loaded := len(images)

	dirty := false
	if r.mirror != nil && r.clock.IsStale(images, r.mirrorThreshold) {
		if fetched := r.fetch(ctx, log, metrics.SourceMirror, r.mirror, market); len(fetched) > 0 {
			images = Merge(images, fetched)
			dirty = true
		}
	}

	if r.clock.IsStale(images, r.apiThreshold) {
		if fetched := r.fetch(ctx, log, metrics.SourceAPI, r.api, market); len(fetched) > 0 {
			images = Merge(images, fetched)
			dirty = true
		}
	}

	outcome := metrics.RefreshUnchanged
	if dirty {
		outcome = metrics.RefreshUpdated
		err := store.Save(path, images)
		r.metrics.RecordSave(err)
		if err != nil {
			log.Error("failed to save snapshot", logger.String("path", path), logger.Error(err))
		}
	}
	r.metrics.RecordRefresh(market.Code(), outcome)

	log.Info("refresh finished",
		logger.String("outcome", outcome),
		logger.Int("loaded", loaded),
		logger.Int("images", len(images)),
		logger.Duration("elapsed", time.Since(start)))

	return images
}

// fetch asks src for images; failures only log and return nil.
func (r *Refresher) fetch(ctx context.Context, log logger.Logger, name string, src Source, market bing.Market) []wallpaper.Image {
	start := time.Now()
	images, err := src.Fetch(ctx, market)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		r.metrics.RecordSourceFetch(name, metrics.OutcomeError, elapsed)
		log.Warn("source fetch failed", logger.String("source", name), logger.Error(err))
		return nil
	case len(images) == 0:
		r.metrics.RecordSourceFetch(name, metrics.OutcomeEmpty, elapsed)
		log.Debug("source returned no images", logger.String("source", name))
		return nil
	default:
		r.metrics.RecordSourceFetch(name, metrics.OutcomeSuccess, elapsed)
		log.Debug("source fetched",
			logger.String("source", name),
			logger.Int("images", len(images)),
			logger.Duration("elapsed", elapsed))
		return images
	}
}
