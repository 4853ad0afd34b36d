package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/cache"
	"github.com/sells-group/idea-research/internal/db"
	"github.com/sells-group/idea-research/internal/resilience"
	"github.com/sells-group/idea-research/internal/scrape"
	"github.com/sells-group/idea-research/internal/search"
	"github.com/sells-group/idea-research/internal/store"
	"github.com/sells-group/idea-research/internal/workflow"
	"github.com/sells-group/idea-research/pkg/jina"
)

// researchEnv holds the store, cache and controller needed by the run and
// serve commands.
type researchEnv struct {
	Store      store.Store
	Cache      cache.Cache
	Controller *workflow.Controller

	closers []func()
}

// Close releases everything opened by initEnv, newest first.
func (e *researchEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// initEnv opens the run store and content cache, builds the scrape chain and
// the stage handlers, and returns a ready controller. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*researchEnv, error) {
	env := &researchEnv{}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, func() { _ = st.Close() })
	if err := st.Migrate(ctx); err != nil {
		env.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	env.Store = st

	c, closeCache, err := initCache(ctx)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.closers = append(env.closers, closeCache)
	env.Cache = c

	readerOpts := []jina.Option{
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithTimeout(time.Duration(cfg.Scrape.TimeoutSecs) * time.Second),
		jina.WithRetry(resilience.WithRetries(cfg.Scrape.Retries, "jina_reader")),
	}
	searchOpts := []jina.Option{
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithTimeout(time.Duration(cfg.Search.TimeoutSecs) * time.Second),
		jina.WithRetry(resilience.WithRetries(cfg.Search.Retries, "jina_search")),
	}
	if cfg.Jina.SearchBaseURL != "" {
		searchOpts = append(searchOpts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
	}
	reader := jina.NewClient(cfg.Jina.Key, readerOpts...)
	searcher := jina.NewClient(cfg.Jina.Key, searchOpts...)

	// Local fetch first, Jina Reader for blocked or JS-only pages.
	var scraper scrape.Scraper = scrape.NewChain(
		scrape.NewPathMatcher(cfg.Scrape.ExcludePaths),
		scrape.NewLocalScraper(time.Duration(cfg.Scrape.TimeoutSecs)*time.Second, cfg.Scrape.UserAgent),
		scrape.NewJinaAdapter(reader),
	)
	if c != nil {
		scraper = scrape.NewCached(scraper, c)
	}

	finder := search.NewDiscoverer(search.NewJinaSearcher(searcher), cfg.Search.MaxSources)

	handlers, err := workflow.Stages(cfg, finder, scraper)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "build stages")
	}
	env.Controller = workflow.NewController(st, handlers...)
	return env, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "idea-research.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
		if err != nil {
			return nil, eris.Wrap(err, "connect run store")
		}
		return store.NewPostgres(pool), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initCache opens the configured content cache. A nil cache with a no-op
// closer is returned for driver "none".
func initCache(ctx context.Context) (cache.Cache, func(), error) {
	ttl := cache.WithTTL(cfg.Cache.TTL())
	switch cfg.Cache.Driver {
	case "none":
		zap.L().Debug("content cache disabled")
		return nil, func() {}, nil
	case "memory":
		return cache.NewMemory(ttl), func() {}, nil
	case "sqlite":
		c, err := cache.NewSQLite(ctx, cfg.Cache.DSN, ttl)
		if err != nil {
			return nil, nil, eris.Wrap(err, "open sqlite cache")
		}
		return c, func() { _ = c.Close() }, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Cache.DSN, cfg.Store.Pool)
		if err != nil {
			return nil, nil, eris.Wrap(err, "connect cache")
		}
		c := cache.NewPostgres(pool, ttl)
		if err := c.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, eris.Wrap(err, "migrate cache")
		}
		return c, pool.Close, nil
	default:
		return nil, nil, eris.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}
