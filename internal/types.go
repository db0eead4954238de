package internal

import (
	"context"
	stderrors "errors"
	"io"

	"sjsage522/patentworker/config"
	"sjsage522/patentworker/internal/browser"
	"sjsage522/patentworker/internal/crawler"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/services/cache"
	"sjsage522/patentworker/services/kiprisplus"
	"sjsage522/patentworker/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Launcher     browser.Launcher
	Cache        cache.CacheService
	Publisher    publisher.Publisher
	Bibliography crawler.BibliographySource

	closers []io.Closer
}

// NewDependencies builds the services cfg enables. The cache and the
// bibliography client are optional; the publisher is only opened when asked for.
func NewDependencies(ctx context.Context, cfg *config.Config, withPublisher bool) (*Dependencies, error) {
	deps := &Dependencies{}

	launcher := browser.NewPlaywrightLauncher(browser.Options{
		Headless:       cfg.BrowserHeadless,
		ExecutablePath: cfg.BrowserExecutablePath,
		Proxy:          cfg.BrowserProxy,
		UserAgent:      cfg.BrowserUserAgent,
	})
	deps.Launcher = launcher
	deps.closers = append(deps.closers, launcher)

	if cfg.MemcacheAddr != "" {
		mc := cache.NewMemcacheService(cfg.MemcacheAddr, "patent:")
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s unavailable, detail cache disabled: %v", cfg.MemcacheAddr, err)
		} else {
			deps.Cache = mc
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.KiprisAPIKey != "" {
		deps.Bibliography = kiprisplus.NewClient(cfg.KiprisAPIURL, cfg.KiprisAPIKey)
	}

	if withPublisher {
		pub, err := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB,
			cfg.RedisStreamPrefix, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Publisher = pub
		deps.closers = append(deps.closers, pub)
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStreamPrefix)
	}

	return deps, nil
}

// Pipeline wires the extraction stages over these dependencies
func (d *Dependencies) Pipeline(cfg *config.Config) *crawler.Pipeline {
	return crawler.NewPipeline(cfg, d.Launcher, d.Cache, d.Bibliography)
}

// Close releases everything NewDependencies opened, newest first
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return stderrors.Join(errs...)
}
