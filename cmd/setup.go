package main

import (
	"fmt"

	appconfig "github.com/fyerfyer/pickup-extractor/config"
	"github.com/fyerfyer/pickup-extractor/internal/cache"
	"github.com/fyerfyer/pickup-extractor/internal/database"
	"github.com/fyerfyer/pickup-extractor/internal/pickup"
	"github.com/fyerfyer/pickup-extractor/internal/report"
	"github.com/fyerfyer/pickup-extractor/internal/repository"
	"github.com/fyerfyer/pickup-extractor/internal/services"
	"github.com/sirupsen/logrus"
)

// app 组装好的服务及其资源释放函数
type app struct {
	service  *services.ExtractionService
	renderer *report.Renderer
	closers  []func() error
}

// Close 按创建的逆序释放资源
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.WithError(err).Warn("Failed to release resource")
		}
	}
}

// setupApp 根据配置创建提取服务
func setupApp(cfg *appconfig.Config, logger *logrus.Logger) (*app, error) {
	a := &app{}

	extractor := pickup.NewExtractor(
		pickup.WithContextRadius(cfg.Extract.ContextRadius),
		pickup.WithLogger(logger),
	)

	opts := []services.ExtractionOption{services.WithLogger(logger)}

	if cfg.Cache.Enable {
		resultCache, err := setupCache(cfg.Cache)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		a.closers = append(a.closers, resultCache.Close)
		opts = append(opts, services.WithCache(resultCache, cfg.Cache.CacheTTL()))
		logger.WithField("type", cfg.Cache.Type).Info("Result cache enabled")
	}

	if cfg.Database.Enable {
		db, err := database.Open(&database.Config{
			Type:         cfg.Database.Type,
			DSN:          cfg.Database.DSN,
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		opts = append(opts, services.WithRepository(repository.NewExtractionRepository(db)))
		logger.Info("Extraction audit log enabled")
	}

	a.service = services.NewExtractionService(extractor, opts...)
	a.renderer = report.NewRenderer(
		report.WithTitle(cfg.Report.Title),
		report.WithAuthor(cfg.Report.Author),
	)
	return a, nil
}

// setupCache 设置缓存服务
func setupCache(c appconfig.CacheConfig) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Type = c.Type
	cacheConfig.DefaultTTL = c.CacheTTL()
	if c.KeyPrefix != "" {
		cacheConfig.KeyPrefix = c.KeyPrefix
	}

	if c.Type == "redis" {
		cacheConfig.RedisAddr = c.Address
		cacheConfig.RedisPassword = c.Password
		cacheConfig.RedisDB = c.DB
	}

	return cache.NewCache(cacheConfig)
}
