package redis

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const sitemapKey = "storefront:sitemap:xml"

// CacheRepo кэширует собранный sitemap.xml.
type CacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetSitemap возвращает документ из кэша или usecase.ErrCacheMiss.
func (c *CacheRepo) GetSitemap(ctx context.Context) ([]byte, error) {
	data, err := c.client.Client.Get(ctx, sitemapKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, usecase.ErrCacheMiss
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(data) == 0 {
		c.logger.Warnf("empty sitemap in cache, dropping key %s", sitemapKey)
		if err := c.client.Client.Del(ctx, sitemapKey).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, usecase.ErrCacheMiss
	}

	return data, nil
}

// SetSitemap сохраняет документ на cfg.SitemapTTL.
func (c *CacheRepo) SetSitemap(ctx context.Context, document []byte) error {
	if err := c.client.Client.Set(ctx, sitemapKey, document, c.cfg.SitemapTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteSitemap(ctx context.Context) error {
	if err := c.client.Client.Del(ctx, sitemapKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
