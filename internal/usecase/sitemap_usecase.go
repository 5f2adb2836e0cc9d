package usecase

import (
	"context"
	"encoding/xml"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const (
	sitemapXMLNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

	// sitemapEntriesLimit — предел записей одной категории.
	sitemapEntriesLimit = 10000

	productChangeFreq = "weekly"
	productPriority   = 0.9
	blogChangeFreq    = "weekly"
	blogPriority      = 0.7
)

// ErrCacheMiss возвращается CacheRepository, если значения нет.
var ErrCacheMiss = errors.New("cache miss")

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SitemapUseCase собирает sitemap.xml из статических маршрутов, товаров и записей блога.
type SitemapUseCase struct {
	productRepo ProductRepository
	blogRepo    BlogRepository
	cacheRepo   CacheRepository
	storage     SitemapStorage
	settings    SitemapSettings
	logger      logger.Logger
	now         clock
}

func NewSitemapUC(
	productRepo ProductRepository,
	blogRepo BlogRepository,
	cacheRepo CacheRepository,
	storage SitemapStorage,
	settings SitemapSettings,
	logger logger.Logger,
) *SitemapUseCase {
	if settings.TrailingSlash == "" {
		settings.TrailingSlash = TrailingSlashPreserve
	}

	return &SitemapUseCase{
		productRepo: productRepo,
		blogRepo:    blogRepo,
		cacheRepo:   cacheRepo,
		storage:     storage,
		settings:    settings,
		logger:      logger,
		now:         time.Now,
	}
}

// Sitemap возвращает документ из кэша, а при промахе собирает его и кладёт в кэш.
func (s *SitemapUseCase) Sitemap(ctx context.Context) ([]byte, error) {
	const op = "SitemapUseCase.Sitemap"

	cached, err := s.cacheRepo.GetSitemap(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warnf("Failed to read sitemap from cache: %v", e.Wrap(op, err))
	}

	document, err := s.Build(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := s.cacheRepo.SetSitemap(ctx, document); err != nil {
		s.logger.Warnf("Failed to cache sitemap: %v", e.Wrap(op, err))
	}

	return document, nil
}

// Publish собирает свежий документ и выгружает его в объектное хранилище.
func (s *SitemapUseCase) Publish(ctx context.Context) (*PublishSitemapRes, error) {
	const op = "SitemapUseCase.Publish"

	document, err := s.Build(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := s.storage.Upload(ctx, document)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := s.cacheRepo.SetSitemap(ctx, document); err != nil {
		s.logger.Warnf("Failed to cache sitemap: %v", e.Wrap(op, err))
	}

	s.logger.Infof("sitemap published to %s/%s (%d bytes)", res.Bucket, res.Key, res.Size)
	return res, nil
}

// Build собирает документ. Ошибка выборки товаров или блога даёт пустой набор для этой категории.
func (s *SitemapUseCase) Build(ctx context.Context) ([]byte, error) {
	const op = "SitemapUseCase.Build"

	now := s.now().UTC()
	set := urlSet{XMLNS: sitemapXMLNS}

	for _, route := range s.settings.StaticRoutes {
		set.URLs = append(set.URLs, s.entry(route.Path, now, route.ChangeFreq, route.Priority))
	}

	products, err := s.productRepo.ListPublished(ctx, sitemapEntriesLimit)
	if err != nil {
		s.logger.Warnf("sitemap: products skipped: %v", e.Wrap(op, err))
		products = nil
	}
	for i := range products {
		p := &products[i]
		if !p.Published || p.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, s.entry("/products/"+p.Slug, lastModOrNow(p.LastModified(), now), productChangeFreq, productPriority))
	}

	posts, err := s.blogRepo.ListPublished(ctx, sitemapEntriesLimit)
	if err != nil {
		s.logger.Warnf("sitemap: blog posts skipped: %v", e.Wrap(op, err))
		posts = nil
	}
	for i := range posts {
		post := &posts[i]
		if !post.Published || post.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, s.entry("/blog/"+post.Slug, lastModOrNow(post.LastModified(), now), blogChangeFreq, blogPriority))
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return append([]byte(xml.Header), body...), nil
}

func (s *SitemapUseCase) entry(route string, lastMod time.Time, changeFreq string, priority float64) sitemapURL {
	return sitemapURL{
		Loc:        s.URL(route),
		LastMod:    lastMod.Format(time.RFC3339),
		ChangeFreq: changeFreq,
		Priority:   formatPriority(priority),
	}
}

// URL строит абсолютный адрес: базовый URL + базовый путь + маршрут, с учётом режима завершающего слэша.
func (s *SitemapUseCase) URL(route string) string {
	path := s.settings.BasePath + "/" + strings.TrimLeft(route, "/")
	if route == "" || route == "/" {
		path = s.settings.BasePath + "/"
	}

	switch s.settings.TrailingSlash {
	case TrailingSlashAlways:
		if !strings.HasSuffix(path, "/") {
			path += "/"
		}
	case TrailingSlashNever:
		if len(path) > 1 {
			path = strings.TrimRight(path, "/")
		}
	}

	return strings.TrimRight(s.settings.BaseURL, "/") + path
}

// formatPriority ограничивает приоритет диапазоном [0, 1] и пишет его с точностью до сотых.
func formatPriority(priority float64) string {
	if math.IsNaN(priority) {
		priority = 0
	}
	priority = math.Round(min(max(priority, 0), 1)*100) / 100

	out := strconv.FormatFloat(priority, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

func lastModOrNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}
