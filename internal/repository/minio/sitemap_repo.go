package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const (
	sitemapContentType  = "application/xml"
	sitemapCacheControl = "public, max-age=3600"
)

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// SitemapRepo публикует sitemap.xml в бакет MinIO.
type SitemapRepo struct {
	mc  objectPutter
	cfg *cfg.MinIOCfg
}

func NewSitemapRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *SitemapRepo {
	return &SitemapRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload перезаписывает объект cfg.SitemapObjectKey.
func (s *SitemapRepo) Upload(ctx context.Context, document []byte) (*usecase.PublishSitemapRes, error) {
	info, err := s.mc.PutObject(ctx, s.cfg.BucketName, s.cfg.SitemapObjectKey,
		bytes.NewReader(document), int64(len(document)), minio.PutObjectOptions{
			ContentType:  sitemapContentType,
			CacheControl: sitemapCacheControl,
		})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return usecase.NewPublishSitemapRes(info.Bucket, info.Key, info.Size, info.ETag), nil
}
