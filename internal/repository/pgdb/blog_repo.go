package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type BlogRepo struct {
	pool *pgxpool.Pool
}

func NewBlogRepo(pool *pgxpool.Pool) *BlogRepo {
	return &BlogRepo{pool: pool}
}

// ListPublished возвращает опубликованные записи, новые первыми.
func (b *BlogRepo) ListPublished(ctx context.Context, limit int) ([]domain.BlogPost, error) {
	query := `
		SELECT id, slug, title, excerpt, published, published_at, created_at, updated_at
		FROM blog_posts
		WHERE published
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := b.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BlogPost, error) {
		var model converter.BlogPostModel
		if err := row.Scan(
			&model.ID, &model.Slug, &model.Title, &model.Excerpt, &model.Published,
			&model.PublishedAt, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return domain.BlogPost{}, err
		}
		return converter.ToBlogPost(&model), nil
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return posts, nil
}
