package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

const (
	defaultPostsLimit = 20
	maxPostsLimit     = 100
)

type BlogUseCase struct {
	blogRepo BlogRepository
}

func NewBlogUC(blogRepo BlogRepository) *BlogUseCase {
	return &BlogUseCase{blogRepo: blogRepo}
}

// ListPosts возвращает опубликованные записи, новые первыми.
func (b *BlogUseCase) ListPosts(ctx context.Context, req *ListPostsReq) ([]domain.BlogPost, error) {
	const op = "BlogUseCase.ListPosts"

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultPostsLimit
	case limit > maxPostsLimit:
		limit = maxPostsLimit
	}

	posts, err := b.blogRepo.ListPublished(ctx, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return posts, nil
}
