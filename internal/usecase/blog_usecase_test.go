package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlog_ListPosts(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeBlogRepo{}
	for i := 0; i < 150; i++ {
		repo.posts = append(repo.posts, domain.BlogPost{
			ID:        fmt.Sprintf("b%d", i),
			Slug:      fmt.Sprintf("post-%d", i),
			Published: i%10 != 0,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	uc := NewBlogUC(repo)

	posts, err := uc.ListPosts(context.Background(), NewListPostsReq(0))
	require.NoError(t, err)
	require.Len(t, posts, defaultPostsLimit)
	assert.Equal(t, "b149", posts[0].ID)

	posts, err = uc.ListPosts(context.Background(), NewListPostsReq(1000))
	require.NoError(t, err)
	assert.Len(t, posts, maxPostsLimit)

	repo.err = errors.New("db down")
	_, err = uc.ListPosts(context.Background(), NewListPostsReq(5))
	assert.Error(t, err)
}
