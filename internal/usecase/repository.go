package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type ProductRepository interface {
	// FindPublishedByIDs возвращает опубликованные товары с раскрытыми связками и вариантами.
	FindPublishedByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// FindByIDs возвращает товары независимо от публикации, со связками и вариантами.
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListPublished(ctx context.Context, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	SetTotalStock(ctx context.Context, id string, total int) error
}

type VariantMappingRepository interface {
	FindByIDs(ctx context.Context, ids []string, limit int) ([]domain.VariantMapping, error)
	// SetQuantity меняет только колонку quantity и только если в базе всё ещё expected.
	SetQuantity(ctx context.Context, id string, expected, quantity int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error
}

type BlogRepository interface {
	ListPublished(ctx context.Context, limit int) ([]domain.BlogPost, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReturnToPending(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetSitemap(ctx context.Context) ([]byte, error)
	SetSitemap(ctx context.Context, document []byte) error
	DeleteSitemap(ctx context.Context) error
}

type SitemapStorage interface {
	Upload(ctx context.Context, document []byte) (*PublishSitemapRes, error)
}

// TxManager выполняет fn в одной транзакции БД; транзакция доступна репозиториям через ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
