package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `
	id, slug, title, original_price, discounted_price, published, total_stock,
	variant_mapping_ids, created_at, updated_at
`

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
// Товары возвращаются с раскрытыми связками; ссылка без строки в variant_mappings остаётся голой.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// FindPublishedByIDs возвращает опубликованные товары из списка. Отсутствующие ID пропускаются.
func (p *ProductRepo) FindPublishedByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) AND published`

	products, err := p.query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// FindByIDs возвращает товары из списка независимо от публикации.
func (p *ProductRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	products, err := p.query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	products, err := p.query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(products) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return &products[0], nil
}

// ListPublished возвращает опубликованные товары, новые первыми.
func (p *ProductRepo) ListPublished(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE published ORDER BY created_at DESC, id LIMIT $1`

	products, err := p.query(ctx, query, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// Update сохраняет редактируемые из админки поля товара.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET title = $2, original_price = $3, discounted_price = $4, published = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := tr.Executor(ctx, p.pool).Exec(ctx, query,
		product.ID,
		product.Title,
		product.OriginalPrice,
		product.DiscountedPrice,
		product.Published,
		product.UpdatedAt,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

func (p *ProductRepo) SetTotalStock(ctx context.Context, id string, total int) error {
	query := `UPDATE products SET total_stock = $2 WHERE id = $1`

	if _, err := tr.Executor(ctx, p.pool).Exec(ctx, query, id, total); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// query читает товары и одним запросом раскрывает все их связки.
func (p *ProductRepo) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	q := tr.Executor(ctx, p.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		var model converter.ProductModel
		if err := row.Scan(
			&model.ID, &model.Slug, &model.Title, &model.OriginalPrice, &model.DiscountedPrice,
			&model.Published, &model.TotalStock, &model.VariantMappingIDs, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return domain.Product{}, err
		}
		return converter.ToProduct(&model), nil
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for i := range products {
		ids = append(ids, products[i].MappingIDs()...)
	}

	mappings, err := findMappings(ctx, q, ids, len(ids))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.VariantMapping, len(mappings))
	for i := range mappings {
		byID[mappings[i].ID] = &mappings[i]
	}

	for i := range products {
		for j, ref := range products[i].Mappings {
			if m, ok := byID[ref.ID]; ok {
				mapping := *m
				products[i].Mappings[j].Mapping = &mapping
			}
		}
	}

	return products, nil
}
