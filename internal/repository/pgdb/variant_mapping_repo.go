package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// selectMappings возвращает связки вместе с вариантом; вариант может отсутствовать.
const selectMappings = `
	SELECT
		vm.id, vm.product_id, vm.variant_id, vm.quantity, vm.price_override, vm.is_default, vm.is_active,
		v.name, v.price, v.sku, v.category
	FROM variant_mappings vm
	LEFT JOIN variants v ON v.id = vm.variant_id
	WHERE vm.id = ANY($1)
	ORDER BY array_position($1::text[], vm.id)
	LIMIT $2
`

// VariantMappingRepo реализует репозиторий связок товар–вариант поверх PostgreSQL.
type VariantMappingRepo struct {
	pool *pgxpool.Pool
}

func NewVariantMappingRepo(pool *pgxpool.Pool) *VariantMappingRepo {
	return &VariantMappingRepo{pool: pool}
}

// FindByIDs возвращает не более limit связок. Отсутствующие ID пропускаются.
func (r *VariantMappingRepo) FindByIDs(ctx context.Context, ids []string, limit int) ([]domain.VariantMapping, error) {
	mappings, err := findMappings(ctx, tr.Executor(ctx, r.pool), ids, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return mappings, nil
}

// SetQuantity записывает остаток, только если он всё ещё равен expected.
func (r *VariantMappingRepo) SetQuantity(ctx context.Context, id string, expected, quantity int) error {
	query := `
		UPDATE variant_mappings
		SET quantity = $3
		WHERE id = $1 AND quantity = $2
	`

	tag, err := tr.Executor(ctx, r.pool).Exec(ctx, query, id, expected, quantity)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrStockConflict)
	}

	return nil
}

func findMappings(ctx context.Context, q tr.Querier, ids []string, limit int) ([]domain.VariantMapping, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, selectMappings, ids, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.VariantMapping, 0, len(ids))
	for rows.Next() {
		var model converter.VariantMappingModel
		if err := rows.Scan(
			&model.ID, &model.ProductID, &model.VariantID, &model.Quantity,
			&model.PriceOverride, &model.IsDefault, &model.IsActive,
			&model.VariantName, &model.VariantPrice, &model.VariantSKU, &model.VariantCategory,
		); err != nil {
			return nil, err
		}

		result = append(result, converter.ToVariantMapping(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
