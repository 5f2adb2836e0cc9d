package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) error {
	model, err := converter.ToOrderModel(order)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO orders (id, name, email, phone, address, note, items, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)
	`

	_, err = tr.Executor(ctx, o.pool).Exec(ctx, query,
		model.ID,
		model.Name,
		model.Email,
		model.Phone,
		model.Address,
		model.Note,
		model.Items,
		model.Total,
		model.Status,
		model.CreatedAt,
	)
	if err != nil {
		if postgresDuplicate(err) {
			return fmt.Errorf("%s: order with id %s already exists", whereami.WhereAmI(), order.ID)
		}
		return fmt.Errorf("%s: failed to insert order: %w", whereami.WhereAmI(), err)
	}

	return nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id::text, name, email, phone, address, note, items, total::text, status, created_at
		FROM orders
		WHERE id = $1
	`

	var model converter.OrderModel
	err := tr.Executor(ctx, o.pool).QueryRow(ctx, query, id).Scan(
		&model.ID, &model.Name, &model.Email, &model.Phone, &model.Address, &model.Note,
		&model.Items, &model.Total, &model.Status, &model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	order, err := converter.ToOrder(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return order, nil
}

// UpdateStatus переводит заказ из from в to. Если статус уже другой, возвращает ErrOrderAlreadyCancelled.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	q := tr.Executor(ctx, o.pool)
	tag, err := q.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if !exists {
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	return e.Wrap(whereami.WhereAmI(), e.ErrOrderAlreadyCancelled)
}
