package postgres

import (
	"context"
	"database/sql"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/jmoiron/sqlx"
)

const orderColumns = "id,account_id,symbol,side,type,status,quantity,limit_price,stop_price,take_profit,stop_loss,filled_price,filled_quantity,filled_at,is_close,created_at,updated_at"

type OrderRepository struct {
	conn *sqlx.DB
}

func NewOrderRepository(conn *sqlx.DB) repository.OrderRepo {
	return &OrderRepository{conn: conn}
}

func (r *OrderRepository) Store(ctx context.Context, order *models.Order) error {
	if _, err := r.conn.NamedExecContext(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES (:id,:account_id,:symbol,:side,:type,:status,:quantity,:limit_price,:stop_price,:take_profit,:stop_loss,:filled_price,:filled_quantity,:filled_at,:is_close,:created_at,:updated_at)",
		order); err != nil {
		return err
	}

	return nil
}

// Update writes only while the stored row is still resting. A cancel
// or modify racing a fill loses here instead of reverting FILLED.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	res, err := r.conn.ExecContext(ctx,
		"UPDATE orders SET status = $1, quantity = $2, limit_price = $3, stop_price = $4, take_profit = $5, stop_loss = $6, filled_price = $7, filled_quantity = $8, filled_at = $9, updated_at = $10 WHERE id = $11 AND status IN ($12,$13)",
		order.Status, order.Quantity, order.LimitPrice, order.StopPrice, order.TakeProfit, order.StopLoss,
		order.FilledPrice, order.FilledQuantity, order.FilledAt, order.UpdatedAt,
		order.ID, models.StatusPlacing, models.StatusWorking)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order

	if err := r.conn.QueryRowxContext(ctx,
		"SELECT * FROM orders WHERE id = $1 LIMIT 1", id).StructScan(&order); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *OrderRepository) GetOpen(ctx context.Context, accountID string) ([]models.Order, error) {
	var orders []models.Order

	if err := r.conn.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE account_id = $1 AND status IN ($2,$3) ORDER BY created_at DESC",
		accountID, models.StatusPlacing, models.StatusWorking); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) GetTerminal(ctx context.Context, accountID string) ([]models.Order, error) {
	var orders []models.Order

	if err := r.conn.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE account_id = $1 AND status IN ($2,$3,$4,$5) ORDER BY updated_at DESC",
		accountID, models.StatusFilled, models.StatusCanceled, models.StatusRejected, models.StatusInactive); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) GetResting(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order

	if err := r.conn.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE status = $1 AND type <> $2 ORDER BY created_at",
		models.StatusWorking, models.TypeMarket); err != nil {
		return nil, err
	}

	return orders, nil
}
