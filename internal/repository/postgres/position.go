package postgres

import (
	"context"
	"database/sql"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PositionRepository struct {
	conn *sqlx.DB
}

func NewPositionRepository(conn *sqlx.DB) repository.PositionRepo {
	return &PositionRepository{conn: conn}
}

func (r *PositionRepository) GetByID(ctx context.Context, id string) (*models.Position, error) {
	var position models.Position

	if err := r.conn.QueryRowxContext(ctx,
		"SELECT * FROM positions WHERE id = $1 LIMIT 1", id).StructScan(&position); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &position, nil
}

func (r *PositionRepository) GetBySymbol(ctx context.Context, accountID, symbol string) (*models.Position, error) {
	var position models.Position

	if err := r.conn.QueryRowxContext(ctx,
		"SELECT * FROM positions WHERE account_id = $1 AND symbol = $2 LIMIT 1",
		accountID, symbol).StructScan(&position); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &position, nil
}

func (r *PositionRepository) GetOpen(ctx context.Context, accountID string) ([]models.Position, error) {
	var positions []models.Position

	if err := r.conn.SelectContext(ctx, &positions,
		"SELECT * FROM positions WHERE account_id = $1 ORDER BY created_at",
		accountID); err != nil {
		return nil, err
	}

	return positions, nil
}

func (r *PositionRepository) SetBrackets(ctx context.Context, id string, takeProfit, stopLoss decimal.NullDecimal) error {
	res, err := r.conn.ExecContext(ctx,
		"UPDATE positions SET take_profit = $1, stop_loss = $2, updated_at = now() WHERE id = $3",
		takeProfit, stopLoss, id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
