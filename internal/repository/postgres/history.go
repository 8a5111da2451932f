package postgres

import (
	"context"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/jmoiron/sqlx"
)

type HistoryRepository struct {
	conn *sqlx.DB
}

func NewHistoryRepository(conn *sqlx.DB) repository.HistoryRepo {
	return &HistoryRepository{conn: conn}
}

func (r *HistoryRepository) GetByAccount(ctx context.Context, accountID string) ([]models.ClosedTrade, error) {
	var trades []models.ClosedTrade

	if err := r.conn.SelectContext(ctx, &trades,
		"SELECT * FROM history WHERE account_id = $1 ORDER BY exit_at",
		accountID); err != nil {
		return nil, err
	}

	return trades, nil
}
