package postgres

import (
	"context"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/jmoiron/sqlx"
)

type ExecutionRepository struct {
	conn *sqlx.DB
}

func NewExecutionRepository(conn *sqlx.DB) repository.ExecutionRepo {
	return &ExecutionRepository{conn: conn}
}

func (r *ExecutionRepository) GetByAccount(ctx context.Context, accountID string) ([]models.Execution, error) {
	var executions []models.Execution

	if err := r.conn.SelectContext(ctx, &executions,
		"SELECT * FROM executions WHERE account_id = $1 ORDER BY executed_at",
		accountID); err != nil {
		return nil, err
	}

	return executions, nil
}
