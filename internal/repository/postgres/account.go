package postgres

import (
	"context"
	"database/sql"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	conn *sqlx.DB
}

func NewAccountRepository(conn *sqlx.DB) repository.AccountRepo {
	return &AccountRepository{conn: conn}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if _, err := r.conn.NamedExecContext(ctx,
		"INSERT INTO accounts (id,owner_id,balance,created_at) VALUES (:id,:owner_id,:balance,:created_at)",
		account); err != nil {
		return err
	}

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account

	if err := r.conn.QueryRowxContext(ctx,
		"SELECT * FROM accounts WHERE id = $1 LIMIT 1", id).StructScan(&account); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}

func (r *AccountRepository) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*models.Account, error) {
	var account models.Account

	if err := r.conn.QueryRowxContext(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING *",
		delta, id).StructScan(&account); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}
