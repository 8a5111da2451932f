package postgres

import (
	"context"
	"database/sql"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// LedgerRepository persists one fill's mutation set in a single
// transaction. It executes what the engine computed and nothing else;
// the netting arithmetic never runs in SQL.
type LedgerRepository struct {
	conn *sqlx.DB
}

func NewLedgerRepository(conn *sqlx.DB) repository.Ledger {
	return &LedgerRepository{conn: conn}
}

func (r *LedgerRepository) ApplyFill(ctx context.Context, m *repository.FillMutation) error {
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// the status predicate loses against a writer that already filled
	// or canceled this order; the whole mutation rolls back then
	o := m.Order
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, filled_price = $2, filled_quantity = $3, filled_at = $4, updated_at = $5 WHERE id = $6 AND status IN ($7,$8)",
		o.Status, o.FilledPrice, o.FilledQuantity, o.FilledAt, o.UpdatedAt, o.ID, models.StatusPlacing, models.StatusWorking)
	if err != nil {
		return err
	}
	if err := guardAffected(res); err != nil {
		return err
	}

	if _, err := tx.NamedExecContext(ctx,
		"INSERT INTO executions (id,order_id,account_id,symbol,side,price,quantity,executed_at) VALUES (:id,:order_id,:account_id,:symbol,:side,:price,:quantity,:executed_at)",
		m.Execution); err != nil {
		return err
	}

	if err := r.applyPosition(ctx, tx, m); err != nil {
		return err
	}

	for i := range m.Trades {
		if _, err := tx.NamedExecContext(ctx,
			"INSERT INTO history (id,account_id,symbol,side,quantity,entry_price,exit_price,realized_pl,entry_at,exit_at) VALUES (:id,:account_id,:symbol,:side,:quantity,:entry_price,:exit_price,:realized_pl,:entry_at,:exit_at)",
			&m.Trades[i]); err != nil {
			return err
		}
	}

	if !m.EquityDelta.IsZero() {
		if _, err := tx.ExecContext(ctx,
			"UPDATE accounts SET balance = balance + $1 WHERE id = $2",
			m.EquityDelta, m.AccountID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *LedgerRepository) applyPosition(ctx context.Context, tx *sqlx.Tx, m *repository.FillMutation) error {
	if m.DeletePositionID != "" {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM positions WHERE id = $1 AND version = $2",
			m.DeletePositionID, m.PriorVersion)
		if err != nil {
			return err
		}
		if err := guardAffected(res); err != nil {
			return err
		}
	}

	if m.UpsertPosition == nil {
		return nil
	}

	if m.InsertPosition {
		_, err := tx.NamedExecContext(ctx,
			"INSERT INTO positions (id,account_id,symbol,side,quantity,avg_price,take_profit,stop_loss,version,created_at,updated_at) VALUES (:id,:account_id,:symbol,:side,:quantity,:avg_price,:take_profit,:stop_loss,:version,:created_at,:updated_at)",
			m.UpsertPosition)
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			// another writer opened the position first
			return repository.ErrVersionConflict
		}
		return err
	}

	p := m.UpsertPosition
	res, err := tx.ExecContext(ctx,
		"UPDATE positions SET side = $1, quantity = $2, avg_price = $3, version = $4, updated_at = $5 WHERE id = $6 AND version = $7",
		p.Side, p.Quantity, p.AvgPrice, p.Version, p.UpdatedAt, p.ID, m.PriorVersion)
	if err != nil {
		return err
	}

	return guardAffected(res)
}

func guardAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrVersionConflict
	}

	return nil
}
