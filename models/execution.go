package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Execution is an append-only fill record. Rows are never updated.
type Execution struct {
	ID         string          `db:"id" json:"id"`
	OrderID    string          `db:"order_id" json:"orderId"`
	AccountID  string          `db:"account_id" json:"accountId"`
	Symbol     string          `db:"symbol" json:"symbol"`
	Side       string          `db:"side" json:"side"`
	Price      decimal.Decimal `db:"price" json:"price"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	ExecutedAt time.Time       `db:"executed_at" json:"executedAt"`
}
