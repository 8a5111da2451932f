package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClosedTrade is the history row written whenever a fill closes all or
// part of a position. RealizedPL is computed against the closing fill
// price, never a separately fetched quote.
type ClosedTrade struct {
	ID         string          `db:"id" json:"id"`
	AccountID  string          `db:"account_id" json:"accountId"`
	Symbol     string          `db:"symbol" json:"symbol"`
	Side       string          `db:"side" json:"side"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	EntryPrice decimal.Decimal `db:"entry_price" json:"entryPrice"`
	ExitPrice  decimal.Decimal `db:"exit_price" json:"exitPrice"`
	RealizedPL decimal.Decimal `db:"realized_pl" json:"realizedPl"`
	EntryAt    time.Time       `db:"entry_at" json:"entryAt"`
	ExitAt     time.Time       `db:"exit_at" json:"exitAt"`
}
