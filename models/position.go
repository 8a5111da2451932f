package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the net open exposure to one symbol for one account.
// A position whose quantity nets to zero is deleted, never stored
// with quantity 0. Version guards concurrent read-modify-write.
type Position struct {
	ID         string              `db:"id" json:"id"`
	AccountID  string              `db:"account_id" json:"accountId"`
	Symbol     string              `db:"symbol" json:"symbol"`
	Side       string              `db:"side" json:"side"`
	Quantity   decimal.Decimal     `db:"quantity" json:"quantity"`
	AvgPrice   decimal.Decimal     `db:"avg_price" json:"avgPrice"`
	TakeProfit decimal.NullDecimal `db:"take_profit" json:"takeProfit,omitempty"`
	StopLoss   decimal.NullDecimal `db:"stop_loss" json:"stopLoss,omitempty"`
	Version    int64               `db:"version" json:"-"`

	// ClosedAt is never stored: closed rows are deleted. It is set only
	// on the copy pushed to the host when a fill removes the position.
	ClosedAt *time.Time `db:"-" json:"closedAt,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UnrealizedPL marks the open quantity against the quote side that
// would close it: bid for longs, ask for shorts.
func (p *Position) UnrealizedPL(q *Quote) decimal.Decimal {
	if p.Side == SideBuy {
		return q.Bid.Sub(p.AvgPrice).Mul(p.Quantity)
	}

	return p.AvgPrice.Sub(q.Ask).Mul(p.Quantity)
}
