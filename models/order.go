package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	TypeMarket    = "MARKET"
	TypeLimit     = "LIMIT"
	TypeStop      = "STOP"
	TypeStopLimit = "STOP_LIMIT"

	StatusPlacing  = "PLACING"
	StatusWorking  = "WORKING"
	StatusFilled   = "FILLED"
	StatusCanceled = "CANCELED"
	StatusRejected = "REJECTED"
	StatusInactive = "INACTIVE"
)

type Order struct {
	ID             string              `db:"id" json:"id"`
	AccountID      string              `db:"account_id" json:"accountId"`
	Symbol         string              `db:"symbol" json:"symbol"`
	Side           string              `db:"side" json:"side"`
	Type           string              `db:"type" json:"type"`
	Status         string              `db:"status" json:"status"`
	Quantity       decimal.Decimal     `db:"quantity" json:"quantity"`
	LimitPrice     decimal.NullDecimal `db:"limit_price" json:"limitPrice,omitempty"`
	StopPrice      decimal.NullDecimal `db:"stop_price" json:"stopPrice,omitempty"`
	TakeProfit     decimal.NullDecimal `db:"take_profit" json:"takeProfit,omitempty"`
	StopLoss       decimal.NullDecimal `db:"stop_loss" json:"stopLoss,omitempty"`
	FilledPrice    decimal.Decimal     `db:"filled_price" json:"filledPrice"`
	FilledQuantity decimal.Decimal     `db:"filled_quantity" json:"filledQuantity"`
	FilledAt       *time.Time          `db:"filled_at" json:"filledAt,omitempty"`
	IsClose        bool                `db:"is_close" json:"isClose"`
	CreatedAt      time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the order reached a sink state.
// Terminal orders never change again.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusFilled, StatusCanceled, StatusRejected, StatusInactive:
		return true
	}

	return false
}

func (o *Order) IsResting() bool {
	return o.Status == StatusPlacing || o.Status == StatusWorking
}

func OppositeSide(side string) string {
	if side == SideBuy {
		return SideSell
	}

	return SideBuy
}
