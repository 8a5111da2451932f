package structs

import (
	"github.com/shopspring/decimal"
)

// PreOrder is the client payload submitted to the router. Price, when
// set, overrides quote-based pricing for market orders.
type PreOrder struct {
	AccountID  string              `json:"accountId"`
	Symbol     string              `json:"symbol"`
	Side       string              `json:"side"`
	Type       string              `json:"type"`
	Quantity   decimal.Decimal     `json:"quantity"`
	Price      decimal.NullDecimal `json:"price,omitempty"`
	LimitPrice decimal.NullDecimal `json:"limitPrice,omitempty"`
	StopPrice  decimal.NullDecimal `json:"stopPrice,omitempty"`
	TakeProfit decimal.NullDecimal `json:"takeProfit,omitempty"`
	StopLoss   decimal.NullDecimal `json:"stopLoss,omitempty"`
	IsClose    bool                `json:"isClose"`
}

type Result struct {
	OrderID   string `json:"orderId,omitempty"`
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message,omitempty"`
}

func Failure(msg string) *Result {
	return &Result{Succeeded: false, Message: msg}
}

func Success(orderID string) *Result {
	return &Result{OrderID: orderID, Succeeded: true}
}

// OrderChanges mutates a resting order; nil fields are left untouched.
type OrderChanges struct {
	Quantity   *decimal.Decimal    `json:"quantity,omitempty"`
	LimitPrice decimal.NullDecimal `json:"limitPrice,omitempty"`
	StopPrice  decimal.NullDecimal `json:"stopPrice,omitempty"`
	TakeProfit decimal.NullDecimal `json:"takeProfit,omitempty"`
	StopLoss   decimal.NullDecimal `json:"stopLoss,omitempty"`
}
