package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one sample of the account equity time series.
type EquityPoint struct {
	AccountID string          `bson:"account_id" json:"accountId"`
	Equity    decimal.Decimal `bson:"equity" json:"equity"`
	At        time.Time       `bson:"at" json:"at"`
}
