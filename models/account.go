package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        string          `db:"id" json:"id"`
	OwnerID   string          `db:"owner_id" json:"ownerId"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}
