package usecases

import (
	"context"

	"papertrade/models"

	"github.com/shopspring/decimal"
)

//go:generate mockery --case=snake --name=QuoteSource
//go:generate mockery --case=snake --name=HostSink

// QuoteSource supplies bid/ask/last per symbol on demand. Calls are
// expected to honor ctx deadlines.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) ([]models.Quote, error)
}

// HostSink is the push interface toward the hosting application. The
// engine depends on nothing beyond these callbacks; failures inside
// them are isolated and never unwind a committed mutation.
type HostSink interface {
	ConnectionOpened()
	ConnectionClosed()
	ConnectionError(err error)
	SessionEstablished(accountID string)
	OrderUpdate(order *models.Order)
	PositionUpdate(position *models.Position)
	ExecutionUpdate(execution *models.Execution)
	PLUpdate(positionID string, unrealizedPL, realizedPL decimal.Decimal)
	EquityUpdate(series []models.EquityPoint)
}

// QuoteListener receives the periodic quote pushes of a subscription.
type QuoteListener func(quotes []models.Quote)
