package usecases

import (
	"time"

	"papertrade/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fill is one whole-quantity execution handed to the netting engine.
// Quantity is always positive; zero-quantity fills are rejected by the
// router and never reach this code.
type Fill struct {
	Side     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
	At       time.Time
}

// NettingResult is the precomputed effect of applying a fill to the
// account's position for one symbol.
type NettingResult struct {
	// Position is the open position after the fill, nil when the fill
	// nets the book flat for the symbol.
	Position *models.Position

	// Opened is true when Position is a fresh row (no prior, or a
	// flip); Removed is true when the prior position row goes away
	// (full close or flip).
	Opened  bool
	Removed bool

	Trades     []models.ClosedTrade
	RealizedPL decimal.Decimal
}

// netPosition applies fill f to the prior position (nil when flat).
//
// Same-side fills add exposure at the weighted average price and
// realize nothing. Opposite-side fills reduce, close or flip; the
// realized P&L of the closed quantity is always computed against the
// fill price:
//
//	long:  (fill - avg) * closedQty
//	short: (avg - fill) * closedQty
//
// Only the closed portion posts to equity; a flip's new exposure stays
// unrealized.
func netPosition(prior *models.Position, accountID, symbol string, f Fill) NettingResult {
	if prior == nil {
		return NettingResult{
			Position: openPosition(accountID, symbol, f.Side, f.Quantity, f.Price, f.At),
			Opened:   true,
		}
	}

	if prior.Side == f.Side {
		next := *prior
		newQty := prior.Quantity.Add(f.Quantity)
		notional := prior.AvgPrice.Mul(prior.Quantity).Add(f.Price.Mul(f.Quantity))

		next.Quantity = newQty
		next.AvgPrice = notional.Div(newQty)
		next.Version = prior.Version + 1
		next.UpdatedAt = f.At

		return NettingResult{Position: &next}
	}

	net := prior.Quantity.Sub(f.Quantity)

	switch {
	case net.IsPositive():
		// partial close, position shrinks
		next := *prior
		next.Quantity = net
		next.Version = prior.Version + 1
		next.UpdatedAt = f.At

		pl := realized(prior.Side, prior.AvgPrice, f.Price, f.Quantity)

		return NettingResult{
			Position:   &next,
			Trades:     []models.ClosedTrade{closedTrade(prior, f, f.Quantity, pl)},
			RealizedPL: pl,
		}

	case net.IsZero():
		pl := realized(prior.Side, prior.AvgPrice, f.Price, prior.Quantity)

		return NettingResult{
			Removed:    true,
			Trades:     []models.ClosedTrade{closedTrade(prior, f, prior.Quantity, pl)},
			RealizedPL: pl,
		}

	default:
		// flip: close the whole prior position, open the remainder on
		// the fill side at the fill price
		pl := realized(prior.Side, prior.AvgPrice, f.Price, prior.Quantity)

		return NettingResult{
			Position:   openPosition(accountID, symbol, f.Side, net.Neg(), f.Price, f.At),
			Opened:     true,
			Removed:    true,
			Trades:     []models.ClosedTrade{closedTrade(prior, f, prior.Quantity, pl)},
			RealizedPL: pl,
		}
	}
}

func realized(side string, avgPrice, fillPrice, qty decimal.Decimal) decimal.Decimal {
	if side == models.SideBuy {
		return fillPrice.Sub(avgPrice).Mul(qty)
	}

	return avgPrice.Sub(fillPrice).Mul(qty)
}

func openPosition(accountID, symbol, side string, qty, price decimal.Decimal, at time.Time) *models.Position {
	return &models.Position{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		AvgPrice:  price,
		Version:   1,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func closedTrade(prior *models.Position, f Fill, qty, pl decimal.Decimal) models.ClosedTrade {
	return models.ClosedTrade{
		ID:         uuid.NewString(),
		AccountID:  prior.AccountID,
		Symbol:     prior.Symbol,
		Side:       prior.Side,
		Quantity:   qty,
		EntryPrice: prior.AvgPrice,
		ExitPrice:  f.Price,
		RealizedPL: pl,
		EntryAt:    prior.CreatedAt,
		ExitAt:     f.At,
	}
}
