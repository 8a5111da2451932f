package repository

import (
	"context"
	"errors"

	"papertrade/models"

	"github.com/shopspring/decimal"
)

//go:generate mockery --case=snake --name=AccountRepo
//go:generate mockery --case=snake --name=OrderRepo
//go:generate mockery --case=snake --name=PositionRepo
//go:generate mockery --case=snake --name=ExecutionRepo
//go:generate mockery --case=snake --name=HistoryRepo
//go:generate mockery --case=snake --name=Ledger

var (
	ErrNotFound = errors.New("repository: not found")

	// ErrVersionConflict is returned when a guarded position write
	// observes a version other than the one it read.
	ErrVersionConflict = errors.New("repository: version conflict")
)

type AccountRepo interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*models.Account, error)
}

type OrderRepo interface {
	Store(ctx context.Context, order *models.Order) error
	// Update mutates a resting order. Once the stored row is terminal
	// it writes nothing and returns ErrNotFound; status moves are
	// monotonic.
	Update(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetOpen(ctx context.Context, accountID string) ([]models.Order, error)
	GetTerminal(ctx context.Context, accountID string) ([]models.Order, error)
	GetResting(ctx context.Context) ([]models.Order, error)
}

type PositionRepo interface {
	GetByID(ctx context.Context, id string) (*models.Position, error)
	GetBySymbol(ctx context.Context, accountID, symbol string) (*models.Position, error)
	GetOpen(ctx context.Context, accountID string) ([]models.Position, error)
	SetBrackets(ctx context.Context, id string, takeProfit, stopLoss decimal.NullDecimal) error
}

type ExecutionRepo interface {
	GetByAccount(ctx context.Context, accountID string) ([]models.Execution, error)
}

type HistoryRepo interface {
	GetByAccount(ctx context.Context, accountID string) ([]models.ClosedTrade, error)
}

type EquityRepo interface {
	Append(ctx context.Context, point *models.EquityPoint) error
	Series(ctx context.Context, accountID string) ([]models.EquityPoint, error)
}

// FillMutation carries the complete, precomputed effect of one fill.
// The store persists it verbatim in a single transaction; no netting
// arithmetic happens store-side.
type FillMutation struct {
	Order     *models.Order
	Execution *models.Execution

	// UpsertPosition holds the post-fill position, nil when the fill
	// nets the book flat. InsertPosition marks it as a new row (first
	// open, or the far side of a flip). DeletePositionID names the
	// prior row to remove (full close or flip); updates and deletes of
	// the prior row are guarded on PriorVersion.
	UpsertPosition   *models.Position
	InsertPosition   bool
	DeletePositionID string
	PriorVersion     int64

	Trades      []models.ClosedTrade
	AccountID   string
	EquityDelta decimal.Decimal
}

// Ledger applies one fill atomically: order fill fields, execution
// append, position upsert or delete, history append, balance delta.
// Either everything commits or nothing does. The order write is
// guarded on a still-resting status and the position writes on
// PriorVersion; losing either race surfaces as ErrVersionConflict.
type Ledger interface {
	ApplyFill(ctx context.Context, m *FillMutation) error
}
