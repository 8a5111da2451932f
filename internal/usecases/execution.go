package usecases

import (
	"context"
	"time"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// nettingRetries bounds the optimistic retry loop on a version
// conflict. Conflicts only occur when another instance writes the same
// (account, symbol) pair; within one instance the keyed mutex
// serializes fills.
const nettingRetries = 3

// ExecutionUseCase fills working orders. A fill is one logical
// transaction: order fill fields, execution append, position netting,
// history append and equity delta commit together or not at all.
type ExecutionUseCase struct {
	orderRepo    repository.OrderRepo
	positionRepo repository.PositionRepo
	ledger       repository.Ledger

	equity *EquityUseCase

	sink    *safeSink
	locks   *keyedMutex
	metrics *Metrics
	logger  *logrus.Logger

	timeout time.Duration
}

func NewExecutionUseCase(
	orderRepo repository.OrderRepo,
	positionRepo repository.PositionRepo,
	ledger repository.Ledger,
	equity *EquityUseCase,
	sink HostSink,
	metrics *Metrics,
	logger *logrus.Logger,
	timeout time.Duration,
) *ExecutionUseCase {
	return &ExecutionUseCase{
		orderRepo:    orderRepo,
		positionRepo: positionRepo,
		ledger:       ledger,
		equity:       equity,
		sink:         newSafeSink(sink, logger),
		locks:        newKeyedMutex(),
		metrics:      metrics,
		logger:       logger,
		timeout:      timeout,
	}
}

// ExecuteOrder fills the order completely at price. Terminal orders
// are a no-op, so re-delivery of an execution request cannot double a
// fill or its P&L.
func (u *ExecutionUseCase) ExecuteOrder(ctx context.Context, orderID string, price decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "load order")
	}
	if order.IsTerminal() {
		return nil
	}

	unlock := u.locks.Lock(order.AccountID + "/" + order.Symbol)
	defer unlock()

	// re-read under the lock; a concurrent fill or cancel may have
	// won the race
	order, err = u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return errors.Wrap(err, "load order")
	}
	if order.IsTerminal() {
		return nil
	}

	for attempt := 0; attempt < nettingRetries; attempt++ {
		done, err := u.fillOnce(ctx, order, price)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		// the conflicting writer may have been another instance filling
		// this very order; a stale retry must not net it twice
		order, err = u.orderRepo.GetByID(ctx, orderID)
		if err != nil {
			return errors.Wrap(err, "load order")
		}
		if order.IsTerminal() {
			return nil
		}
	}

	return ErrConflict
}

// fillOnce computes the netting result against the freshly read
// position and tries to commit it. A version conflict asks for a
// retry; any other error aborts.
func (u *ExecutionUseCase) fillOnce(ctx context.Context, order *models.Order, price decimal.Decimal) (bool, error) {
	prior, err := u.positionRepo.GetBySymbol(ctx, order.AccountID, order.Symbol)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return false, errors.Wrap(err, "load position")
		}
		prior = nil
	}

	now := time.Now().UTC()
	fill := Fill{Side: order.Side, Quantity: order.Quantity, Price: price, At: now}
	result := netPosition(prior, order.AccountID, order.Symbol, fill)

	filled := *order
	filled.Status = models.StatusFilled
	filled.FilledPrice = price
	filled.FilledQuantity = order.Quantity
	filled.FilledAt = &now
	filled.UpdatedAt = now

	execution := &models.Execution{
		ID:         uuid.NewString(),
		OrderID:    order.ID,
		AccountID:  order.AccountID,
		Symbol:     order.Symbol,
		Side:       order.Side,
		Price:      price,
		Quantity:   order.Quantity,
		ExecutedAt: now,
	}

	mutation := &repository.FillMutation{
		Order:          &filled,
		Execution:      execution,
		UpsertPosition: result.Position,
		InsertPosition: result.Opened,
		Trades:         result.Trades,
		AccountID:      order.AccountID,
		EquityDelta:    result.RealizedPL,
	}
	if prior != nil {
		mutation.PriorVersion = prior.Version
		if result.Removed {
			mutation.DeletePositionID = prior.ID
		}
	}

	if err := u.ledger.ApplyFill(ctx, mutation); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			u.logger.WithFields(logrus.Fields{
				"orderID": order.ID,
				"symbol":  order.Symbol,
			}).Warn("position version conflict, retrying netting")
			return false, nil
		}
		return false, errors.Wrap(err, "apply fill")
	}

	u.afterFill(ctx, prior, &filled, execution, result, now)

	return true, nil
}

// afterFill runs outside the transaction: metrics, host pushes and the
// equity snapshot all observe committed state only.
func (u *ExecutionUseCase) afterFill(ctx context.Context, prior *models.Position, order *models.Order, execution *models.Execution, result NettingResult, now time.Time) {
	u.metrics.OrdersFilled.Inc()

	u.sink.ExecutionUpdate(execution)
	u.sink.OrderUpdate(order)

	switch {
	case result.Position != nil:
		u.sink.PositionUpdate(result.Position)
	case result.Removed:
		closed := *prior
		closed.Quantity = decimal.Zero
		closed.ClosedAt = &now
		u.sink.PositionUpdate(&closed)
	}

	if !result.RealizedPL.IsZero() {
		pl, _ := result.RealizedPL.Float64()
		u.metrics.RealizedPL.Add(pl)

		u.sink.PLUpdate(prior.ID, decimal.Zero, result.RealizedPL)

		if err := u.equity.Snapshot(ctx, order.AccountID); err != nil {
			u.logger.WithField("accountID", order.AccountID).Errorf("equity snapshot: %v", err)
		}
	}
}
