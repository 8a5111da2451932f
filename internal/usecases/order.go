package usecases

import (
	"context"
	"time"

	"papertrade/internal/repository"
	"papertrade/internal/usecases/structs"
	"papertrade/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// quantityPrecision allows fractional shares down to 6 decimals.
const quantityPrecision = 6

// OrderUseCase is the order router: it validates and records new
// orders, prices market orders from the current quote and hands them
// to the execution engine.
type OrderUseCase struct {
	orderRepo     repository.OrderRepo
	positionRepo  repository.PositionRepo
	executionRepo repository.ExecutionRepo
	historyRepo   repository.HistoryRepo

	quotes QuoteSource
	exec   *ExecutionUseCase

	sink    *safeSink
	metrics *Metrics
	logger  *logrus.Logger

	timeout time.Duration
}

func NewOrderUseCase(
	orderRepo repository.OrderRepo,
	positionRepo repository.PositionRepo,
	executionRepo repository.ExecutionRepo,
	historyRepo repository.HistoryRepo,
	quotes QuoteSource,
	exec *ExecutionUseCase,
	sink HostSink,
	metrics *Metrics,
	logger *logrus.Logger,
	timeout time.Duration,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:     orderRepo,
		positionRepo:  positionRepo,
		executionRepo: executionRepo,
		historyRepo:   historyRepo,
		quotes:        quotes,
		exec:          exec,
		sink:          newSafeSink(sink, logger),
		metrics:       metrics,
		logger:        logger,
		timeout:       timeout,
	}
}

// PlaceOrder validates the pre-order, records it WORKING and, for
// market orders, executes it immediately. Validation failures reject
// synchronously with zero state change; an unpriceable market order
// is persisted REJECTED and never fills at a stale price.
func (u *OrderUseCase) PlaceOrder(ctx context.Context, pre *structs.PreOrder) *structs.Result {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.buildOrder(pre)
	if err != nil {
		return structs.Failure(err.Error())
	}

	var execPrice decimal.Decimal
	if order.Type == models.TypeMarket {
		execPrice, err = u.resolveMarketPrice(ctx, pre)
		if err != nil {
			u.logger.WithFields(logrus.Fields{
				"symbol": order.Symbol,
				"side":   order.Side,
			}).Warnf("market order rejected: %v", err)

			order.Status = models.StatusRejected
			if storeErr := u.orderRepo.Store(ctx, order); storeErr != nil {
				u.logger.Errorf("store rejected order: %v", storeErr)
			}
			u.metrics.OrdersRejected.Inc()
			u.sink.OrderUpdate(order)

			return &structs.Result{OrderID: order.ID, Succeeded: false, Message: ErrQuoteUnavailable.Error()}
		}
	}

	order.Status = models.StatusWorking
	if err := u.orderRepo.Store(ctx, order); err != nil {
		// PLACING never became observable; reject without residue
		u.metrics.OrdersRejected.Inc()
		u.logger.Errorf("store order: %v", err)

		return structs.Failure(ErrPersistence.Error())
	}

	u.metrics.OrdersPlaced.Inc()
	u.sink.OrderUpdate(order)

	if order.Type == models.TypeMarket {
		if err := u.exec.ExecuteOrder(ctx, order.ID, execPrice); err != nil {
			u.logger.WithField("orderID", order.ID).Errorf("execute market order: %v", err)
			u.reject(ctx, order)

			return &structs.Result{OrderID: order.ID, Succeeded: false, Message: err.Error()}
		}
	}

	return structs.Success(order.ID)
}

// CancelOrder cancels a resting order. Missing or terminal orders are
// a no-op returning false.
func (u *OrderUseCase) CancelOrder(ctx context.Context, id string) bool {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.orderRepo.GetByID(ctx, id)
	if err != nil {
		return false
	}
	if !order.IsResting() {
		return false
	}

	order.Status = models.StatusCanceled
	order.UpdatedAt = time.Now().UTC()

	if err := u.orderRepo.Update(ctx, order); err != nil {
		u.logger.WithField("orderID", id).Errorf("cancel order: %v", err)
		return false
	}

	u.metrics.OrdersCanceled.Inc()
	u.sink.OrderUpdate(order)

	return true
}

// ModifyOrder mutates quantity, prices and brackets of a resting
// order; false once terminal.
func (u *OrderUseCase) ModifyOrder(ctx context.Context, id string, changes *structs.OrderChanges) bool {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.orderRepo.GetByID(ctx, id)
	if err != nil {
		return false
	}
	if !order.IsResting() {
		return false
	}

	if changes.Quantity != nil {
		qty := changes.Quantity.Truncate(quantityPrecision)
		if !qty.IsPositive() {
			return false
		}
		order.Quantity = qty
	}
	if changes.LimitPrice.Valid {
		order.LimitPrice = changes.LimitPrice
	}
	if changes.StopPrice.Valid {
		order.StopPrice = changes.StopPrice
	}
	if changes.TakeProfit.Valid {
		order.TakeProfit = changes.TakeProfit
	}
	if changes.StopLoss.Valid {
		order.StopLoss = changes.StopLoss
	}
	order.UpdatedAt = time.Now().UTC()

	if err := u.orderRepo.Update(ctx, order); err != nil {
		u.logger.WithField("orderID", id).Errorf("modify order: %v", err)
		return false
	}

	u.sink.OrderUpdate(order)

	return true
}

// ClosePosition submits a market order against the position, for the
// full quantity or the given amount capped at it.
func (u *OrderUseCase) ClosePosition(ctx context.Context, positionID string, amount *decimal.Decimal) *structs.Result {
	position, err := u.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return structs.Failure("position not found")
	}

	qty := position.Quantity
	if amount != nil {
		if !amount.IsPositive() {
			return structs.Failure("close amount must be positive")
		}
		if amount.LessThan(qty) {
			qty = *amount
		}
	}

	return u.PlaceOrder(ctx, &structs.PreOrder{
		AccountID: position.AccountID,
		Symbol:    position.Symbol,
		Side:      models.OppositeSide(position.Side),
		Type:      models.TypeMarket,
		Quantity:  qty,
		IsClose:   true,
	})
}

// ReversePosition closes the position and opens the same quantity on
// the opposite side with a single doubled market order.
func (u *OrderUseCase) ReversePosition(ctx context.Context, positionID string) *structs.Result {
	position, err := u.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return structs.Failure("position not found")
	}

	return u.PlaceOrder(ctx, &structs.PreOrder{
		AccountID: position.AccountID,
		Symbol:    position.Symbol,
		Side:      models.OppositeSide(position.Side),
		Type:      models.TypeMarket,
		Quantity:  position.Quantity.Mul(decimal.NewFromInt(2)),
	})
}

func (u *OrderUseCase) Orders(ctx context.Context, accountID string) ([]models.Order, error) {
	return u.orderRepo.GetOpen(ctx, accountID)
}

func (u *OrderUseCase) OrdersHistory(ctx context.Context, accountID string) ([]models.Order, error) {
	return u.orderRepo.GetTerminal(ctx, accountID)
}

func (u *OrderUseCase) Positions(ctx context.Context, accountID string) ([]models.Position, error) {
	return u.positionRepo.GetOpen(ctx, accountID)
}

func (u *OrderUseCase) Executions(ctx context.Context, accountID string) ([]models.Execution, error) {
	return u.executionRepo.GetByAccount(ctx, accountID)
}

func (u *OrderUseCase) TradesHistory(ctx context.Context, accountID string) ([]models.ClosedTrade, error) {
	return u.historyRepo.GetByAccount(ctx, accountID)
}

func (u *OrderUseCase) buildOrder(pre *structs.PreOrder) (*models.Order, error) {
	qty := pre.Quantity.Truncate(quantityPrecision)

	switch {
	case pre.Symbol == "":
		return nil, errors.Wrap(ErrValidation, "symbol is required")
	case !qty.IsPositive():
		return nil, errors.Wrap(ErrValidation, "quantity must be positive")
	case pre.Side != models.SideBuy && pre.Side != models.SideSell:
		return nil, errors.Wrap(ErrValidation, "unknown side")
	}

	orderType := pre.Type
	if orderType == "" {
		orderType = models.TypeMarket
	}

	switch orderType {
	case models.TypeMarket:
	case models.TypeLimit:
		if !pre.LimitPrice.Valid {
			return nil, errors.Wrap(ErrValidation, "limit order requires a limit price")
		}
	case models.TypeStop:
		if !pre.StopPrice.Valid {
			return nil, errors.Wrap(ErrValidation, "stop order requires a stop price")
		}
	case models.TypeStopLimit:
		if !pre.LimitPrice.Valid || !pre.StopPrice.Valid {
			return nil, errors.Wrap(ErrValidation, "stop limit order requires stop and limit prices")
		}
	default:
		return nil, errors.Wrap(ErrValidation, "unknown order type")
	}

	now := time.Now().UTC()

	return &models.Order{
		ID:         uuid.NewString(),
		AccountID:  pre.AccountID,
		Symbol:     pre.Symbol,
		Side:       pre.Side,
		Type:       orderType,
		Status:     models.StatusPlacing,
		Quantity:   qty,
		LimitPrice: pre.LimitPrice,
		StopPrice:  pre.StopPrice,
		TakeProfit: pre.TakeProfit,
		StopLoss:   pre.StopLoss,
		IsClose:    pre.IsClose,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// resolveMarketPrice prices a market order: the caller-supplied price
// wins, otherwise ask for buys and bid for sells from the live quote.
func (u *OrderUseCase) resolveMarketPrice(ctx context.Context, pre *structs.PreOrder) (decimal.Decimal, error) {
	if pre.Price.Valid {
		return pre.Price.Decimal, nil
	}

	quote, err := u.quotes.GetQuote(ctx, pre.Symbol)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrQuoteUnavailable, "%s: %v", pre.Symbol, err)
	}

	if pre.Side == models.SideBuy {
		return quote.Ask, nil
	}

	return quote.Bid, nil
}

func (u *OrderUseCase) reject(ctx context.Context, order *models.Order) {
	current, err := u.orderRepo.GetByID(ctx, order.ID)
	if err != nil || current.IsTerminal() {
		return
	}

	current.Status = models.StatusRejected
	current.UpdatedAt = time.Now().UTC()

	if err := u.orderRepo.Update(ctx, current); err != nil {
		u.logger.WithField("orderID", order.ID).Errorf("mark order rejected: %v", err)
		return
	}

	u.metrics.OrdersRejected.Inc()
	u.sink.OrderUpdate(current)
}
