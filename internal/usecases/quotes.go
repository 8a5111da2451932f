package usecases

import (
	"context"
	"sync"
	"time"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// restingScanSchedule drives the resting LIMIT/STOP order scan.
const restingScanSchedule = "* * * * *"

// QuoteUseCase serves batch quote reads, periodic quote subscriptions
// and the resting-order scan that triggers LIMIT/STOP fills off the
// latest quotes.
type QuoteUseCase struct {
	quotes       QuoteSource
	orderRepo    repository.OrderRepo
	positionRepo repository.PositionRepo
	exec         *ExecutionUseCase

	sink   *safeSink
	logger *logrus.Logger

	interval time.Duration
	timeout  time.Duration

	mu   sync.Mutex
	subs map[string]*subscription

	cron *cron.Cron
}

type subscription struct {
	accountID string
	symbols   []string
	listener  QuoteListener
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewQuoteUseCase(
	quotes QuoteSource,
	orderRepo repository.OrderRepo,
	positionRepo repository.PositionRepo,
	exec *ExecutionUseCase,
	sink HostSink,
	logger *logrus.Logger,
	interval, timeout time.Duration,
) *QuoteUseCase {
	return &QuoteUseCase{
		quotes:       quotes,
		orderRepo:    orderRepo,
		positionRepo: positionRepo,
		exec:         exec,
		sink:         newSafeSink(sink, logger),
		logger:       logger,
		interval:     interval,
		timeout:      timeout,
		subs:         make(map[string]*subscription),
	}
}

func (u *QuoteUseCase) GetQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	return u.quotes.GetQuotes(ctx, symbols)
}

// SubscribeQuotes starts a periodic push of quotes for symbols. Each
// tick also refreshes the unrealized P&L of the account's open
// positions in those symbols. The returned handle feeds
// UnsubscribeQuotes.
func (u *QuoteUseCase) SubscribeQuotes(accountID string, symbols []string, listener QuoteListener) string {
	sub := &subscription{
		accountID: accountID,
		symbols:   symbols,
		listener:  listener,
		done:      make(chan struct{}),
	}
	handle := uuid.NewString()

	u.mu.Lock()
	u.subs[handle] = sub
	u.mu.Unlock()

	sub.wg.Add(1)
	go u.run(sub)

	return handle
}

// UnsubscribeQuotes stops the subscription. It returns only after the
// push goroutine has exited, so no callback fires afterwards.
func (u *QuoteUseCase) UnsubscribeQuotes(handle string) {
	u.mu.Lock()
	sub, ok := u.subs[handle]
	if ok {
		delete(u.subs, handle)
	}
	u.mu.Unlock()

	if !ok {
		return
	}

	close(sub.done)
	sub.wg.Wait()
}

func (u *QuoteUseCase) run(sub *subscription) {
	defer sub.wg.Done()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case <-ticker.C:
			u.tick(sub)
		}
	}
}

func (u *QuoteUseCase) tick(sub *subscription) {
	ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
	defer cancel()

	quotes, err := u.quotes.GetQuotes(ctx, sub.symbols)
	if err != nil {
		u.logger.Debugf("subscription tick: %v", err)
		return
	}

	sub.listener(quotes)

	bySymbol := make(map[string]*models.Quote, len(quotes))
	for i := range quotes {
		bySymbol[quotes[i].Symbol] = &quotes[i]
	}

	positions, err := u.positionRepo.GetOpen(ctx, sub.accountID)
	if err != nil {
		u.logger.Debugf("subscription positions: %v", err)
		return
	}

	for i := range positions {
		p := &positions[i]
		quote, ok := bySymbol[p.Symbol]
		if !ok {
			continue
		}
		u.sink.PLUpdate(p.ID, p.UnrealizedPL(quote), decimal.Zero)
	}
}

// StartRestingScan schedules the periodic scan of resting orders.
func (u *QuoteUseCase) StartRestingScan() error {
	u.cron = cron.New()

	if _, err := u.cron.AddFunc(restingScanSchedule, func() {
		if err := u.ScanResting(context.Background()); err != nil {
			u.logger.Errorf("resting scan: %v", err)
		}
	}); err != nil {
		return err
	}

	u.cron.Start()

	return nil
}

func (u *QuoteUseCase) StopRestingScan() {
	if u.cron != nil {
		<-u.cron.Stop().Done()
	}
}

// ScanResting fills every WORKING LIMIT/STOP order whose trigger
// condition the latest quote satisfies. A triggered STOP_LIMIT first
// converts to a resting LIMIT at its limit price.
func (u *QuoteUseCase) ScanResting(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	orders, err := u.orderRepo.GetResting(ctx)
	if err != nil {
		return err
	}

	quotes := make(map[string]*models.Quote)

	for i := range orders {
		order := &orders[i]

		quote, ok := quotes[order.Symbol]
		if !ok {
			quote, err = u.quotes.GetQuote(ctx, order.Symbol)
			if err != nil {
				u.logger.Debugf("resting scan quote %s: %v", order.Symbol, err)
				continue
			}
			quotes[order.Symbol] = quote
		}

		if order.Type == models.TypeStopLimit && stopTriggered(order, quote) {
			order.Type = models.TypeLimit
			order.UpdatedAt = time.Now().UTC()

			if err := u.orderRepo.Update(ctx, order); err != nil {
				u.logger.WithField("orderID", order.ID).Errorf("arm stop limit: %v", err)
				continue
			}
			u.sink.OrderUpdate(order)
		}

		price, triggered := triggerPrice(order, quote)
		if !triggered {
			continue
		}

		if err := u.exec.ExecuteOrder(ctx, order.ID, price); err != nil {
			u.logger.WithField("orderID", order.ID).Errorf("execute resting order: %v", err)
		}
	}

	return nil
}

func stopTriggered(order *models.Order, quote *models.Quote) bool {
	if order.Side == models.SideBuy {
		return quote.Ask.GreaterThanOrEqual(order.StopPrice.Decimal)
	}

	return quote.Bid.LessThanOrEqual(order.StopPrice.Decimal)
}

// triggerPrice reports whether the quote satisfies the order's
// condition and at which price it fills: limits fill at their limit
// price, stops at the quote side that triggered them.
func triggerPrice(order *models.Order, quote *models.Quote) (decimal.Decimal, bool) {
	switch order.Type {
	case models.TypeLimit:
		limit := order.LimitPrice.Decimal
		if order.Side == models.SideBuy && quote.Ask.LessThanOrEqual(limit) {
			return limit, true
		}
		if order.Side == models.SideSell && quote.Bid.GreaterThanOrEqual(limit) {
			return limit, true
		}

	case models.TypeStop:
		if !stopTriggered(order, quote) {
			return decimal.Zero, false
		}
		if order.Side == models.SideBuy {
			return quote.Ask, true
		}
		return quote.Bid, true
	}

	return decimal.Zero, false
}
