package usecases

import (
	"context"
	"io/ioutil"
	"sync"
	"testing"
	"time"

	"papertrade/internal/repository/memory"
	"papertrade/models"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	testAccount = "acc-1"
	testSymbol  = "AAPL"
)

type stubQuotes struct {
	mu     sync.Mutex
	quotes map[string]models.Quote
	err    error
}

func (s *stubQuotes) set(symbol string, bid, ask string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, _ := decimal.NewFromString(bid)
	a, _ := decimal.NewFromString(ask)
	s.quotes[symbol] = models.Quote{
		Symbol: symbol,
		Bid:    b,
		Ask:    a,
		Last:   b.Add(a).Div(decimal.NewFromInt(2)),
		At:     time.Now().UTC(),
	}
}

func (s *stubQuotes) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubQuotes) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	q, ok := s.quotes[symbol]
	if !ok {
		return nil, errors.Errorf("no quote for %s", symbol)
	}

	return &q, nil
}

func (s *stubQuotes) GetQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	out := make([]models.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		q, err := s.GetQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}

	return out, nil
}

type plEvent struct {
	positionID string
	unrealized decimal.Decimal
	realized   decimal.Decimal
}

type recordingSink struct {
	mu         sync.Mutex
	orders     []models.Order
	positions  []models.Position
	executions []models.Execution
	equity     []models.EquityPoint
	pls        []plEvent

	panicOnOrderUpdate bool
}

func (r *recordingSink) ConnectionOpened()             {}
func (r *recordingSink) ConnectionClosed()             {}
func (r *recordingSink) ConnectionError(error)         {}
func (r *recordingSink) SessionEstablished(string)     {}

func (r *recordingSink) OrderUpdate(order *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.panicOnOrderUpdate {
		panic("host is down")
	}
	r.orders = append(r.orders, *order)
}

func (r *recordingSink) PositionUpdate(position *models.Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, *position)
}

func (r *recordingSink) ExecutionUpdate(execution *models.Execution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions = append(r.executions, *execution)
}

func (r *recordingSink) PLUpdate(positionID string, unrealizedPL, realizedPL decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pls = append(r.pls, plEvent{positionID: positionID, unrealized: unrealizedPL, realized: realizedPL})
}

func (r *recordingSink) EquityUpdate(series []models.EquityPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equity = append(r.equity, series...)
}

func (r *recordingSink) lastOrder() *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.orders) == 0 {
		return nil
	}
	o := r.orders[len(r.orders)-1]

	return &o
}

func (r *recordingSink) plEvents() []plEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]plEvent, len(r.pls))
	copy(out, r.pls)

	return out
}

func (r *recordingSink) executionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.executions)
}

type engineFixture struct {
	store  *memory.Store
	quotes *stubQuotes
	sink   *recordingSink

	orders  *OrderUseCase
	exec    *ExecutionUseCase
	equity  *EquityUseCase
	streams *QuoteUseCase
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)

	store := memory.NewStore()
	quotes := &stubQuotes{quotes: make(map[string]models.Quote)}
	sink := &recordingSink{}
	metrics := NewMetrics(prometheus.NewRegistry())

	equity := NewEquityUseCase(store.Accounts(), store.Equity(), sink, logger)
	exec := NewExecutionUseCase(store.Orders(), store.Positions(), store.Ledger(), equity, sink, metrics, logger, time.Second)
	orders := NewOrderUseCase(store.Orders(), store.Positions(), store.Executions(), store.History(), quotes, exec, sink, metrics, logger, time.Second)
	streams := NewQuoteUseCase(quotes, store.Orders(), store.Positions(), exec, sink, logger, 5*time.Millisecond, time.Second)

	if err := store.Accounts().Create(context.Background(), &models.Account{
		ID:        testAccount,
		OwnerID:   "owner-1",
		Balance:   decimal.NewFromInt(10000),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	return &engineFixture{
		store:   store,
		quotes:  quotes,
		sink:    sink,
		orders:  orders,
		exec:    exec,
		equity:  equity,
		streams: streams,
	}
}

func (f *engineFixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()

	account, err := f.store.Accounts().GetByID(context.Background(), testAccount)
	if err != nil {
		t.Fatal(err)
	}

	return account.Balance
}

func (f *engineFixture) openPositions(t *testing.T) []models.Position {
	t.Helper()

	positions, err := f.store.Positions().GetOpen(context.Background(), testAccount)
	if err != nil {
		t.Fatal(err)
	}

	return positions
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}
