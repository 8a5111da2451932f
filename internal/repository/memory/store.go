// Package memory implements the repository interfaces over
// mutex-guarded maps. It backs the engine tests and can serve as the
// single-owner session cache; the SQL store stays the source of truth
// in production wiring.
package memory

import (
	"context"
	"sync"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.RWMutex

	accounts  map[string]models.Account
	orders    map[string]models.Order
	orderIDs  []string
	positions map[string]models.Position
	execs     []models.Execution
	trades    []models.ClosedTrade
	equity    []models.EquityPoint
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]models.Account),
		orders:    make(map[string]models.Order),
		positions: make(map[string]models.Position),
	}
}

// One view per repository interface; they all share the store lock.

func (s *Store) Accounts() repository.AccountRepo     { return accountsView{s} }
func (s *Store) Orders() repository.OrderRepo         { return ordersView{s} }
func (s *Store) Positions() repository.PositionRepo   { return positionsView{s} }
func (s *Store) Executions() repository.ExecutionRepo { return executionsView{s} }
func (s *Store) History() repository.HistoryRepo      { return historyView{s} }
func (s *Store) Equity() repository.EquityRepo        { return equityView{s} }
func (s *Store) Ledger() repository.Ledger            { return ledgerView{s} }

type accountsView struct{ s *Store }

func (v accountsView) Create(_ context.Context, account *models.Account) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	v.s.accounts[account.ID] = *account

	return nil
}

func (v accountsView) GetByID(_ context.Context, id string) (*models.Account, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	account, ok := v.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return &account, nil
}

func (v accountsView) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) (*models.Account, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	account, ok := v.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	account.Balance = account.Balance.Add(delta)
	v.s.accounts[id] = account

	return &account, nil
}

type ordersView struct{ s *Store }

func (v ordersView) Store(_ context.Context, order *models.Order) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	v.s.putOrder(order)

	return nil
}

// Update refuses terminal rows, like the status predicate in the SQL
// store: a stale cancel or modify must not overwrite a fill.
func (v ordersView) Update(_ context.Context, order *models.Order) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	existing, ok := v.s.orders[order.ID]
	if !ok || !existing.IsResting() {
		return repository.ErrNotFound
	}
	v.s.orders[order.ID] = *order

	return nil
}

func (v ordersView) GetByID(_ context.Context, id string) (*models.Order, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	order, ok := v.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return &order, nil
}

func (v ordersView) GetOpen(_ context.Context, accountID string) ([]models.Order, error) {
	return v.filter(func(o *models.Order) bool {
		return o.AccountID == accountID && o.IsResting()
	}), nil
}

func (v ordersView) GetTerminal(_ context.Context, accountID string) ([]models.Order, error) {
	return v.filter(func(o *models.Order) bool {
		return o.AccountID == accountID && o.IsTerminal()
	}), nil
}

func (v ordersView) GetResting(_ context.Context) ([]models.Order, error) {
	return v.filter(func(o *models.Order) bool {
		return o.Status == models.StatusWorking && o.Type != models.TypeMarket
	}), nil
}

func (v ordersView) filter(keep func(*models.Order) bool) []models.Order {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var out []models.Order
	for _, id := range v.s.orderIDs {
		o := v.s.orders[id]
		if keep(&o) {
			out = append(out, o)
		}
	}

	return out
}

type positionsView struct{ s *Store }

func (v positionsView) GetByID(_ context.Context, id string) (*models.Position, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	position, ok := v.s.positions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return &position, nil
}

func (v positionsView) GetBySymbol(_ context.Context, accountID, symbol string) (*models.Position, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	for _, p := range v.s.positions {
		if p.AccountID == accountID && p.Symbol == symbol {
			out := p
			return &out, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (v positionsView) GetOpen(_ context.Context, accountID string) ([]models.Position, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var out []models.Position
	for _, p := range v.s.positions {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (v positionsView) SetBrackets(_ context.Context, id string, takeProfit, stopLoss decimal.NullDecimal) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	position, ok := v.s.positions[id]
	if !ok {
		return repository.ErrNotFound
	}

	position.TakeProfit = takeProfit
	position.StopLoss = stopLoss
	v.s.positions[id] = position

	return nil
}

type executionsView struct{ s *Store }

func (v executionsView) GetByAccount(_ context.Context, accountID string) ([]models.Execution, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var out []models.Execution
	for _, e := range v.s.execs {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}

	return out, nil
}

type historyView struct{ s *Store }

func (v historyView) GetByAccount(_ context.Context, accountID string) ([]models.ClosedTrade, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var out []models.ClosedTrade
	for _, t := range v.s.trades {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}

	return out, nil
}

type equityView struct{ s *Store }

func (v equityView) Append(_ context.Context, point *models.EquityPoint) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	v.s.equity = append(v.s.equity, *point)

	return nil
}

func (v equityView) Series(_ context.Context, accountID string) ([]models.EquityPoint, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var out []models.EquityPoint
	for _, p := range v.s.equity {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}

	return out, nil
}

type ledgerView struct{ s *Store }

// ApplyFill mirrors the SQL ledger transaction: all writes land under
// one lock or none do. Version guards behave like the guarded
// UPDATE/DELETE statements in the postgres store.
func (v ledgerView) ApplyFill(_ context.Context, m *repository.FillMutation) error {
	s := v.s

	s.mu.Lock()
	defer s.mu.Unlock()

	// the order row must still be fillable; a terminal row means
	// another writer filled or canceled it first
	existing, ok := s.orders[m.Order.ID]
	if !ok || !existing.IsResting() {
		return repository.ErrVersionConflict
	}

	if m.DeletePositionID != "" {
		p, ok := s.positions[m.DeletePositionID]
		if !ok || p.Version != m.PriorVersion {
			return repository.ErrVersionConflict
		}
	}
	if m.UpsertPosition != nil {
		if m.InsertPosition {
			for _, p := range s.positions {
				if p.ID != m.DeletePositionID &&
					p.AccountID == m.UpsertPosition.AccountID && p.Symbol == m.UpsertPosition.Symbol {
					return repository.ErrVersionConflict
				}
			}
		} else {
			p, ok := s.positions[m.UpsertPosition.ID]
			if !ok || p.Version != m.PriorVersion {
				return repository.ErrVersionConflict
			}
		}
	}

	if !m.EquityDelta.IsZero() {
		if _, ok := s.accounts[m.AccountID]; !ok {
			return repository.ErrNotFound
		}
	}

	s.putOrder(m.Order)
	s.execs = append(s.execs, *m.Execution)

	if m.DeletePositionID != "" {
		delete(s.positions, m.DeletePositionID)
	}
	if m.UpsertPosition != nil {
		s.positions[m.UpsertPosition.ID] = *m.UpsertPosition
	}

	s.trades = append(s.trades, m.Trades...)

	if !m.EquityDelta.IsZero() {
		account := s.accounts[m.AccountID]
		account.Balance = account.Balance.Add(m.EquityDelta)
		s.accounts[m.AccountID] = account
	}

	return nil
}

func (s *Store) putOrder(order *models.Order) {
	if _, ok := s.orders[order.ID]; !ok {
		s.orderIDs = append(s.orderIDs, order.ID)
	}
	s.orders[order.ID] = *order
}
