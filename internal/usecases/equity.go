package usecases

import (
	"context"
	"time"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EquityUseCase owns the account balance. Equity changes only through
// realized P&L posted here; unrealized mark-to-market is display-only
// and never written.
type EquityUseCase struct {
	accountRepo repository.AccountRepo
	equityRepo  repository.EquityRepo

	sink   *safeSink
	logger *logrus.Logger
}

func NewEquityUseCase(
	accountRepo repository.AccountRepo,
	equityRepo repository.EquityRepo,
	sink HostSink,
	logger *logrus.Logger,
) *EquityUseCase {
	return &EquityUseCase{
		accountRepo: accountRepo,
		equityRepo:  equityRepo,
		sink:        newSafeSink(sink, logger),
		logger:      logger,
	}
}

// Adjust atomically adds delta to the account balance and emits an
// equity point.
func (u *EquityUseCase) Adjust(ctx context.Context, accountID string, delta decimal.Decimal) (*models.Account, error) {
	account, err := u.accountRepo.AdjustBalance(ctx, accountID, delta)
	if err != nil {
		return nil, errors.Wrap(err, "adjust balance")
	}

	u.publish(ctx, account)

	return account, nil
}

// Snapshot emits an equity point for the balance as already persisted.
// The fill transaction adjusts the balance itself; this is the
// post-commit half.
func (u *EquityUseCase) Snapshot(ctx context.Context, accountID string) error {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return errors.Wrap(err, "load account")
	}

	u.publish(ctx, account)

	return nil
}

func (u *EquityUseCase) Series(ctx context.Context, accountID string) ([]models.EquityPoint, error) {
	return u.equityRepo.Series(ctx, accountID)
}

func (u *EquityUseCase) publish(ctx context.Context, account *models.Account) {
	point := models.EquityPoint{
		AccountID: account.ID,
		Equity:    account.Balance,
		At:        time.Now().UTC(),
	}

	// the series is observability, the balance row is the ledger; a
	// failed append must not fail the adjustment
	if err := u.equityRepo.Append(ctx, &point); err != nil {
		u.logger.WithField("accountID", account.ID).Errorf("append equity point: %v", err)
	}

	u.sink.EquityUpdate([]models.EquityPoint{point})
}
