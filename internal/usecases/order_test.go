package usecases

import (
	"context"
	"testing"

	"papertrade/internal/usecases/structs"
	"papertrade/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitOrder(side, qty, limit string) *structs.PreOrder {
	return &structs.PreOrder{
		AccountID:  testAccount,
		Symbol:     testSymbol,
		Side:       side,
		Type:       models.TypeLimit,
		Quantity:   dec(qty),
		LimitPrice: decimal.NewNullDecimal(dec(limit)),
	}
}

func Test_PlaceOrderValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		pre  *structs.PreOrder
	}{
		{"missing symbol", &structs.PreOrder{AccountID: testAccount, Side: models.SideBuy, Quantity: dec("1")}},
		{"zero quantity", &structs.PreOrder{AccountID: testAccount, Symbol: testSymbol, Side: models.SideBuy, Quantity: decimal.Zero}},
		{"negative quantity", &structs.PreOrder{AccountID: testAccount, Symbol: testSymbol, Side: models.SideBuy, Quantity: dec("-2")}},
		{"unknown side", &structs.PreOrder{AccountID: testAccount, Symbol: testSymbol, Side: "HOLD", Quantity: dec("1")}},
		{"unknown type", &structs.PreOrder{AccountID: testAccount, Symbol: testSymbol, Side: models.SideBuy, Type: "ICEBERG", Quantity: dec("1")}},
		{"limit without limit price", &structs.PreOrder{AccountID: testAccount, Symbol: testSymbol, Side: models.SideBuy, Type: models.TypeLimit, Quantity: dec("1")}},
		{"stop without stop price", &structs.PreOrder{AccountID: testAccount, Symbol: testSymbol, Side: models.SideSell, Type: models.TypeStop, Quantity: dec("1")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newEngineFixture(t)
			f.quotes.set(testSymbol, "100", "100.05")

			res := f.orders.PlaceOrder(ctx, tc.pre)
			require.False(t, res.Succeeded)
			assert.Empty(t, res.OrderID)
			assert.NotEmpty(t, res.Message)

			// synchronous rejects leave no residue at all
			open, err := f.orders.Orders(ctx, testAccount)
			require.NoError(t, err)
			assert.Empty(t, open)

			history, err := f.orders.OrdersHistory(ctx, testAccount)
			require.NoError(t, err)
			assert.Empty(t, history)

			assert.Equal(t, "10000", f.balance(t).String())
			assert.Nil(t, f.sink.lastOrder())
		})
	}
}

func Test_PlaceOrderQuoteUnavailable(t *testing.T) {
	ctx := context.Background()

	f := newEngineFixture(t)
	f.quotes.fail(errors.New("feed down"))

	res := f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "5"))
	require.False(t, res.Succeeded)
	require.NotEmpty(t, res.OrderID)
	assert.Equal(t, ErrQuoteUnavailable.Error(), res.Message)

	// the rejection is persisted, never filled at a stale price
	history, err := f.orders.OrdersHistory(ctx, testAccount)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusRejected, history[0].Status)

	assert.Empty(t, f.openPositions(t))
	assert.Equal(t, 0, f.sink.executionCount())
	assert.Equal(t, "10000", f.balance(t).String())
}

func Test_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("resting order cancels", func(t *testing.T) {
		f := newEngineFixture(t)

		res := f.orders.PlaceOrder(ctx, limitOrder(models.SideBuy, "3", "95"))
		require.True(t, res.Succeeded, res.Message)

		require.True(t, f.orders.CancelOrder(ctx, res.OrderID))

		order, err := f.store.Orders().GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCanceled, order.Status)

		open, err := f.orders.Orders(ctx, testAccount)
		require.NoError(t, err)
		assert.Empty(t, open)
	})

	t.Run("filled order stays filled", func(t *testing.T) {
		f := newEngineFixture(t)
		f.quotes.set(testSymbol, "100", "100.05")

		res := f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "3"))
		require.True(t, res.Succeeded, res.Message)

		assert.False(t, f.orders.CancelOrder(ctx, res.OrderID))

		order, err := f.store.Orders().GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFilled, order.Status)

		// the fill's effects survive the late cancel
		positions := f.openPositions(t)
		require.Len(t, positions, 1)
		assert.Equal(t, "3", positions[0].Quantity.String())
	})

	t.Run("unknown order is a no-op", func(t *testing.T) {
		f := newEngineFixture(t)
		assert.False(t, f.orders.CancelOrder(ctx, "no-such-order"))
	})
}

func Test_ModifyOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("resting order takes changes", func(t *testing.T) {
		f := newEngineFixture(t)

		res := f.orders.PlaceOrder(ctx, limitOrder(models.SideBuy, "3", "95"))
		require.True(t, res.Succeeded, res.Message)

		qty := dec("5")
		ok := f.orders.ModifyOrder(ctx, res.OrderID, &structs.OrderChanges{
			Quantity:   &qty,
			LimitPrice: decimal.NewNullDecimal(dec("97")),
			StopLoss:   decimal.NewNullDecimal(dec("90")),
		})
		require.True(t, ok)

		order, err := f.store.Orders().GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, "5", order.Quantity.String())
		assert.Equal(t, "97", order.LimitPrice.Decimal.String())
		assert.Equal(t, "90", order.StopLoss.Decimal.String())
		assert.Equal(t, models.StatusWorking, order.Status)
	})

	t.Run("terminal order refuses changes", func(t *testing.T) {
		f := newEngineFixture(t)
		f.quotes.set(testSymbol, "100", "100.05")

		res := f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "3"))
		require.True(t, res.Succeeded, res.Message)

		qty := dec("8")
		assert.False(t, f.orders.ModifyOrder(ctx, res.OrderID, &structs.OrderChanges{Quantity: &qty}))

		order, err := f.store.Orders().GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, "3", order.Quantity.String())
	})

	t.Run("non positive quantity refused", func(t *testing.T) {
		f := newEngineFixture(t)

		res := f.orders.PlaceOrder(ctx, limitOrder(models.SideBuy, "3", "95"))
		require.True(t, res.Succeeded, res.Message)

		qty := decimal.Zero
		assert.False(t, f.orders.ModifyOrder(ctx, res.OrderID, &structs.OrderChanges{Quantity: &qty}))
	})
}

func Test_ClosePosition(t *testing.T) {
	ctx := context.Background()

	t.Run("full close flattens the book", func(t *testing.T) {
		f := newEngineFixture(t)

		f.quotes.set(testSymbol, "100", "100.05")
		require.True(t, f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "10")).Succeeded)

		positions := f.openPositions(t)
		require.Len(t, positions, 1)

		f.quotes.set(testSymbol, "104", "104.05")
		res := f.orders.ClosePosition(ctx, positions[0].ID, nil)
		require.True(t, res.Succeeded, res.Message)

		assert.Empty(t, f.openPositions(t))

		// closed at bid: (104 - 100.05) * 10
		assert.Equal(t, "10039.5", f.balance(t).String())

		order, err := f.store.Orders().GetByID(ctx, res.OrderID)
		require.NoError(t, err)
		assert.True(t, order.IsClose)
		assert.Equal(t, models.SideSell, order.Side)
	})

	t.Run("partial close caps at the position quantity", func(t *testing.T) {
		f := newEngineFixture(t)

		f.quotes.set(testSymbol, "100", "100.05")
		require.True(t, f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "10")).Succeeded)

		positions := f.openPositions(t)
		require.Len(t, positions, 1)

		amount := dec("4")
		res := f.orders.ClosePosition(ctx, positions[0].ID, &amount)
		require.True(t, res.Succeeded, res.Message)

		positions = f.openPositions(t)
		require.Len(t, positions, 1)
		assert.Equal(t, "6", positions[0].Quantity.String())
	})

	t.Run("oversized amount closes exactly the position", func(t *testing.T) {
		f := newEngineFixture(t)

		f.quotes.set(testSymbol, "100", "100.05")
		require.True(t, f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "10")).Succeeded)

		positions := f.openPositions(t)
		require.Len(t, positions, 1)

		amount := dec("25")
		res := f.orders.ClosePosition(ctx, positions[0].ID, &amount)
		require.True(t, res.Succeeded, res.Message)

		// capped: no flip to the short side
		assert.Empty(t, f.openPositions(t))
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		f := newEngineFixture(t)

		f.quotes.set(testSymbol, "100", "100.05")
		require.True(t, f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "10")).Succeeded)

		positions := f.openPositions(t)
		require.Len(t, positions, 1)

		amount := dec("-1")
		res := f.orders.ClosePosition(ctx, positions[0].ID, &amount)
		assert.False(t, res.Succeeded)
		assert.Len(t, f.openPositions(t), 1)
	})

	t.Run("unknown position rejected", func(t *testing.T) {
		f := newEngineFixture(t)
		res := f.orders.ClosePosition(ctx, "no-such-position", nil)
		assert.False(t, res.Succeeded)
	})
}

func Test_ReversePosition(t *testing.T) {
	ctx := context.Background()

	f := newEngineFixture(t)

	f.quotes.set(testSymbol, "100", "100.05")
	require.True(t, f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "10")).Succeeded)

	positions := f.openPositions(t)
	require.Len(t, positions, 1)
	priorID := positions[0].ID

	f.quotes.set(testSymbol, "98", "98.05")
	res := f.orders.ReversePosition(ctx, positions[0].ID)
	require.True(t, res.Succeeded, res.Message)

	positions = f.openPositions(t)
	require.Len(t, positions, 1)
	assert.Equal(t, models.SideSell, positions[0].Side)
	assert.Equal(t, "10", positions[0].Quantity.String())
	assert.Equal(t, "98", positions[0].AvgPrice.String())
	assert.NotEqual(t, priorID, positions[0].ID)

	// the long 10 realized (98 - 100.05) * 10 on the way through
	assert.Equal(t, "9979.5", f.balance(t).String())

	trades, err := f.orders.TradesHistory(ctx, testAccount)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "-20.5", trades[0].RealizedPL.String())
}

func Test_OrderQueriesSplitByTerminality(t *testing.T) {
	ctx := context.Background()

	f := newEngineFixture(t)
	f.quotes.set(testSymbol, "100", "100.05")

	filled := f.orders.PlaceOrder(ctx, marketOrder(models.SideBuy, "2"))
	require.True(t, filled.Succeeded)

	resting := f.orders.PlaceOrder(ctx, limitOrder(models.SideBuy, "1", "90"))
	require.True(t, resting.Succeeded)

	canceled := f.orders.PlaceOrder(ctx, limitOrder(models.SideSell, "1", "120"))
	require.True(t, canceled.Succeeded)
	require.True(t, f.orders.CancelOrder(ctx, canceled.OrderID))

	open, err := f.orders.Orders(ctx, testAccount)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, resting.OrderID, open[0].ID)

	history, err := f.orders.OrdersHistory(ctx, testAccount)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, order := range history {
		assert.True(t, order.IsTerminal())
	}
}
