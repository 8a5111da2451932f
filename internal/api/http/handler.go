package http

import (
	"strings"

	"papertrade/internal/usecases"
	"papertrade/internal/usecases/structs"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Handler is glue only: it parses payloads and delegates to the
// engine. No business rules live here.
type Handler struct {
	fiber  *fiber.App
	orders *usecases.OrderUseCase
	quotes *usecases.QuoteUseCase
	equity *usecases.EquityUseCase
	logger *logrus.Logger
}

func NewHandler(
	f *fiber.App,
	orders *usecases.OrderUseCase,
	quotes *usecases.QuoteUseCase,
	equity *usecases.EquityUseCase,
	l *logrus.Logger,
) *Handler {
	return &Handler{
		fiber:  f,
		orders: orders,
		quotes: quotes,
		equity: equity,
		logger: l,
	}
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	body := struct {
		Status bool `json:"status"`
	}{
		Status: true,
	}

	return c.JSON(body)
}

func accountID(c *fiber.Ctx) string {
	return c.Get("X-Account-ID")
}

func (h *Handler) PlaceOrder(c *fiber.Ctx) error {
	var pre structs.PreOrder
	if err := c.BodyParser(&pre); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(structs.Failure(err.Error()))
	}
	pre.AccountID = accountID(c)

	return c.JSON(h.orders.PlaceOrder(c.UserContext(), &pre))
}

func (h *Handler) CancelOrder(c *fiber.Ctx) error {
	ok := h.orders.CancelOrder(c.UserContext(), c.Params("id"))

	return c.JSON(fiber.Map{"succeeded": ok})
}

func (h *Handler) ModifyOrder(c *fiber.Ctx) error {
	var changes structs.OrderChanges
	if err := c.BodyParser(&changes); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(structs.Failure(err.Error()))
	}

	ok := h.orders.ModifyOrder(c.UserContext(), c.Params("id"), &changes)

	return c.JSON(fiber.Map{"succeeded": ok})
}

func (h *Handler) Orders(c *fiber.Ctx) error {
	orders, err := h.orders.Orders(c.UserContext(), accountID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(orders)
}

func (h *Handler) OrdersHistory(c *fiber.Ctx) error {
	orders, err := h.orders.OrdersHistory(c.UserContext(), accountID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(orders)
}

func (h *Handler) Positions(c *fiber.Ctx) error {
	positions, err := h.orders.Positions(c.UserContext(), accountID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(positions)
}

func (h *Handler) ClosePosition(c *fiber.Ctx) error {
	var body struct {
		Amount *decimal.Decimal `json:"amount,omitempty"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(structs.Failure(err.Error()))
		}
	}

	return c.JSON(h.orders.ClosePosition(c.UserContext(), c.Params("id"), body.Amount))
}

func (h *Handler) ReversePosition(c *fiber.Ctx) error {
	return c.JSON(h.orders.ReversePosition(c.UserContext(), c.Params("id")))
}

func (h *Handler) Executions(c *fiber.Ctx) error {
	executions, err := h.orders.Executions(c.UserContext(), accountID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(executions)
}

func (h *Handler) TradesHistory(c *fiber.Ctx) error {
	trades, err := h.orders.TradesHistory(c.UserContext(), accountID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(trades)
}

func (h *Handler) GetQuotes(c *fiber.Ctx) error {
	symbols := strings.Split(c.Query("symbols"), ",")
	if len(symbols) == 1 && symbols[0] == "" {
		return c.Status(fiber.StatusBadRequest).JSON(structs.Failure("symbols is required"))
	}

	quotes, err := h.quotes.GetQuotes(c.UserContext(), symbols)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(quotes)
}

func (h *Handler) EquitySeries(c *fiber.Ctx) error {
	series, err := h.equity.Series(c.UserContext(), accountID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(structs.Failure(err.Error()))
	}

	return c.JSON(series)
}
