package http

import (
	"papertrade/internal/usecases"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func RegisterHTTPEndpoints(
	f *fiber.App,
	orders *usecases.OrderUseCase,
	quotes *usecases.QuoteUseCase,
	equity *usecases.EquityUseCase,
	l *logrus.Logger,
) {
	h := NewHandler(f, orders, quotes, equity, l)
	router := f.Group("api")

	router.Get("/healthcheck", h.HealthCheck)

	router.Post("/orders", h.PlaceOrder)
	router.Get("/orders", h.Orders)
	router.Get("/orders/history", h.OrdersHistory)
	router.Delete("/orders/:id", h.CancelOrder)
	router.Patch("/orders/:id", h.ModifyOrder)

	router.Get("/positions", h.Positions)
	router.Post("/positions/:id/close", h.ClosePosition)
	router.Post("/positions/:id/reverse", h.ReversePosition)

	router.Get("/executions", h.Executions)
	router.Get("/history", h.TradesHistory)

	router.Get("/quotes", h.GetQuotes)
	router.Get("/equity", h.EquitySeries)
}
