package controllers

import (
	"fmt"

	"papertrade/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TgmNotifier pushes engine updates to a Telegram chat. It implements
// the engine's HostSink.
type TgmNotifier struct {
	tgm    *TgmController
	logger *logrus.Logger
}

func NewTgmNotifier(tgm *TgmController, logger *logrus.Logger) *TgmNotifier {
	return &TgmNotifier{tgm: tgm, logger: logger}
}

func (n *TgmNotifier) send(text string) {
	if err := n.tgm.Send(text); err != nil {
		n.logger.Debugf("tgm send: %v", err)
	}
}

func (n *TgmNotifier) ConnectionOpened() {
	n.send("[ Connection ]\nopened")
}

func (n *TgmNotifier) ConnectionClosed() {
	n.send("[ Connection ]\nclosed")
}

func (n *TgmNotifier) ConnectionError(err error) {
	n.send(fmt.Sprintf("[ Connection ]\nerror: %v", err))
}

func (n *TgmNotifier) SessionEstablished(accountID string) {
	n.send(fmt.Sprintf("[ Session ]\n%s", accountID))
}

func (n *TgmNotifier) OrderUpdate(order *models.Order) {
	n.send(fmt.Sprintf("[ Order %s ]\n%s %s %s %s @ %s",
		order.Status,
		order.Symbol,
		order.Side,
		order.Type,
		order.Quantity,
		order.FilledPrice))
}

func (n *TgmNotifier) PositionUpdate(position *models.Position) {
	n.send(fmt.Sprintf("[ Position ]\n%s %s %s @ %s",
		position.Symbol,
		position.Side,
		position.Quantity,
		position.AvgPrice))
}

func (n *TgmNotifier) ExecutionUpdate(execution *models.Execution) {
	n.send(fmt.Sprintf("[ Execution ]\n%s %s %s @ %s",
		execution.Symbol,
		execution.Side,
		execution.Quantity,
		execution.Price))
}

func (n *TgmNotifier) PLUpdate(positionID string, unrealizedPL, realizedPL decimal.Decimal) {
	n.send(fmt.Sprintf("[ P&L ]\n%s\nunrealized %s\nrealized %s",
		positionID,
		unrealizedPL,
		realizedPL))
}

func (n *TgmNotifier) EquityUpdate(series []models.EquityPoint) {
	if len(series) == 0 {
		return
	}

	last := series[len(series)-1]
	n.send(fmt.Sprintf("[ Equity ]\n%s", last.Equity))
}

// LogNotifier is the HostSink fallback when no Telegram chat is
// configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ConnectionOpened()       { n.logger.Info("connection opened") }
func (n *LogNotifier) ConnectionClosed()       { n.logger.Info("connection closed") }
func (n *LogNotifier) ConnectionError(e error) { n.logger.Errorf("connection error: %v", e) }

func (n *LogNotifier) SessionEstablished(accountID string) {
	n.logger.WithField("accountID", accountID).Info("session established")
}

func (n *LogNotifier) OrderUpdate(order *models.Order) {
	n.logger.WithFields(logrus.Fields{
		"orderID": order.ID,
		"status":  order.Status,
		"symbol":  order.Symbol,
	}).Info("order update")
}

func (n *LogNotifier) PositionUpdate(position *models.Position) {
	n.logger.WithFields(logrus.Fields{
		"positionID": position.ID,
		"symbol":     position.Symbol,
		"quantity":   position.Quantity,
	}).Info("position update")
}

func (n *LogNotifier) ExecutionUpdate(execution *models.Execution) {
	n.logger.WithFields(logrus.Fields{
		"executionID": execution.ID,
		"orderID":     execution.OrderID,
	}).Info("execution update")
}

func (n *LogNotifier) PLUpdate(positionID string, unrealizedPL, realizedPL decimal.Decimal) {
	n.logger.WithFields(logrus.Fields{
		"positionID": positionID,
		"unrealized": unrealizedPL,
		"realized":   realizedPL,
	}).Info("pl update")
}

func (n *LogNotifier) EquityUpdate(series []models.EquityPoint) {
	if len(series) == 0 {
		return
	}
	n.logger.WithField("equity", series[len(series)-1].Equity).Info("equity update")
}
