package usecases

import (
	"papertrade/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// safeSink shields the engine from the host: a panicking callback is
// logged and swallowed so the committed mutation stands.
type safeSink struct {
	sink   HostSink
	logger *logrus.Logger
}

func newSafeSink(sink HostSink, logger *logrus.Logger) *safeSink {
	return &safeSink{sink: sink, logger: logger}
}

func (s *safeSink) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("callback", name).Errorf("host callback panicked: %v", r)
		}
	}()

	fn()
}

func (s *safeSink) OrderUpdate(order *models.Order) {
	s.guard("orderUpdate", func() { s.sink.OrderUpdate(order) })
}

func (s *safeSink) PositionUpdate(position *models.Position) {
	s.guard("positionUpdate", func() { s.sink.PositionUpdate(position) })
}

func (s *safeSink) ExecutionUpdate(execution *models.Execution) {
	s.guard("executionUpdate", func() { s.sink.ExecutionUpdate(execution) })
}

func (s *safeSink) PLUpdate(positionID string, unrealizedPL, realizedPL decimal.Decimal) {
	s.guard("plUpdate", func() { s.sink.PLUpdate(positionID, unrealizedPL, realizedPL) })
}

func (s *safeSink) EquityUpdate(series []models.EquityPoint) {
	s.guard("equityUpdate", func() { s.sink.EquityUpdate(series) })
}

func (s *safeSink) SessionEstablished(accountID string) {
	s.guard("sessionEstablished", func() { s.sink.SessionEstablished(accountID) })
}
