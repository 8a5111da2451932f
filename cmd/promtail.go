package main

import (
	"github.com/ic2hrmk/promtail"
	"github.com/sirupsen/logrus"
)

func (a *App) initLoki() error {
	identifiers := map[string]string{
		"instanceId": a.Name,
	}

	promTail, err := promtail.NewJSONv1Client(a.Config.LokiAddress, identifiers)
	if err != nil {
		return err
	}

	a.PromTail = promTail
	a.Logger.AddHook(&promtailHook{client: promTail})

	return nil
}

// promtailHook forwards logrus entries to Loki.
type promtailHook struct {
	client promtail.Client
}

func (h *promtailHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.DebugLevel,
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
	}
}

func (h *promtailHook) Fire(entry *logrus.Entry) error {
	switch entry.Level {
	case logrus.DebugLevel:
		h.client.Debugf("%s", entry.Message)
	case logrus.InfoLevel:
		h.client.Infof("%s", entry.Message)
	case logrus.WarnLevel:
		h.client.Warnf("%s", entry.Message)
	default:
		h.client.Errorf("%s", entry.Message)
	}

	return nil
}
