package notify

import "log/slog"

// LogSink writes notifications to the structured log.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{logger: slog.Default()}
}

func (s *LogSink) Show(n Notification) {
	s.logger.Info("Notification", "id", n.ID, "source", n.SourceKey, "title", n.Title, "url", n.URL)
}

func (s *LogSink) Withdraw(n Notification) {
	s.logger.Debug("Notification withdrawn", "id", n.ID, "url", n.URL)
}
