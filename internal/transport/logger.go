package transport

import (
	"fmt"
	"log/slog"
	"strings"
)

// restyLogger adapts *slog.Logger to resty's printf-style Logger interface.
type restyLogger struct {
	logger *slog.Logger
}

func newRestyLogger(logger *slog.Logger) *restyLogger {
	return &restyLogger{logger: logger}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(l.format(format, v...), "component", "resty")
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(l.format(format, v...), "component", "resty")
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(l.format(format, v...), "component", "resty")
}

func (l *restyLogger) format(format string, v ...interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
