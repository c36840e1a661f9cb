package migrate

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type gooseSlogLogger struct {
	logger *slog.Logger
}

func newGooseLogger(logger *slog.Logger) gooseSlogLogger {
	return gooseSlogLogger{logger: logger}
}

func (l gooseSlogLogger) Printf(format string, v ...interface{}) {
	if l.logger == nil {
		return
	}
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	l.logger.Info(msg)
}

func (l gooseSlogLogger) Fatalf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if l.logger != nil {
		l.logger.Error(msg)
	}
	os.Exit(1)
}
