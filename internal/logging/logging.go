package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the global logger to write to a rotated log file.
// A TUI owns the terminal, so nothing may be written to stdout here.
func Setup(logFile, level string) {
	logrus.SetLevel(parseLevel(level))

	if !strings.HasSuffix(logFile, ".log") {
		logFile += ".log"
	}

	logrus.SetOutput(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		Compress:   true,
	})
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
