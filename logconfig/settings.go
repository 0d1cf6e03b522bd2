package logconfig

import (
	"strings"

	myLogger "github.com/sirupsen/logrus"
)

// This output format is used in the test (has terminal).
func ConfigDebugLogger() {
	myLogger.SetReportCaller(true)
	myLogger.SetLevel(myLogger.DebugLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

func ConfigInfoLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.TextFormatter{
		ForceColors:            true,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// This output format is used in production: one JSON object per line.
func ConfigProductionLogger() {
	myLogger.SetReportCaller(false)
	myLogger.SetLevel(myLogger.InfoLevel)
	myLogger.SetFormatter(&myLogger.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// ConfigLogger picks a setup by name: "debug", "info" or "production".
// Anything else is parsed as a logrus level on top of the production format.
func ConfigLogger(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		ConfigDebugLogger()
	case "", "info":
		ConfigInfoLogger()
	case "production", "prod":
		ConfigProductionLogger()
	default:
		ConfigProductionLogger()
		lvl, err := myLogger.ParseLevel(level)
		if err != nil {
			myLogger.Warnf("unknown log level %q, using info", level)
			return
		}
		myLogger.SetLevel(lvl)
	}
}
