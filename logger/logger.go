package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before Init is called
// (info level, text output) so packages and tests never see a nil logger.
var Log = logrus.New()

// Init configures the global logger. level and format come from the config
// file; LOG_LEVEL and LOG_FORMAT override them when set.
func Init(level, format string) {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = v
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		format = v
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// "json" for collected logs, colored text otherwise.
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// Silence routes all output to io.Discard. Used by tests that generate
// large worlds and would otherwise flood the output.
func Silence() {
	Log.SetOutput(io.Discard)
}
