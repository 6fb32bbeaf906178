package utils

import (
	"fmt" // Error formatting

	"github.com/sirupsen/logrus" // Logging library
)

// ConfigureLogger sets the global logrus formatter and level
func ConfigureLogger(level string, isProd bool) error {
	if isProd {
		logrus.SetFormatter(&logrus.JSONFormatter{}) // Machine readable logs in production
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	return nil
}
