// Package log wraps logrus behind a debug switch.
// When disabled, every call is a no-op so library code can log freely.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	enabled bool
	logger  = logrus.New()
)

// Setup enables or disables logging. Output goes to w, or stderr when w is nil.
func Setup(debug bool, w io.Writer) {
	enabled = debug
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Enabled reports whether logging is on.
func Enabled() bool { return enabled }

// WithField returns an entry carrying key=value, for grouped messages.
func WithField(key string, value interface{}) *logrus.Entry {
	if !enabled {
		return logrus.NewEntry(discard)
	}
	return logger.WithField(key, value)
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func Debugf(format string, args ...interface{}) {
	if enabled {
		logger.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if enabled {
		logger.Infof(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if enabled {
		logger.Warnf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if enabled {
		logger.Errorf(format, args...)
	}
}

func Error(args ...interface{}) {
	if enabled {
		logger.Error(args...)
	}
}
