package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init configures the shared logger. In development the text formatter is used, elsewhere JSON.
// If sentryDSN is set, warnings and errors are also sent to Sentry.
func Init(env, level, sentryDSN, release string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warnf("invalid log level %q, using %s", level, logger.GetLevel())
	}

	if env == "development" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if hook := NewSentryHook(sentryDSN, env, release); hook != nil {
		logger.AddHook(hook)
	}
}

// SetOutput redirects the shared logger, mainly for tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Logger exposes the shared logger for packages that need a logrus.FieldLogger
func Logger() *logrus.Logger {
	return logger
}

func WithFields(fields map[string]any) *logrus.Entry {
	return logger.WithFields(fields)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warningf(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
