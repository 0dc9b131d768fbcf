package log

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

var mapLogrusToSentryLevel = map[logrus.Level]sentry.Level{
	logrus.PanicLevel: sentry.LevelFatal,
	logrus.FatalLevel: sentry.LevelFatal,
	logrus.ErrorLevel: sentry.LevelError,
	logrus.WarnLevel:  sentry.LevelWarning,
	logrus.InfoLevel:  sentry.LevelInfo,
	logrus.DebugLevel: sentry.LevelDebug,
	logrus.TraceLevel: sentry.LevelDebug,
}

type SentryHook struct {
	hub     *sentry.Hub
	capture func(*sentry.Event)
}

func (r *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (r *SentryHook) Fire(entry *logrus.Entry) error {
	extras := map[string]any{}
	for k, v := range entry.Data {
		extras[k] = v
	}

	event := sentry.Event{
		Extra:   extras,
		Level:   mapLogrusToSentryLevel[entry.Level],
		Message: entry.Message,
	}

	r.capture(&event)
	return nil
}

// SetUser tags subsequent events with the acting reviewer
func (r *SentryHook) SetUser(id, username string) {
	if r.hub == nil {
		return
	}
	r.hub.Scope().SetUser(sentry.User{
		ID:       id,
		Username: username,
	})
}

// Flush waits for buffered events to be sent
func (r *SentryHook) Flush() {
	if r.hub == nil {
		return
	}
	r.hub.Flush(2 * time.Second)
}

// NewSentryHook initializes Sentry and returns a logrus hook. It returns nil if dsn is empty.
func NewSentryHook(dsn, env, release string) *SentryHook {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		panic(fmt.Sprintf("sentry.Init: %s", err))
	}

	hub := sentry.CurrentHub()
	return &SentryHook{
		hub: hub,
		capture: func(e *sentry.Event) {
			hub.CaptureEvent(e)
		},
	}
}
