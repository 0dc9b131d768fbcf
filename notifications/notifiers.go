package notifications

import (
	"github.com/silinternational/claimflow/domain"
	"github.com/silinternational/claimflow/log"
)

const (
	NotificationServiceDummy = "dummy"
	NotificationServiceLog   = "log"
)

// Notifier is an abstraction layer for the ways a message can be delivered. Transports such as
// email or push are provided by the host application.
type Notifier interface {
	Send(msg Message) error
}

// LogNotifier writes each message, as plain text, to the application log
type LogNotifier struct{}

func (LogNotifier) Send(msg Message) error {
	text, err := RenderText(msg)
	if err != nil {
		return err
	}

	log.WithFields(map[string]any{
		"to":       msg.ToEmail,
		"subject":  msg.Subject,
		"template": msg.Template,
	}).Info(text)
	return nil
}

// DefaultNotifier returns the notifier selected by domain.Env.NotificationService
func DefaultNotifier() Notifier {
	switch domain.Env.NotificationService {
	case NotificationServiceLog:
		return LogNotifier{}
	case NotificationServiceDummy:
		return &TestNotifier
	default:
		return &TestNotifier
	}
}
