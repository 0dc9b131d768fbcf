package notifications

import (
	"errors"

	"github.com/silinternational/claimflow/log"
)

// ErrNoRecipient is returned by Send for a message without a recipient address
var ErrNoRecipient = errors.New("message has no recipient")

// Send loops through the notifiers and calls each of their Send functions. With no notifiers given,
// DefaultNotifier is used.
func Send(msg Message, notifiers ...Notifier) error {
	if msg.ToEmail == "" {
		log.Warningf("not sending '%s' message, no recipient configured for %s", msg.Subject, msg.ToName)
		return ErrNoRecipient
	}

	if len(notifiers) == 0 {
		notifiers = []Notifier{DefaultNotifier()}
	}

	for _, n := range notifiers {
		if err := n.Send(msg); err != nil {
			return err
		}
		log.Infof("%T: '%s' message sent to '%s'", n, msg.Subject, msg.ToEmail)
	}

	return nil
}
