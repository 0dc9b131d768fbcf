package notifications

import (
	"sync"

	"github.com/silinternational/claimflow/log"
)

// DummyNotifier renders and keeps every message it is given. It is safe for concurrent use.
type DummyNotifier struct {
	mu   sync.Mutex
	sent []dummyMessage
}

var TestNotifier DummyNotifier

type dummyMessage struct {
	subject, body, template, toName, toEmail string
}

type DummyMessageInfo struct {
	Subject, Template, ToName, ToEmail string
}

func (t *DummyNotifier) Send(msg Message) error {
	body, err := RenderHTML(msg)
	if err != nil {
		log.Errorf("error rendering message body - %s", err)
		return err
	}

	log.Debugf("dummy message subject: %s, recipient: %s", msg.Subject, msg.ToName)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, dummyMessage{
		subject:  msg.Subject,
		body:     body,
		template: msg.Template,
		toName:   msg.ToName,
		toEmail:  msg.ToEmail,
	})
	return nil
}

// GetNumberOfMessagesSent returns the number of messages sent since initialization or the last call to
// DeleteSentMessages
func (t *DummyNotifier) GetNumberOfMessagesSent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// DeleteSentMessages erases the store of sent messages
func (t *DummyNotifier) DeleteSentMessages() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
}

func (t *DummyNotifier) GetLastToEmail() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return ""
	}
	return t.sent[len(t.sent)-1].toEmail
}

func (t *DummyNotifier) GetLastBody() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return ""
	}
	return t.sent[len(t.sent)-1].body
}

func (t *DummyNotifier) GetSentMessages() []DummyMessageInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	messages := make([]DummyMessageInfo, len(t.sent))
	for i, m := range t.sent {
		messages[i] = DummyMessageInfo{
			Subject:  m.subject,
			Template: m.template,
			ToName:   m.toName,
			ToEmail:  m.toEmail,
		}
	}
	return messages
}
