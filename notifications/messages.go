package notifications

import (
	"github.com/silinternational/claimflow/domain"
)

type Message struct {
	Template  string
	Data      map[string]any
	FromName  string
	FromEmail string
	ToName    string
	ToEmail   string
	Subject   string
	Body      string
}

// NewEmailMessage returns a message with the FromEmail, the Data.appName and Data.uiURL already set
func NewEmailMessage() Message {
	msg := Message{
		FromName:  domain.Env.AppName,
		FromEmail: domain.Env.NotificationFromEmail,
		Data: map[string]any{
			"appName": domain.Env.AppName,
			"uiURL":   domain.Env.UIURL,
		},
	}
	return msg
}

// AddToMedicalReviewers sets the recipient to the medical review mailbox
func (m Message) AddToMedicalReviewers() Message {
	m.ToName = "Medical reviewers"
	m.ToEmail = domain.Env.ReviewerEmailMedical
	return m
}

// AddToCoordinationReviewers sets the recipient to the coordination mailbox
func (m Message) AddToCoordinationReviewers() Message {
	m.ToName = "Coordination"
	m.ToEmail = domain.Env.ReviewerEmailCoordination
	return m
}

// AddToProvider sets the recipient to the provider mailbox, addressed by the provider's name
func (m Message) AddToProvider(providerName string) Message {
	m.ToName = providerName
	m.ToEmail = domain.Env.ProviderNotificationEmail
	return m
}
