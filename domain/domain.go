package domain

import (
	"database/sql"
	"errors"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// LocalizedDate is the date layout used in messages
const LocalizedDate = "2 January 2006"

const (
	EventPayloadID     = "id"
	EventPayloadClaim  = "claim"
	EventPayloadActor  = "actor"
	EventPayloadReason = "reason"

	// EventPayloadDerived holds the api.ClaimCreateInput of a claim to be created from an approved emergency request
	EventPayloadDerived = "derived"
)

// Event Kinds
const (
	EventApiClaimSubmitted       = "api:claim:submitted"
	EventApiClaimMedicalApproved = "api:claim:medicalapproved"
	EventApiClaimMedicalRejected = "api:claim:medicalrejected"
	EventApiClaimForwarded       = "api:claim:forwarded"
	EventApiClaimApproved        = "api:claim:approved"
	EventApiClaimRejected        = "api:claim:rejected"
	EventApiClaimReturned        = "api:claim:returned"
	EventApiClaimReapproved      = "api:claim:reapproved"
	EventApiEmergencySubmitted   = "api:emergency:submitted"
	EventApiEmergencyApproved    = "api:emergency:approved"
	EventApiEmergencyRejected    = "api:emergency:rejected"
	EventApiClaimDerived         = "api:claim:derived"
	EventApiNotificationCreated  = "api:notification:created"
)

// Env holds the values of environment variables
var Env struct {
	GoEnv    string `default:"development" envconfig:"GO_ENV"`
	AppName  string `default:"Claimflow" split_words:"true"`
	LogLevel string `default:"info" split_words:"true"`

	SentryDSN string `default:"" envconfig:"SENTRY_DSN"`
	UIURL     string `default:"http://missing.ui.url" envconfig:"UI_URL"`

	QueryDefaultPageSize int `default:"10" split_words:"true"`
	QueryMaxPageSize     int `default:"50" split_words:"true"`

	// A medical approval of a healthcare claim moves it straight into the coordination queue
	AutoForwardToCoordination bool `default:"true" split_words:"true"`

	StatsPollSeconds int `default:"30" split_words:"true"`

	NotificationService       string `default:"dummy" split_words:"true"`
	ReviewerEmailMedical      string `default:"" split_words:"true"`
	ReviewerEmailCoordination string `default:"" split_words:"true"`
	ProviderNotificationEmail string `default:"" split_words:"true"`
	NotificationFromEmail     string `default:"no_reply@example.org" split_words:"true"`
}

func init() {
	readEnv()
}

// readEnv loads environment data into `Env`
func readEnv() {
	err := envconfig.Process("", &Env)
	if err != nil {
		log.Fatal(errors.New("error loading env vars: " + err.Error()))
	}

	if Env.QueryDefaultPageSize < 1 {
		Env.QueryDefaultPageSize = 10
	}
	if Env.QueryMaxPageSize < Env.QueryDefaultPageSize {
		Env.QueryMaxPageSize = Env.QueryDefaultPageSize
	}
	if Env.StatsPollSeconds < 1 {
		Env.StatsPollSeconds = 30
	}
}

// GetUUID creates a new, unique version 4 (random) UUID. Errors are ignored.
func GetUUID() uuid.UUID {
	id, err := uuid.NewV4()
	if err != nil {
		log.Printf("error creating new uuid ... %v", err)
	}
	return id
}

// IsBlank reports whether s is empty or contains only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func RandomString(n int, includeLetters string) string {
	if includeLetters == "" {
		includeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	}
	letters := []rune(includeLetters)
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))] // #nosec G404
	}
	return string(b)
}

// BeginningOfDay returns midnight at the start of the given date, in the date's location
func BeginningOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// EndOfDay returns the last nanosecond of the given date, in the date's location
func EndOfDay(date time.Time) time.Time {
	return BeginningOfDay(date).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MinInt returns the smaller of a and b
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// IsOtherThanNoRows returns false if the error is nil or is just reporting that there
// were no rows in the result set for a sql query.
func IsOtherThanNoRows(err error) bool {
	if err == nil {
		return false
	}

	if strings.Contains(err.Error(), sql.ErrNoRows.Error()) {
		return false
	}

	return true
}
