package api

import (
	"net/http"
	"strings"
	"unicode"
)

type ErrorKey string

func (e ErrorKey) String() string {
	return string(e)
}

type ErrorCategory string

func (e ErrorCategory) String() string {
	return string(e)
}

// AppError holds information that is helpful in logging and reporting api errors
type AppError struct {
	Err error `json:"-"`

	// Don't change the value of these Key entries without making a corresponding change on the UI,
	// since these will be converted to human-friendly texts for presentation to the user
	Key ErrorKey `json:"key"`

	HttpStatus int `json:"status"`

	// detailed error message for debugging
	DebugMsg string `json:"debug_msg,omitempty"`

	Category ErrorCategory `json:"-"`

	Message string `json:"message"`

	// Extra data providing detail about the error condition
	Extras map[string]any `json:"extras,omitempty"`
}

func (a *AppError) Error() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

func (a *AppError) Unwrap() error {
	return a.Err
}

// NewAppError returns a new AppError with its Err, Key and Category set
func NewAppError(err error, key ErrorKey, category ErrorCategory) *AppError {
	return &AppError{
		Err:      err,
		Key:      key,
		Category: category,
	}
}

// WithExtra adds a key-value pair to the Extras map and returns the AppError for chaining
func (a *AppError) WithExtra(key string, value any) *AppError {
	if a.Extras == nil {
		a.Extras = map[string]any{}
	}
	a.Extras[key] = value
	return a
}

// SetHttpStatusFromCategory assigns the appropriate HTTP status based on the error category, if not
// already set.
func (a *AppError) SetHttpStatusFromCategory() {
	if a.HttpStatus != 0 {
		return
	}

	switch a.Category {
	case CategoryInternal, CategoryDatabase:
		a.HttpStatus = http.StatusInternalServerError
	case CategoryNotFound:
		a.HttpStatus = http.StatusNotFound
	case CategoryForbidden:
		a.HttpStatus = http.StatusForbidden
	case CategoryUnauthorized:
		a.HttpStatus = http.StatusUnauthorized
	case CategoryConflict:
		a.HttpStatus = http.StatusConflict
	default:
		a.HttpStatus = http.StatusBadRequest
	}
}

// LoadMessage assigns a readable message derived from the Key, unless the HttpStatus is 500 in which
// case a generic message is used.
func (a *AppError) LoadMessage() {
	key := a.Key
	if a.HttpStatus == http.StatusInternalServerError {
		key = ErrorGenericInternalServer
	}
	a.Message = keyToReadableString(key.String())
}

// keyToReadableString takes a key like ErrorSomethingSomethingOther and returns "Something something other".
// Leading lowercase letters are dropped. Acronyms are kept together as a single word.
func keyToReadableString(key string) string {
	key = strings.TrimPrefix(key, "Error")
	runes := []rune(key)

	var words []string
	start := -1
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			continue
		}
		prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
		nextLower := i+1 < len(runes) && !unicode.IsUpper(runes[i+1])
		prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
		if start == -1 {
			start = i
			continue
		}
		if prevLower || (prevUpper && nextLower) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start == -1 {
		return key
	}
	words = append(words, string(runes[start:]))

	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	first := []rune(words[0])
	first[0] = unicode.ToUpper(first[0])
	words[0] = string(first)

	return strings.Join(words, " ")
}
