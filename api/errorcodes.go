package api

const (
	CategoryDatabase     = ErrorCategory("Database")
	CategoryUser         = ErrorCategory("User") // used for errors related to user input, validation, etc.
	CategoryForbidden    = ErrorCategory("Forbidden")
	CategoryUnauthorized = ErrorCategory("Unauthorized")
	CategoryNotFound     = ErrorCategory("NotFound")
	CategoryConflict     = ErrorCategory("Conflict") // concurrent modification of the same record
	CategoryInternal     = ErrorCategory("Internal") // used for internal server errors, not related to bad user input
)

const (
	// General

	ErrorCreateFailure         = ErrorKey("ErrorCreateFailure")
	ErrorGenericInternalServer = ErrorKey("ErrorGenericInternalServer")
	ErrorForeignKeyViolation   = ErrorKey("ErrorForeignKeyViolation")
	ErrorNoRows                = ErrorKey("ErrorNoRows")
	ErrorNotAuthorized         = ErrorKey("ErrorNotAuthorized")
	ErrorQueryFailure          = ErrorKey("ErrorQueryFailure")
	ErrorUniqueKeyViolation    = ErrorKey("ErrorUniqueKeyViolation")
	ErrorUnknown               = ErrorKey("ErrorUnknown")
	ErrorUpdateFailure         = ErrorKey("ErrorUpdateFailure")
	ErrorValidation            = ErrorKey("ErrorValidation")

	// Authorization
	ErrorResourceNotFound = ErrorKey("ErrorResourceNotFound")

	// Claim
	ErrorInvalidTransition       = ErrorKey("ErrorInvalidTransition")
	ErrorMissingReason           = ErrorKey("ErrorMissingReason")
	ErrorTransitionInProgress    = ErrorKey("ErrorTransitionInProgress")
	ErrorVersionConflict         = ErrorKey("ErrorVersionConflict")
	ErrorClaimCreateInvalidInput = ErrorKey("ErrorClaimCreateInvalidInput")
	ErrorClaimPayloadDecode      = ErrorKey("ErrorClaimPayloadDecode")

	// Partial fulfillment
	ErrorUnknownDispensedItem   = ErrorKey("ErrorUnknownDispensedItem")
	ErrorDuplicateDispensedItem = ErrorKey("ErrorDuplicateDispensedItem")
)
