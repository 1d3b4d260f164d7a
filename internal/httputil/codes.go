package httputil

// Machine-readable error codes returned alongside error messages so
// clients can branch without string matching.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeEmailAlreadyExists     = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeEmailNotVerified       = "EMAIL_NOT_VERIFIED"
	CodeAccountLocked          = "ACCOUNT_LOCKED"
	CodeAccountDeactivated     = "ACCOUNT_DEACTIVATED"
	CodeInvalidCurrentPassword = "INVALID_CURRENT_PASSWORD"

	CodeMalformedToken    = "MALFORMED_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeMissingAuth       = "MISSING_AUTH"

	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"

	CodeAccessDenied   = "ACCESS_DENIED"
	CodeNotFound       = "NOT_FOUND"
	CodeMissingSession = "MISSING_SESSION"

	CodeAdminExists   = "ADMIN_EXISTS"
	CodeAdminDisabled = "ADMIN_BOOTSTRAP_DISABLED"
)
