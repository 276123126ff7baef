package core

// Error codes
const (
	ErrOpeningNotFound   = "OPENING_NOT_FOUND"
	ErrNoMatch           = "NO_MATCH"
	ErrRunNotFound       = "RUN_NOT_FOUND"
	ErrRefreshInProgress = "REFRESH_IN_PROGRESS"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrStorageDisabled   = "STORAGE_DISABLED"
)
