package constants

// Context keys
const (
	ContextKeyIdentity  = "identity"
	ContextKeyRequestID = "request_id"
)

// Pagination
const (
	MinPageNumber   = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Field limits
const (
	MaxProjectNameLength        = 100
	MaxProjectDescriptionLength = 500
	MaxTaskTitleLength          = 100
	MaxTaskDescriptionLength    = 1000
	MinPasswordLength           = 8
)

// SystemActor is recorded in audit columns when no caller identity is attached.
const SystemActor = "system"

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"
