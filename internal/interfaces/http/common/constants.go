package common

const (
	// MaxAuditImageBytes limits one uploaded capture frame.
	MaxAuditImageBytes = 10 << 20
	// MaxAuditRequestBody limits JSON request bodies for audit/store endpoints.
	MaxAuditRequestBody = 1 << 20
	// DefaultStoreListLimit is applied when the client omits a limit.
	DefaultStoreListLimit = 20
)
