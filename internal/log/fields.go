package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldOpenID      = "open_id"
	FieldCategoryID  = "category_id"
	FieldTransaction = "transaction_id"
	FieldAmountCents = "amount_cents"
	FieldKind        = "kind"
	FieldProcedure   = "procedure"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentSession   = "session"
	ComponentStats     = "stats"
	ComponentLedger    = "ledger"
	ComponentEvents    = "events"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentSecurity  = "security"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpUpsert   = "upsert"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
