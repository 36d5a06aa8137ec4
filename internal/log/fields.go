package log

// Common field names for structured logging
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
	FieldRecordID    = "record_id"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldGoalName    = "goal_name"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpProgress = "progress"
	OpReport   = "report"
	OpExport   = "export"
	OpAlert    = "alert"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
