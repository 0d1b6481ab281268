package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldRecordID    = "record_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldGoalStatus  = "goal_status"
	FieldAction      = "action"
	FieldBatchSize   = "batch_size"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentStorage     = "storage"
	ComponentCategory    = "category"
	ComponentTransaction = "transaction"
	ComponentGoal        = "goal"
	ComponentReport      = "report"
	ComponentDashboard   = "dashboard"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentExport      = "export"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
