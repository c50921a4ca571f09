package log

// Field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldTelegramID    = "telegram_id"
	FieldChatID        = "chat_id"
	FieldTransactionID = "transaction_id"
	FieldCategoryID    = "category_id"
	FieldRecurringID   = "recurring_id"
	FieldAmountCents   = "amount_cents"
	FieldType          = "type"
	FieldEventKind     = "event_kind"
	FieldYear          = "year"
	FieldMonth         = "month"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentBot       = "bot"
	ComponentParser    = "parser"
	ComponentStorage   = "storage"
	ComponentLink      = "link"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentRecurring = "recurring"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
)

// Operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpMerge    = "merge"
	OpLink     = "link"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
