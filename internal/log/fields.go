package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEntity     = "entity"
	FieldEntityID   = "entity_id"
	FieldAmount     = "amount"
	FieldBudget     = "budget"
	FieldStatus     = "task_status"
	FieldBackend    = "backend"
	FieldSchedule   = "schedule"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentScheduler = "scheduler"
	ComponentAMQP      = "amqp"
	ComponentSheets    = "sheets"
)

// Operations names the ledger operations in log records and metrics.
const (
	OpSnapshot     = "snapshot"
	OpUpdateConfig = "update_config"
	OpAddIncome    = "add_income"
	OpEditIncome   = "edit_income"
	OpAddExpense   = "add_expense"
	OpEditExpense  = "edit_expense"
	OpAddTask      = "add_task"
	OpUpdateTask   = "update_task_status"
	OpEditTask     = "edit_task"
	OpExport       = "export"
	OpChargeRent   = "charge_rent"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

// LogFields builds a set of structured attributes.
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithRecord adds the entity kind and id a mutation touched.
func (f LogFields) WithRecord(kind string, id int64) LogFields {
	f[FieldEntity] = kind
	f[FieldEntityID] = id
	return f
}

// WithAmounts adds the record amount and the resulting budget.
func (f LogFields) WithAmounts(amount, budget float64) LogFields {
	f[FieldAmount] = amount
	f[FieldBudget] = budget
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
