package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldOperation is the state store operation (save, delete, gallery, ...)
	FieldOperation = "operation"

	// FieldImageID is the catalog image ID
	FieldImageID = "image_id"

	// FieldSource is the remote image source identifier
	FieldSource = "source"
)

// Metric fields, used on Entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"
	FieldPage       = "page"
)
