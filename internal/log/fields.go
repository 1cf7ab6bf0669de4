package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldRunID        = "run_id"
	FieldTransactions = "transactions"
	FieldSequences    = "sequences"
	FieldSingletons   = "singletons"
	FieldThreshold    = "threshold"
	FieldCachedPairs  = "cached_pairs"
	FieldDuration     = "duration_ms"
	FieldRequestID    = "request_id"
	FieldPath         = "path"
	FieldMethod       = "method"
	FieldStatusCode   = "status_code"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentStore      = "store"
	ComponentSimilarity = "similarity"
	ComponentDetector   = "detector"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentAPI        = "api"
	ComponentExport     = "export"
)

// Operations defines standard operation names
const (
	OpLoad    = "load"
	OpBuild   = "build"
	OpIndex   = "index"
	OpQuery   = "query"
	OpPersist = "persist"
	OpPublish = "publish"
	OpConsume = "consume"
	OpExport  = "export"
)
