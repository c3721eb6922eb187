package logging

// Shared field names so log queries stay consistent across components.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldUserID     = "user_id"
	FieldDocumentID = "document_id"
	FieldPath       = "path"
	FieldMode       = "mode"
	FieldBucket     = "bucket"
)
