package persistence

// Tables.
const (
	TableMetadataDocument = "_metadata_document"
	TableObjectDefinition = "_object_definition"
	TableCompanySetting   = "_company_setting"
)

// Columns.
const (
	ColPath        = "path"
	ColDocType     = "doc_type"
	ColContent     = "content"
	ColRevision    = "revision"
	ColUpdatedAt   = "updated_at"
	ColAPIName     = "api_name"
	ColLabel       = "label"
	ColPluralLabel = "plural_label"
	ColCode        = "code"
	ColEnabled     = "enabled"
)
