package models

import "time"

// Document types stored in the metadata document table.
const (
	DocTypeField          = "FieldDefinition"
	DocTypeGlobalValueSet = "GlobalValueSet"
	DocTypeOther          = "Metadata"
)

// Document is one XML metadata document addressed by its path.
type Document struct {
	Path      string
	DocType   string
	Content   []byte
	Revision  string
	UpdatedAt time.Time
}

// ObjectRecord is a row of the object definition table.
type ObjectRecord struct {
	APIName     string
	Label       string
	PluralLabel string
}
