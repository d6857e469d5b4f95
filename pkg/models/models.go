package models

import "github.com/nexuscrm/fieldstudio/pkg/fieldtypes"

// ObjectDefinition describes a business object and the fields it carries.
type ObjectDefinition struct {
	APIName     string                `json:"apiName"`
	Label       string                `json:"label"`
	PluralLabel string                `json:"pluralLabel,omitempty"`
	Fields      []fieldtypes.FieldRef `json:"fields"`
}

// FieldCodes returns the apiCodes of the object's fields in order.
func (o ObjectDefinition) FieldCodes() []string {
	codes := make([]string, 0, len(o.Fields))
	for _, f := range o.Fields {
		codes = append(codes, f.APICode)
	}
	return codes
}

// GlobalValueSetSummary is one entry of the global value set picker.
type GlobalValueSetSummary struct {
	Name       string `json:"name"`
	Title      string `json:"title,omitempty"`
	SourcePath string `json:"sourcePath"`
	RootKey    string `json:"rootKey"`
	ItemKey    string `json:"itemKey"`
}

// CreateGlobalValueSetRequest creates a shared value set from plain values.
type CreateGlobalValueSetRequest struct {
	Name   string   `json:"name" binding:"required"`
	Title  string   `json:"title,omitempty"`
	Values []string `json:"values" binding:"required,min=1,dive,required"`
}

// CapabilitiesResponse lists the enabled company setting codes.
type CapabilitiesResponse struct {
	Capabilities []string `json:"capabilities"`
}

// MutationResponse is returned by create and update endpoints.
type MutationResponse struct {
	Message string                `json:"message"`
	Field   fieldtypes.Attributes `json:"field,omitempty"`
}
