package fieldtypes

import (
	"errors"
	"fmt"
)

// FieldType is the discriminator of a field definition.
type FieldType string

const (
	TypeText         FieldType = "TextField"
	TypeNumber       FieldType = "NumberField"
	TypeDateTime     FieldType = "DateTimeField"
	TypeDropDownList FieldType = "DropDownListField"
	TypeCheckbox     FieldType = "CheckboxField"
	TypeAddress      FieldType = "AddressField"
	TypeLookup       FieldType = "LookupField"

	// Offered as choices but not implemented yet.
	TypeFormula FieldType = "FormulaField"
	TypeAmount  FieldType = "AmountField"
)

// ErrUnsupportedFieldType is returned for any type outside the implemented set.
var ErrUnsupportedFieldType = errors.New("unsupported field type")

// KnownTypes lists the implemented field types in display order.
var KnownTypes = []FieldType{
	TypeText,
	TypeNumber,
	TypeDateTime,
	TypeDropDownList,
	TypeCheckbox,
	TypeAddress,
	TypeLookup,
}

// IsKnown reports whether t is one of the implemented variants.
func (t FieldType) IsKnown() bool {
	switch t {
	case TypeText, TypeNumber, TypeDateTime, TypeDropDownList, TypeCheckbox, TypeAddress, TypeLookup:
		return true
	default:
		return false
	}
}

// ParseFieldType converts a raw tag into a FieldType.
func ParseFieldType(raw string) (FieldType, error) {
	t := FieldType(raw)
	if !t.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFieldType, raw)
	}
	return t, nil
}

// Attribute names shared by every variant.
const (
	AttrType        = "type"
	AttrAPICode     = "apiCode"
	AttrLabel       = "label"
	AttrHelpText    = "helpText"
	AttrPlaceHolder = "placeHolder"
)

// Variant attribute names.
const (
	AttrSubtype             = "subtype"
	AttrMaxLength           = "maxLength"
	AttrCopyAble            = "copyAble"
	AttrTruncate            = "truncate"
	AttrVisibleLinesInView  = "visibleLinesInView"
	AttrVisibleLinesInEdit  = "visibleLinesInEdit"
	AttrStep                = "step"
	AttrFormat              = "format"
	AttrDecimalPlaces       = "decimalPlaces"
	AttrFieldType           = "fieldType"
	AttrSourceType          = "sourceType"
	AttrSourcePath          = "sourcePath"
	AttrShowSearch          = "showSearch"
	AttrRootKey             = "rootKey"
	AttrItemKey             = "itemKey"
	AttrDefaultValue        = "defaultValue"
	AttrStreetAddressColumn = "streetAddressColumn"
	AttrCityColumn          = "cityColumn"
	AttrStateProvinceColumn = "stateProvinceColumn"
	AttrZipCodeColumn       = "zipCodeColumn"
	AttrCountryColumn       = "countryColumn"
	AttrReferencedObject    = "referencedObject"
	AttrPrimaryDisplayField = "primaryDisplayField"
	AttrDisplayColumns      = "displayColumns"
)

type TextSubtype string

const (
	TextSubtypeText  TextSubtype = "text"
	TextSubtypeEmail TextSubtype = "email"
	TextSubtypePhone TextSubtype = "phone"
	TextSubtypeURL   TextSubtype = "url"
)

type NumberFormat string

const (
	NumberFormatNumber     NumberFormat = "Number"
	NumberFormatPercentage NumberFormat = "Percentage"
)

type DateTimeKind string

const (
	DateTimeKindDate     DateTimeKind = "Date"
	DateTimeKindTime     DateTimeKind = "Time"
	DateTimeKindDateTime DateTimeKind = "DateTime"
)

type SelectSubtype string

const (
	SelectSubtypeSingle SelectSubtype = "singleSelect"
	SelectSubtypeMulti  SelectSubtype = "multiSelect"
)

type SourceType string

const (
	SourceTypeUniversal SourceType = "UniversalMetadata"
	SourceTypeGlobal    SourceType = "GlobalMetadata"
)

// Attributes is the flattened, persisted shape of a field definition.
// Scalars are strings, booleans are "true"/"false" and lists are []string.
type Attributes map[string]any

// FieldRef identifies a field as listed by the field list endpoint.
type FieldRef struct {
	Type     FieldType `json:"type"`
	APICode  string    `json:"apiCode"`
	Label    string    `json:"label"`
	FilePath string    `json:"filePath"`
}

// FieldDefinition is a tagged union over FieldType. Exactly one variant pointer,
// the one matching Type, is set.
type FieldDefinition struct {
	Type        FieldType
	APICode     string
	Label       string
	HelpText    string
	PlaceHolder string

	Text         *TextAttributes
	Number       *NumberAttributes
	DateTime     *DateTimeAttributes
	DropDownList *DropDownListAttributes
	Checkbox     *CheckboxAttributes
	Address      *AddressAttributes
	Lookup       *LookupAttributes
}

type TextAttributes struct {
	Subtype            TextSubtype
	MaxLength          int
	CopyAble           bool
	Truncate           bool
	VisibleLinesInView int
	VisibleLinesInEdit int
}

type NumberAttributes struct {
	Step          float64
	Format        NumberFormat
	DecimalPlaces int
}

type DateTimeAttributes struct {
	FieldType DateTimeKind
}

type DropDownListAttributes struct {
	Subtype    SelectSubtype
	SourceType SourceType
	SourcePath string
	ShowSearch bool
	RootKey    string
	ItemKey    string
}

type CheckboxAttributes struct {
	DefaultValue bool
}

// AddressAttributes holds the five column names derived from the apiCode.
type AddressAttributes struct {
	StreetAddressColumn string
	CityColumn          string
	StateProvinceColumn string
	ZipCodeColumn       string
	CountryColumn       string
}

type LookupAttributes struct {
	ReferencedObject    string
	PrimaryDisplayField string
	DisplayColumns      []string
}

// Ref returns the list reference for this definition.
func (d FieldDefinition) Ref(filePath string) FieldRef {
	return FieldRef{Type: d.Type, APICode: d.APICode, Label: d.Label, FilePath: filePath}
}
