package detail

import (
	"strconv"

	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
)

// Form state structs. Numeric inputs are kept as typed text and only coerced
// when the form is submitted.

// Common holds the attributes every field type can edit.
type Common struct {
	Label       string
	HelpText    string
	PlaceHolder string
}

type TextForm struct {
	Common
	Subtype            string
	MaxLength          string
	CopyAble           bool
	Truncate           bool
	VisibleLinesInView string
	VisibleLinesInEdit string
}

type NumberForm struct {
	Common
	Step          string
	Format        string
	DecimalPlaces string
}

type DateTimeForm struct {
	Common
	FieldType string
}

type CheckboxForm struct {
	Common
	DefaultValue bool
}

type DropDownListForm struct {
	Common
	Subtype    string
	SourceType string
	SourcePath string
	ShowSearch bool
	RootKey    string
	ItemKey    string
}

type LookupForm struct {
	Common
	ReferencedObject    string
	PrimaryDisplayField string
	DisplayColumns      []string
}

// codec moves a form between the typed definition and flattened attributes.
type codec[F any] struct {
	decode func(def fieldtypes.FieldDefinition) F
	encode func(form F, attrs fieldtypes.Attributes)
	clone  func(form F) F
}

func (c codec[F]) copy(form F) F {
	if c.clone == nil {
		return form
	}
	return c.clone(form)
}

func commonOf(def fieldtypes.FieldDefinition) Common {
	return Common{Label: def.Label, HelpText: def.HelpText, PlaceHolder: def.PlaceHolder}
}

func (c Common) encode(attrs fieldtypes.Attributes) {
	attrs[fieldtypes.AttrLabel] = c.Label
	attrs[fieldtypes.AttrHelpText] = c.HelpText
	attrs[fieldtypes.AttrPlaceHolder] = c.PlaceHolder
}

var textCodec = codec[TextForm]{
	decode: func(def fieldtypes.FieldDefinition) TextForm {
		v := def.Text
		if v == nil {
			v = &fieldtypes.TextAttributes{}
		}
		return TextForm{
			Common:             commonOf(def),
			Subtype:            string(v.Subtype),
			MaxLength:          strconv.Itoa(v.MaxLength),
			CopyAble:           v.CopyAble,
			Truncate:           v.Truncate,
			VisibleLinesInView: strconv.Itoa(v.VisibleLinesInView),
			VisibleLinesInEdit: strconv.Itoa(v.VisibleLinesInEdit),
		}
	},
	encode: func(f TextForm, attrs fieldtypes.Attributes) {
		f.Common.encode(attrs)
		attrs[fieldtypes.AttrSubtype] = f.Subtype
		attrs[fieldtypes.AttrMaxLength] = f.MaxLength
		attrs[fieldtypes.AttrCopyAble] = fieldtypes.FormatBool(f.CopyAble)
		attrs[fieldtypes.AttrTruncate] = fieldtypes.FormatBool(f.Truncate)
		attrs[fieldtypes.AttrVisibleLinesInView] = f.VisibleLinesInView
		attrs[fieldtypes.AttrVisibleLinesInEdit] = f.VisibleLinesInEdit
	},
}

var numberCodec = codec[NumberForm]{
	decode: func(def fieldtypes.FieldDefinition) NumberForm {
		v := def.Number
		if v == nil {
			v = &fieldtypes.NumberAttributes{}
		}
		return NumberForm{
			Common:        commonOf(def),
			Step:          fieldtypes.FormatNumber(v.Step),
			Format:        string(v.Format),
			DecimalPlaces: strconv.Itoa(v.DecimalPlaces),
		}
	},
	encode: func(f NumberForm, attrs fieldtypes.Attributes) {
		f.Common.encode(attrs)
		attrs[fieldtypes.AttrStep] = f.Step
		attrs[fieldtypes.AttrFormat] = f.Format
		attrs[fieldtypes.AttrDecimalPlaces] = f.DecimalPlaces
	},
}

var dateTimeCodec = codec[DateTimeForm]{
	decode: func(def fieldtypes.FieldDefinition) DateTimeForm {
		f := DateTimeForm{Common: commonOf(def)}
		if def.DateTime != nil {
			f.FieldType = string(def.DateTime.FieldType)
		}
		return f
	},
	encode: func(f DateTimeForm, attrs fieldtypes.Attributes) {
		f.Common.encode(attrs)
		attrs[fieldtypes.AttrFieldType] = f.FieldType
	},
}

var checkboxCodec = codec[CheckboxForm]{
	decode: func(def fieldtypes.FieldDefinition) CheckboxForm {
		f := CheckboxForm{Common: commonOf(def)}
		if def.Checkbox != nil {
			f.DefaultValue = def.Checkbox.DefaultValue
		}
		return f
	},
	encode: func(f CheckboxForm, attrs fieldtypes.Attributes) {
		f.Common.encode(attrs)
		attrs[fieldtypes.AttrDefaultValue] = fieldtypes.FormatBool(f.DefaultValue)
	},
}

var dropDownListCodec = codec[DropDownListForm]{
	decode: func(def fieldtypes.FieldDefinition) DropDownListForm {
		v := def.DropDownList
		if v == nil {
			v = &fieldtypes.DropDownListAttributes{}
		}
		return DropDownListForm{
			Common:     commonOf(def),
			Subtype:    string(v.Subtype),
			SourceType: string(v.SourceType),
			SourcePath: v.SourcePath,
			ShowSearch: v.ShowSearch,
			RootKey:    v.RootKey,
			ItemKey:    v.ItemKey,
		}
	},
	encode: func(f DropDownListForm, attrs fieldtypes.Attributes) {
		f.Common.encode(attrs)
		attrs[fieldtypes.AttrSubtype] = f.Subtype
		attrs[fieldtypes.AttrSourceType] = f.SourceType
		attrs[fieldtypes.AttrSourcePath] = f.SourcePath
		attrs[fieldtypes.AttrShowSearch] = fieldtypes.FormatBool(f.ShowSearch)
		attrs[fieldtypes.AttrRootKey] = f.RootKey
		attrs[fieldtypes.AttrItemKey] = f.ItemKey
	},
}

var lookupCodec = codec[LookupForm]{
	decode: func(def fieldtypes.FieldDefinition) LookupForm {
		f := LookupForm{Common: commonOf(def)}
		if v := def.Lookup; v != nil {
			f.ReferencedObject = v.ReferencedObject
			f.PrimaryDisplayField = v.PrimaryDisplayField
			f.DisplayColumns = append([]string(nil), v.DisplayColumns...)
		}
		return f
	},
	encode: func(f LookupForm, attrs fieldtypes.Attributes) {
		f.Common.encode(attrs)
		attrs[fieldtypes.AttrReferencedObject] = f.ReferencedObject
		attrs[fieldtypes.AttrPrimaryDisplayField] = f.PrimaryDisplayField
		attrs[fieldtypes.AttrDisplayColumns] = append([]string{}, f.DisplayColumns...)
	},
	clone: func(f LookupForm) LookupForm {
		f.DisplayColumns = append([]string(nil), f.DisplayColumns...)
		return f
	},
}
