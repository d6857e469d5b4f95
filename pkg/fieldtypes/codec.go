package fieldtypes

import "fmt"

// attrReader reads variant attributes, falling back to schema defaults and
// normalizing legacy enum casing.
type attrReader struct {
	attrs  Attributes
	schema TypeSchema
}

func (r attrReader) raw(name string) any {
	if v, ok := r.attrs[name]; ok && !isAbsent(v) {
		return v
	}
	if a, ok := r.schema.Attribute(name); ok && a.Default != nil {
		return *a.Default
	}
	return nil
}

func (r attrReader) str(name string) string {
	return asString(r.raw(name))
}

func (r attrReader) enum(name string) string {
	v := r.str(name)
	if a, ok := r.schema.Attribute(name); ok {
		if canonical, ok := NormalizeEnum(v, a.Enum); ok {
			return canonical
		}
	}
	return v
}

func (r attrReader) integer(name string) int {
	i, err := ParseInt(r.raw(name))
	if err != nil {
		return 0
	}
	return i
}

func (r attrReader) number(name string) float64 {
	f, err := ParseNumber(r.raw(name))
	if err != nil {
		return 0
	}
	return f
}

func (r attrReader) boolean(name string) bool {
	b, err := ParseBool(r.raw(name))
	if err != nil {
		return false
	}
	return b
}

// Parse builds a FieldDefinition from its flattened representation. It is lenient:
// unparseable values fall back to zero values so legacy documents still load.
// Use Validate for strict checking.
func Parse(attrs Attributes) (FieldDefinition, error) {
	t, err := ParseFieldType(asString(attrs[AttrType]))
	if err != nil {
		return FieldDefinition{}, err
	}
	schema, ok := Schema(t)
	if !ok {
		return FieldDefinition{}, fmt.Errorf("%w: %q", ErrUnsupportedFieldType, t)
	}
	r := attrReader{attrs: attrs, schema: schema}

	def := FieldDefinition{
		Type:        t,
		APICode:     asString(attrs[AttrAPICode]),
		Label:       asString(attrs[AttrLabel]),
		HelpText:    asString(attrs[AttrHelpText]),
		PlaceHolder: asString(attrs[AttrPlaceHolder]),
	}

	switch t {
	case TypeText:
		def.Text = &TextAttributes{
			Subtype:            TextSubtype(r.enum(AttrSubtype)),
			MaxLength:          r.integer(AttrMaxLength),
			CopyAble:           r.boolean(AttrCopyAble),
			Truncate:           r.boolean(AttrTruncate),
			VisibleLinesInView: r.integer(AttrVisibleLinesInView),
			VisibleLinesInEdit: r.integer(AttrVisibleLinesInEdit),
		}
	case TypeNumber:
		def.Number = &NumberAttributes{
			Step:          r.number(AttrStep),
			Format:        NumberFormat(r.enum(AttrFormat)),
			DecimalPlaces: r.integer(AttrDecimalPlaces),
		}
	case TypeDateTime:
		def.DateTime = &DateTimeAttributes{FieldType: DateTimeKind(r.enum(AttrFieldType))}
	case TypeDropDownList:
		def.DropDownList = &DropDownListAttributes{
			Subtype:    SelectSubtype(r.enum(AttrSubtype)),
			SourceType: SourceType(r.enum(AttrSourceType)),
			SourcePath: r.str(AttrSourcePath),
			ShowSearch: r.boolean(AttrShowSearch),
			RootKey:    r.str(AttrRootKey),
			ItemKey:    r.str(AttrItemKey),
		}
	case TypeCheckbox:
		def.Checkbox = &CheckboxAttributes{DefaultValue: r.boolean(AttrDefaultValue)}
	case TypeAddress:
		derived := AddressColumns(def.APICode)
		def.Address = &AddressAttributes{
			StreetAddressColumn: firstNonEmpty(r.str(AttrStreetAddressColumn), derived.StreetAddressColumn),
			CityColumn:          firstNonEmpty(r.str(AttrCityColumn), derived.CityColumn),
			StateProvinceColumn: firstNonEmpty(r.str(AttrStateProvinceColumn), derived.StateProvinceColumn),
			ZipCodeColumn:       firstNonEmpty(r.str(AttrZipCodeColumn), derived.ZipCodeColumn),
			CountryColumn:       firstNonEmpty(r.str(AttrCountryColumn), derived.CountryColumn),
		}
	case TypeLookup:
		def.Lookup = &LookupAttributes{
			ReferencedObject:    r.str(AttrReferencedObject),
			PrimaryDisplayField: r.str(AttrPrimaryDisplayField),
			DisplayColumns:      asList(attrs[AttrDisplayColumns]),
		}
	}
	return def, nil
}

// Flatten renders the definition in its persisted shape. Only the variant
// matching Type is emitted.
func (d FieldDefinition) Flatten() Attributes {
	attrs := Attributes{
		AttrType:        string(d.Type),
		AttrAPICode:     d.APICode,
		AttrLabel:       d.Label,
		AttrHelpText:    d.HelpText,
		AttrPlaceHolder: d.PlaceHolder,
	}

	switch d.Type {
	case TypeText:
		if v := d.Text; v != nil {
			attrs[AttrSubtype] = string(v.Subtype)
			attrs[AttrMaxLength] = fmt.Sprint(v.MaxLength)
			attrs[AttrCopyAble] = FormatBool(v.CopyAble)
			attrs[AttrTruncate] = FormatBool(v.Truncate)
			attrs[AttrVisibleLinesInView] = fmt.Sprint(v.VisibleLinesInView)
			attrs[AttrVisibleLinesInEdit] = fmt.Sprint(v.VisibleLinesInEdit)
		}
	case TypeNumber:
		if v := d.Number; v != nil {
			attrs[AttrStep] = FormatNumber(v.Step)
			attrs[AttrFormat] = string(v.Format)
			attrs[AttrDecimalPlaces] = fmt.Sprint(v.DecimalPlaces)
		}
	case TypeDateTime:
		if v := d.DateTime; v != nil {
			attrs[AttrFieldType] = string(v.FieldType)
		}
	case TypeDropDownList:
		if v := d.DropDownList; v != nil {
			attrs[AttrSubtype] = string(v.Subtype)
			attrs[AttrSourceType] = string(v.SourceType)
			attrs[AttrSourcePath] = v.SourcePath
			attrs[AttrShowSearch] = FormatBool(v.ShowSearch)
			attrs[AttrRootKey] = v.RootKey
			attrs[AttrItemKey] = v.ItemKey
		}
	case TypeCheckbox:
		if v := d.Checkbox; v != nil {
			attrs[AttrDefaultValue] = FormatBool(v.DefaultValue)
		}
	case TypeAddress:
		if v := d.Address; v != nil {
			attrs[AttrStreetAddressColumn] = v.StreetAddressColumn
			attrs[AttrCityColumn] = v.CityColumn
			attrs[AttrStateProvinceColumn] = v.StateProvinceColumn
			attrs[AttrZipCodeColumn] = v.ZipCodeColumn
			attrs[AttrCountryColumn] = v.CountryColumn
		}
	case TypeLookup:
		if v := d.Lookup; v != nil {
			cols := make([]string, len(v.DisplayColumns))
			copy(cols, v.DisplayColumns)
			attrs[AttrReferencedObject] = v.ReferencedObject
			attrs[AttrPrimaryDisplayField] = v.PrimaryDisplayField
			attrs[AttrDisplayColumns] = cols
		}
	}
	return attrs
}

// Clone returns a deep copy so editors can mutate a shadow without touching
// the fetched value.
func (d FieldDefinition) Clone() FieldDefinition {
	c := d
	if d.Text != nil {
		v := *d.Text
		c.Text = &v
	}
	if d.Number != nil {
		v := *d.Number
		c.Number = &v
	}
	if d.DateTime != nil {
		v := *d.DateTime
		c.DateTime = &v
	}
	if d.DropDownList != nil {
		v := *d.DropDownList
		c.DropDownList = &v
	}
	if d.Checkbox != nil {
		v := *d.Checkbox
		c.Checkbox = &v
	}
	if d.Address != nil {
		v := *d.Address
		c.Address = &v
	}
	if d.Lookup != nil {
		v := *d.Lookup
		v.DisplayColumns = append([]string(nil), d.Lookup.DisplayColumns...)
		c.Lookup = &v
	}
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
