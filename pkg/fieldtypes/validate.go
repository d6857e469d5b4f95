package fieldtypes

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var apiCodePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidationErrors maps attribute names to their inline error message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message attached to name, if any.
func (v ValidationErrors) Field(name string) string {
	return v[name]
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ValidateAPICode checks the immutable identifier format.
func ValidateAPICode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("API code is required")
	}
	if !apiCodePattern.MatchString(code) {
		return fmt.Errorf("API code must start with a letter and contain only letters, digits and underscores")
	}
	return nil
}

// Validate checks a flattened attribute map against the schema of its type.
// It returns ValidationErrors for input problems and an error wrapping
// ErrUnsupportedFieldType when the type tag is not implemented.
func (r *Registry) Validate(attrs Attributes) error {
	t, err := ParseFieldType(asString(attrs[AttrType]))
	if err != nil {
		return err
	}
	schema, _ := r.Get(t)

	errs := ValidationErrors{}
	if err := ValidateAPICode(asString(attrs[AttrAPICode])); err != nil {
		errs[AttrAPICode] = err.Error()
	}
	if isAbsent(attrs[AttrLabel]) {
		errs[AttrLabel] = "Label is required"
	}

	for _, a := range schema.Attributes {
		if a.Derived {
			continue
		}
		raw := attrs[a.Name]
		if isAbsent(raw) {
			if a.Required {
				errs[a.Name] = fmt.Sprintf("%s is required", a.Name)
			}
			continue
		}
		value, err := coerce(a, raw)
		if err != nil {
			errs[a.Name] = err.Error()
			continue
		}
		if a.Rule == "" {
			continue
		}
		ok, err := r.rules.Check(a.Kind, a.Rule, value)
		if err != nil {
			return fmt.Errorf("evaluate rule for %s.%s: %w", t, a.Name, err)
		}
		if !ok {
			msg := a.Message
			if msg == "" {
				msg = fmt.Sprintf("%s is out of range", a.Name)
			}
			errs[a.Name] = msg
		}
	}
	return errs.orNil()
}

func coerce(a AttributeSchema, raw any) (any, error) {
	switch a.Kind {
	case KindInt:
		return ParseInt(raw)
	case KindNumber:
		return ParseNumber(raw)
	case KindBool:
		return ParseBool(raw)
	case KindEnum:
		v, ok := NormalizeEnum(asString(raw), a.Enum)
		if !ok {
			return nil, fmt.Errorf("must be one of %s", strings.Join(a.Enum, ", "))
		}
		return v, nil
	case KindList:
		return asList(raw), nil
	default:
		return asString(raw), nil
	}
}

// Validate checks attrs against the default registry.
func Validate(attrs Attributes) error {
	return GetRegistry().Validate(attrs)
}

// Validate checks the definition by flattening it first.
func (d FieldDefinition) Validate() error {
	return Validate(d.Flatten())
}
