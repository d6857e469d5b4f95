package fieldtypes

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed fieldTypes.json
var fieldTypesFS embed.FS

// AttributeKind tells the validator how to coerce a flattened attribute value.
type AttributeKind string

const (
	KindString AttributeKind = "string"
	KindInt    AttributeKind = "int"
	KindNumber AttributeKind = "number"
	KindBool   AttributeKind = "bool"
	KindEnum   AttributeKind = "enum"
	KindList   AttributeKind = "list"
)

// AttributeSchema describes one variant-specific attribute.
type AttributeSchema struct {
	Name     string        `json:"name"`
	Kind     AttributeKind `json:"kind"`
	Required bool          `json:"required,omitempty"`
	Enum     []string      `json:"enum,omitempty"`
	Default  *string       `json:"default,omitempty"`
	// Derived attributes are computed from other attributes and never edited directly.
	Derived bool `json:"derived,omitempty"`
	// Rule is an expression over `value` that must evaluate to true.
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
}

// TypeSchema is the registry entry for one field type.
type TypeSchema struct {
	Type        FieldType         `json:"type"`
	Order       int               `json:"order"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Capability  string            `json:"capability,omitempty"`
	Planned     bool              `json:"planned,omitempty"`
	Attributes  []AttributeSchema `json:"attributes"`
}

// Attribute returns the schema of a named attribute.
func (s TypeSchema) Attribute(name string) (AttributeSchema, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSchema{}, false
}

// Registry holds the field type schemas loaded from the embedded JSON.
type Registry struct {
	types map[FieldType]TypeSchema
	rules *ruleEngine
	mu    sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field types registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			types: make(map[FieldType]TypeSchema),
			rules: newRuleEngine(),
		}
		if err := defaultRegistry.loadFromEmbedded(); err != nil {
			panic(fmt.Sprintf("fieldtypes: embedded registry is invalid: %v", err))
		}
	})
	return defaultRegistry
}

func (r *Registry) loadFromEmbedded() error {
	data, err := fieldTypesFS.ReadFile("fieldTypes.json")
	if err != nil {
		return err
	}

	var types map[FieldType]TypeSchema
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}
	for name, schema := range types {
		schema.Type = name
		types[name] = schema
	}
	for _, t := range KnownTypes {
		if s, ok := types[t]; !ok || s.Planned {
			return fmt.Errorf("missing schema for %s", t)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = types
	return nil
}

// Get returns the schema for an implemented field type.
func (r *Registry) Get(t FieldType) (TypeSchema, bool) {
	if !t.IsKnown() {
		return TypeSchema{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.types[t]
	return s, ok
}

// Choices returns every registered type, implemented or planned, in display order.
func (r *Registry) Choices() []TypeSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]TypeSchema, 0, len(r.types))
	for _, s := range r.types {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Order < result[j].Order })
	return result
}

// DefaultTemplate returns the flattened defaults for a new field of type t.
func (r *Registry) DefaultTemplate(t FieldType) (Attributes, error) {
	s, ok := r.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFieldType, t)
	}
	attrs := Attributes{
		AttrType:        string(t),
		AttrAPICode:     "",
		AttrLabel:       "",
		AttrHelpText:    "",
		AttrPlaceHolder: "",
	}
	for _, a := range s.Attributes {
		switch {
		case a.Default != nil:
			attrs[a.Name] = *a.Default
		case a.Kind == KindList:
			attrs[a.Name] = []string{}
		default:
			attrs[a.Name] = ""
		}
	}
	return attrs, nil
}

// Schema returns the schema for t from the default registry.
func Schema(t FieldType) (TypeSchema, bool) {
	return GetRegistry().Get(t)
}

// DefaultTemplate returns the default attribute template from the default registry.
func DefaultTemplate(t FieldType) (Attributes, error) {
	return GetRegistry().DefaultTemplate(t)
}

// Choices returns all field type choices from the default registry.
func Choices() []TypeSchema {
	return GetRegistry().Choices()
}
