// Package valueset holds the shared shape of global value sets: the option rows a
// drop-down list field offers and the metadata document they are stored in.
package valueset

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
)

// Sorting controls how a consumer orders the options.
type Sorting string

const (
	SortingNone       Sorting = "no sorting"
	SortingAscending  Sorting = "ascending"
	SortingDescending Sorting = "descending"
)

// ParseSorting maps a raw value onto a Sorting, treating unknown values as SortingNone.
func ParseSorting(raw string) Sorting {
	switch v, _ := fieldtypes.NormalizeEnum(raw, []string{string(SortingAscending), string(SortingDescending)}); v {
	case string(SortingAscending):
		return SortingAscending
	case string(SortingDescending):
		return SortingDescending
	default:
		return SortingNone
	}
}

// Document keys.
const (
	DefaultRootKey = "GlobalValueSet"
	DefaultItemKey = "customValue"

	KeyTitle   = "title"
	KeySorting = "sorting"

	ColumnLabel   = "label"
	ColumnCode    = "code"
	ColumnDefault = "default"
	ColumnIconSet = "iconSet"
	ColumnIcon    = "icon"
	ColumnOrder   = "order"

	PathPrefix = "globalValueSets/"
	PathSuffix = ".globalValueSet-meta.xml"
)

// OptionRow is one selectable value.
type OptionRow struct {
	Label   string `json:"label"`
	Code    string `json:"code"`
	Default bool   `json:"default"`
	IconSet string `json:"iconSet"`
	Icon    string `json:"icon"`
	Order   int    `json:"order"`
}

// Wire renders the row as stored: every value is a string.
func (o OptionRow) Wire() map[string]any {
	return map[string]any{
		ColumnLabel:   o.Label,
		ColumnCode:    o.Code,
		ColumnDefault: fieldtypes.FormatBool(o.Default),
		ColumnIconSet: o.IconSet,
		ColumnIcon:    o.Icon,
		ColumnOrder:   strconv.Itoa(o.Order),
	}
}

// ValueSet is a titled, sorted list of options.
type ValueSet struct {
	Title   string
	Sorting Sorting
	Options []OptionRow
}

// Document renders the value set as {rootKey: {itemKey: [...], title?, sorting?}}.
// Empty titles and SortingNone are omitted instead of written as empty values.
func (vs ValueSet) Document(rootKey, itemKey string) map[string]any {
	items := make([]any, 0, len(vs.Options))
	for i, o := range vs.Options {
		o.Order = i + 1
		items = append(items, o.Wire())
	}
	body := map[string]any{itemKey: items}
	if strings.TrimSpace(vs.Title) != "" {
		body[KeyTitle] = vs.Title
	}
	if vs.Sorting != "" && vs.Sorting != SortingNone {
		body[KeySorting] = string(vs.Sorting)
	}
	return map[string]any{rootKey: body}
}

// PathFor returns the metadata path of a named global value set.
func PathFor(name string) string {
	return PathPrefix + name + PathSuffix
}

// NameFromPath is the inverse of PathFor.
func NameFromPath(p string) (string, bool) {
	if !strings.HasPrefix(p, PathPrefix) || !strings.HasSuffix(p, PathSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(p, PathPrefix), PathSuffix)
	if name == "" || path.Base(name) != name {
		return "", false
	}
	return name, true
}

// ParseValues splits newline-delimited input into trimmed, non-empty values.
func ParseValues(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if v := strings.TrimSpace(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FromValues builds option rows whose label and code are both the given value.
func FromValues(values []string) []OptionRow {
	rows := make([]OptionRow, 0, len(values))
	for i, v := range values {
		rows = append(rows, OptionRow{Label: v, Code: v, Order: i + 1})
	}
	return rows
}

// ValidateName checks a new value set name. Names share the apiCode format.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("Name is required")
	}
	if err := fieldtypes.ValidateAPICode(name); err != nil {
		return fmt.Errorf("Name must start with a letter and contain only letters, digits and underscores")
	}
	return nil
}
