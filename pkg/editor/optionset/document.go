package optionset

import (
	"sort"
	"strings"

	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
	"github.com/nexuscrm/fieldstudio/pkg/valueset"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// parseDocument reads {rootKey: {itemKey: rows | row, title?, sorting?}}. A
// single row collapsed to an object is read as a one-row list. Rows are sorted
// by their stored order; rows without one keep their position.
func parseDocument(raw []byte, src Source) Canonical {
	body := child(gjson.ParseBytes(raw), src.RootKey)
	doc := Canonical{
		Title:   body.Get(valueset.KeyTitle).String(),
		Sorting: valueset.ParseSorting(body.Get(valueset.KeySorting).String()),
	}

	var elems []gjson.Result
	switch items := child(body, src.ItemKey); {
	case items.IsArray():
		elems = items.Array()
	case items.IsObject():
		elems = []gjson.Result{items}
	}

	type positioned struct {
		row   valueset.OptionRow
		order int
	}
	rows := make([]positioned, 0, len(elems))
	for i, el := range elems {
		order := i + 1
		if v := el.Get(valueset.ColumnOrder); v.Exists() {
			if n, err := fieldtypes.ParseInt(v.Value()); err == nil {
				order = n
			}
		}
		isDefault, _ := fieldtypes.ParseBool(el.Get(valueset.ColumnDefault).Value())
		rows = append(rows, positioned{
			order: order,
			row: valueset.OptionRow{
				Label:   el.Get(valueset.ColumnLabel).String(),
				Code:    el.Get(valueset.ColumnCode).String(),
				Default: isDefault,
				IconSet: el.Get(valueset.ColumnIconSet).String(),
				Icon:    el.Get(valueset.ColumnIcon).String(),
			},
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].order < rows[j].order })

	doc.Items = make([]valueset.OptionRow, len(rows))
	for i, p := range rows {
		doc.Items[i] = p.row
		doc.Items[i].Order = i + 1
	}
	return doc
}

// buildDocument writes c into the previously fetched document so that keys the
// editor does not manage survive the round trip.
func buildDocument(raw []byte, src Source, c Canonical) ([]byte, error) {
	out := []byte("{}")
	if gjson.ValidBytes(raw) && gjson.ParseBytes(raw).IsObject() {
		out = append([]byte(nil), raw...)
	}

	items := make([]map[string]any, len(c.Items))
	for i, o := range c.Items {
		o.Order = i + 1
		items[i] = o.Wire()
	}

	root := escapeKey(src.RootKey)
	var err error
	if out, err = sjson.SetBytes(out, root+"."+escapeKey(src.ItemKey), items); err != nil {
		return nil, err
	}
	if out, err = setOrDelete(out, root+"."+valueset.KeyTitle, strings.TrimSpace(c.Title) != "", c.Title); err != nil {
		return nil, err
	}
	hasSorting := c.Sorting != "" && c.Sorting != valueset.SortingNone
	if out, err = setOrDelete(out, root+"."+valueset.KeySorting, hasSorting, string(c.Sorting)); err != nil {
		return nil, err
	}
	return out, nil
}

func setOrDelete(doc []byte, path string, keep bool, value string) ([]byte, error) {
	if keep {
		return sjson.SetBytes(doc, path, value)
	}
	return sjson.DeleteBytes(doc, path)
}

// child looks a key up literally, so keys containing path syntax still match.
func child(r gjson.Result, key string) gjson.Result {
	var out gjson.Result
	r.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}

func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
